package app

// CategoryStatus is the next pickup of one category as served to clients
type CategoryStatus struct {
	Date     string `json:"date,omitempty"`
	Soon     bool   `json:"soon"`
	Reminder string `json:"reminder,omitempty"`
}

// ScheduleResponse is the body of /api/schedule
type ScheduleResponse struct {
	Categories   map[string]CategoryStatus `json:"categories"`
	ScannedFiles []string                  `json:"scanned_files"`
	RefreshedAt  string                    `json:"refreshed_at,omitempty"`
}

// PropertyMeta describes one exposed property
type PropertyMeta struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	ReadOnly    bool   `json:"readOnly"`
	Links       []Link `json:"links,omitempty"`
}

// Link is a hypermedia reference inside a thing description
type Link struct {
	Rel  string `json:"rel,omitempty"`
	Href string `json:"href"`
}

// Thing is the device description served at the root
type Thing struct {
	Context     string                  `json:"@context"`
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Type        []string                `json:"@type"`
	Description string                  `json:"description"`
	Properties  map[string]PropertyMeta `json:"properties"`
	Links       []Link                  `json:"links"`
}

// Tool describes an invocable tool
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolResult is the body returned by a tool call
type ToolResult struct {
	Content string `json:"content"`
}
