package app

import "github.com/klabast/wb-services/abfuhr-termine/internal/schedule"

// Constants
const (
	// Error messages
	ErrInvalidFormat   = "Invalid format"
	ErrInvalidCategory = "Invalid category"
	ErrUnknownProperty = "Unknown property"
	ErrUnknownTool     = "Unknown tool"

	// Thing description
	ThingID          = "urn:dev:ops:waste_collection_schedule-1"
	ThingTitle       = "WasteCollectionSchedule"
	ThingDescription = "Next waste collection dates"
	ThingCapability  = "MultiLevelSensor"

	// ICS constants
	ICSProductID = "-//Winterberg//Abfuhrtermine//DE"
	ICSUIDDomain = "abfuhr-termine.winterberg.de"
	ICSName      = "Abfuhrtermine"

	// Tools
	ToolWasteSchedule = "get_waste_schedule"

	ScannedFilesProperty = "scanned_ics_files"
)

// WasteTypes maps categories to their German display names
var WasteTypes = map[schedule.Category]string{
	schedule.Organic:   "Biotonne",
	schedule.Recycling: "Gelber Sack",
	schedule.Paper:     "Papiertonne",
	schedule.Residual:  "Restmüll",
}
