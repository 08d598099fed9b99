package schedule

import "testing"

func TestStripAlarms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no alarms",
			in:   "BEGIN:VEVENT\nSUMMARY:Biotonne\nEND:VEVENT\n",
			want: "BEGIN:VEVENT\nSUMMARY:Biotonne\nEND:VEVENT\n",
		},
		{
			name: "single alarm",
			in: "BEGIN:VEVENT\nSUMMARY:Biotonne\n" +
				"BEGIN:VALARM\nTRIGGER:-PT12H\nACTION:DISPLAY\nEND:VALARM\n" +
				"END:VEVENT\n",
			want: "BEGIN:VEVENT\nSUMMARY:Biotonne\nEND:VEVENT\n",
		},
		{
			name: "two alarms with CRLF",
			in: "BEGIN:VEVENT\r\n" +
				"BEGIN:VALARM\r\nTRIGGER:-P1D\r\nEND:VALARM\r\n" +
				"SUMMARY:Papier\r\n" +
				"BEGIN:VALARM\r\nTRIGGER;RELATED=END:PT0S\r\nEND:VALARM\r\n" +
				"END:VEVENT\r\n",
			want: "BEGIN:VEVENT\r\nSUMMARY:Papier\r\nEND:VEVENT\r\n",
		},
		{
			name: "indented and lowercase markers",
			in:   "A\n  begin:valarm\nTRIGGER:x\n  end:valarm\nB\n",
			want: "A\nB\n",
		},
		{
			name: "unterminated alarm runs to end",
			in:   "A\nBEGIN:VALARM\nTRIGGER:x\nEND:VEVENT\nEND:VCALENDAR\n",
			want: "A\n",
		},
		{
			name: "no trailing newline",
			in:   "A\nB",
			want: "A\nB",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripAlarms(tt.in); got != tt.want {
				t.Errorf("StripAlarms() = %q, want %q", got, tt.want)
			}
		})
	}
}
