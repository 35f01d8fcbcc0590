package sanitizer

import (
	"testing"
	"time"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  Cardiology  ", "Cardiology"},
		{"multiple spaces between words", "Dr.   Ada    Lovelace", "Dr. Ada Lovelace"},
		{"tabs and newlines", "chest\t\npain", "chest pain"},
		{"empty string", "", ""},
		{"only whitespace", "   \t\n  ", ""},
		{"preserve special characters", " Café & Spa™ ", "Café & Spa™"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Jane.Doe@Example.COM "); got != "jane.doe@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}

func TestNormalizeConsultationType(t *testing.T) {
	tests := map[string]string{
		"in-person":    "in-person",
		"In Person":    "in-person",
		"in_person":    "in-person",
		"Telemedicine": "telemedicine",
		"video":        "telemedicine",
		" virtual ":    "telemedicine",
		"house call":   "",
		"":             "",
	}
	for input, want := range tests {
		if got := NormalizeConsultationType(input); got != want {
			t.Errorf("NormalizeConsultationType(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := map[string]string{
		"2024-06-01":   "2024-06-01",
		" 2024-06-01 ": "2024-06-01",
		"2024-02-30":   "",
		"06/01/2024":   "",
		"tomorrow":     "",
	}
	for input, want := range tests {
		if got := NormalizeDate(input); got != want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeClock(t *testing.T) {
	tests := map[string]string{
		"14:00":  "14:00",
		"9:00":   "09:00",
		" 09:05": "09:05",
		"24:00":  "",
		"12:60":  "",
		"2pm":    "",
		"14:0":   "",
		"":       "",
	}
	for input, want := range tests {
		if got := NormalizeClock(input); got != want {
			t.Errorf("NormalizeClock(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestAddToClock(t *testing.T) {
	tests := []struct {
		clock  string
		want   string
		wantOK bool
	}{
		{"14:00", "14:30", true},
		{"09:45", "10:15", true},
		{"23:45", "00:15", true},
		{"afternoon", "", false},
	}
	for _, tt := range tests {
		got, ok := AddToClock(tt.clock, 30*time.Minute)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("AddToClock(%q) = %q, %v; want %q, %v", tt.clock, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestClockSpan(t *testing.T) {
	tests := []struct {
		start, end string
		want       time.Duration
		wantOK     bool
	}{
		{"14:00", "14:30", 30 * time.Minute, true},
		{"23:45", "00:15", 30 * time.Minute, true},
		{"09:00", "08:30", 23*time.Hour + 30*time.Minute, true},
		{"09:00", "09:00", 0, true},
		{"9pm", "10:00", 0, false},
	}
	for _, tt := range tests {
		got, ok := ClockSpan(tt.start, tt.end)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ClockSpan(%q, %q) = %v, %v; want %v, %v", tt.start, tt.end, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCompactDate(t *testing.T) {
	if got := CompactDate("2024-06-01"); got != "20240601" {
		t.Errorf("CompactDate = %q", got)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"150", 150, true},
		{"$1,250.50", 1250.50, true},
		{"150 USD", 150, true},
		{"₹ 300", 300, true},
		{"Rs. 300", 300, true},
		{"USD 1,250.50", 1250.50, true},
		{"INR 300.", 300, true},
		{"", 0, false},
		{"free", 0, false},
		{"1.2.3", 0, false},
		{"50%", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAmount(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseAmount(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}
