package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty string returns local", timezone: "", wantErr: false},
		{name: "Local returns local", timezone: "Local", wantErr: false},
		{name: "valid timezone UTC", timezone: "UTC", wantErr: false},
		{name: "valid timezone Europe/London", timezone: "Europe/London", wantErr: false},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{input: "2026-10-15", wantErr: false},
		{input: "2024-02-29", wantErr: false},
		{input: "2025-02-29", wantErr: true},
		{input: "2026-1-05", wantErr: true},
		{input: "20261015", wantErr: true},
		{input: "../etc", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if IsValidDate(tt.input) == tt.wantErr {
				t.Errorf("IsValidDate(%q) disagrees with ParseDate", tt.input)
			}
		})
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		date string
		days int
		want string
	}{
		{date: "2026-10-15", days: -1, want: "2026-10-14"},
		{date: "2026-03-01", days: -1, want: "2026-02-28"},
		{date: "2024-03-01", days: -1, want: "2024-02-29"},
		{date: "2026-10-15", days: -90, want: "2026-07-17"},
		{date: "2026-12-31", days: 1, want: "2027-01-01"},
	}

	for _, tt := range tests {
		got, err := AddDays(tt.date, tt.days)
		if err != nil {
			t.Fatalf("AddDays(%q, %d) error: %v", tt.date, tt.days, err)
		}
		if got != tt.want {
			t.Errorf("AddDays(%q, %d) = %q, want %q", tt.date, tt.days, got, tt.want)
		}
	}

	if _, err := AddDays("not-a-date", 1); err == nil {
		t.Error("AddDays() expected error for malformed date")
	}
}

func TestFormatDateUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	instant := time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC)
	if got := FormatDate(instant.In(loc)); got != "2026-10-15" {
		t.Errorf("FormatDate() = %q, want 2026-10-15", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	got, err := ExpandPath("~/data")
	if err != nil {
		t.Fatalf("ExpandPath() error: %v", err)
	}
	if got != filepath.Join(home, "data") {
		t.Errorf("ExpandPath() = %q", got)
	}

	got, _ = ExpandPath("/var/lib/limitless")
	if got != "/var/lib/limitless" {
		t.Errorf("ExpandPath() changed an absolute path: %q", got)
	}
}
