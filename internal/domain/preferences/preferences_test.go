// Package preferences provides unit tests for user preferences.
package preferences

import (
	"errors"
	"testing"
)

// TestDefault_Valid tests that the defaults pass validation.
func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

// TestPreferences_Validate tests field validation.
func TestPreferences_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Preferences)
		wantErr bool
	}{
		{"dark theme", func(p *Preferences) { p.Theme = "dark" }, false},
		{"unknown theme", func(p *Preferences) { p.Theme = "neon" }, true},
		{"wrong version", func(p *Preferences) { p.Version = 2 }, true},
		{"blank language", func(p *Preferences) { p.Language = " " }, true},
		{"limit zero", func(p *Preferences) { p.RecentProjectsLimit = 0 }, true},
		{"limit 100", func(p *Preferences) { p.RecentProjectsLimit = 100 }, false},
		{"limit 101", func(p *Preferences) { p.RecentProjectsLimit = 101 }, true},
		{"negative retention", func(p *Preferences) { p.HistoryRetentionDays = -1 }, true},
		{"retention ten years", func(p *Preferences) { p.HistoryRetentionDays = 3650 }, false},
		{"json reports", func(p *Preferences) { p.DefaultReportFormat = "json" }, false},
		{"html reports", func(p *Preferences) { p.DefaultReportFormat = "html" }, true},
		{"absolute report dir", func(p *Preferences) { p.ReportDir = "/var/reports" }, false},
		{"relative report dir", func(p *Preferences) { p.ReportDir = "reports" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mutate(p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPreferences) {
				t.Errorf("Validate() error = %v, want ErrInvalidPreferences", err)
			}
		})
	}
}

// TestPreferences_Set tests assigning preferences by key.
func TestPreferences_Set(t *testing.T) {
	p := Default()
	for _, kv := range [][2]string{
		{"theme", "light"},
		{"language", "de"},
		{"auto_save", "false"},
		{"recent_projects_limit", "25"},
		{"history_retention_days", "14"},
		{"default_report_format", "json"},
		{"report_dir", "/tmp/r"},
	} {
		if err := p.Set(kv[0], kv[1]); err != nil {
			t.Fatalf("Set(%s) failed: %v", kv[0], err)
		}
	}
	want := Preferences{
		Version: CurrentVersion, Theme: "light", Language: "de", AutoSave: false,
		RecentProjectsLimit: 25, HistoryRetentionDays: 14, DefaultReportFormat: "json", ReportDir: "/tmp/r",
	}
	if *p != want {
		t.Errorf("after Set() = %+v, want %+v", *p, want)
	}

	if err := p.Set("volume", "11"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Set(volume) error = %v, want ErrUnknownKey", err)
	}
	for _, key := range []string{"auto_save", "recent_projects_limit", "history_retention_days"} {
		if err := p.Set(key, "lots"); !errors.Is(err, ErrInvalidPreferences) {
			t.Errorf("Set(%s, lots) error = %v, want ErrInvalidPreferences", key, err)
		}
	}
	if len(Keys()) != 7 {
		t.Errorf("Keys() = %v", Keys())
	}
}
