// Package report provides unit tests for report domain models.
package report

import (
	"testing"
	"time"

	"github.com/whhaicheng/SimDesk/internal/domain/simulation"
)

// TestReportFormat_Validate tests format validation.
func TestReportFormat_Validate(t *testing.T) {
	tests := []struct {
		name    string
		format  ReportFormat
		wantErr bool
	}{
		{
			name:    "valid markdown",
			format:  FormatMarkdown,
			wantErr: false,
		},
		{
			name:    "valid json",
			format:  FormatJSON,
			wantErr: false,
		},
		{
			name:    "invalid format",
			format:  ReportFormat("pdf"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.format.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("ReportFormat.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestReportFormat_FileExtension tests file extension.
func TestReportFormat_FileExtension(t *testing.T) {
	tests := []struct {
		name   string
		format ReportFormat
		want   string
	}{
		{"markdown", FormatMarkdown, ".md"},
		{"json", FormatJSON, ".json"},
		{"unknown", ReportFormat("x"), ".txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.FileExtension(); got != tt.want {
				t.Errorf("FileExtension() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGenerateContext_Validate tests context validation.
func TestGenerateContext_Validate(t *testing.T) {
	tests := []struct {
		name    string
		run     simulation.Snapshot
		wantErr bool
	}{
		{"valid", simulation.Snapshot{ID: "r1", Status: simulation.StatusRunning}, false},
		{"missing id", simulation.Snapshot{Status: simulation.StatusRunning}, true},
		{"invalid status", simulation.Snapshot{ID: "r1", Status: simulation.Status(42)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewGenerateContext(tt.run)
			if err := ctx.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestGenerateContext_Helpers tests title, duration and timestamp helpers.
func TestGenerateContext_Helpers(t *testing.T) {
	ctx := NewGenerateContext(simulation.Snapshot{ID: "r1", ProjectName: "Flow", Duration: 2.5})

	if got := ctx.GetTitle(); got != "Simulation Run Report: Flow" {
		t.Errorf("GetTitle() = %q", got)
	}
	ctx.Title = "Custom"
	if got := ctx.GetTitle(); got != "Custom" {
		t.Errorf("GetTitle() = %q, want Custom", got)
	}
	if got := ctx.GetDuration(); got != "2.5s" {
		t.Errorf("GetDuration() = %q, want 2.5s", got)
	}
	if ctx.Timestamp().IsZero() {
		t.Error("Timestamp() should default to now")
	}
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx.GeneratedAt = fixed
	if !ctx.Timestamp().Equal(fixed) {
		t.Errorf("Timestamp() = %v, want %v", ctx.Timestamp(), fixed)
	}
}

func TestFormatFloat(t *testing.T) {
	if got := FormatFloat(3.14159, 2); got != "3.14" {
		t.Errorf("FormatFloat() = %q, want 3.14", got)
	}
}
