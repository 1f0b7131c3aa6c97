// Package preferences provides the user preferences domain model.
package preferences

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrInvalidPreferences is returned when preferences fail validation.
	ErrInvalidPreferences = errors.New("invalid preferences")

	// ErrUnknownKey is returned by Set for an unsupported key.
	ErrUnknownKey = errors.New("unknown preference key")
)

// CurrentVersion is the only supported preferences file version.
const CurrentVersion = 1

// Preferences holds the user's settings for the desktop tool.
type Preferences struct {
	// Version is the preferences schema version.
	Version int `json:"version"`

	// Theme is the UI theme (light, dark, auto).
	Theme string `json:"theme"`

	// Language is the UI language.
	Language string `json:"language"`

	// AutoSave indicates if project changes should be auto-saved.
	AutoSave bool `json:"auto_save"`

	// RecentProjectsLimit caps the recent projects list.
	RecentProjectsLimit int `json:"recent_projects_limit"`

	// HistoryRetentionDays removes finished runs older than this many days.
	// Zero keeps history forever.
	HistoryRetentionDays int `json:"history_retention_days"`

	// DefaultReportFormat is the format used when none is requested.
	DefaultReportFormat string `json:"default_report_format"`

	// ReportDir is where generated run reports are written.
	ReportDir string `json:"report_dir,omitempty"`
}

// Default returns the preferences used before the user changes anything.
func Default() *Preferences {
	return &Preferences{
		Version:              CurrentVersion,
		Theme:                "auto",
		Language:             "en",
		AutoSave:             true,
		RecentProjectsLimit:  10,
		HistoryRetentionDays: 0,
		DefaultReportFormat:  "markdown",
	}
}

// Validate validates every field.
func (p *Preferences) Validate() error {
	if p.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported preferences version: %d", ErrInvalidPreferences, p.Version)
	}

	validThemes := map[string]bool{
		"light": true,
		"dark":  true,
		"auto":  true,
	}
	if !validThemes[p.Theme] {
		return fmt.Errorf("%w: invalid theme: %s", ErrInvalidPreferences, p.Theme)
	}

	if strings.TrimSpace(p.Language) == "" {
		return fmt.Errorf("%w: language is required", ErrInvalidPreferences)
	}

	if p.RecentProjectsLimit < 1 || p.RecentProjectsLimit > 100 {
		return fmt.Errorf("%w: recent_projects_limit must be between 1 and 100", ErrInvalidPreferences)
	}

	if p.HistoryRetentionDays < 0 || p.HistoryRetentionDays > 3650 {
		return fmt.Errorf("%w: history_retention_days must be between 0 and 3650", ErrInvalidPreferences)
	}

	switch p.DefaultReportFormat {
	case "markdown", "json":
	default:
		return fmt.Errorf("%w: invalid default report format: %s", ErrInvalidPreferences, p.DefaultReportFormat)
	}

	if p.ReportDir != "" && !filepath.IsAbs(p.ReportDir) {
		return fmt.Errorf("%w: report_dir must be an absolute path", ErrInvalidPreferences)
	}

	return nil
}

// Keys lists the keys accepted by Set.
func Keys() []string {
	return []string{
		"theme", "language", "auto_save", "recent_projects_limit",
		"history_retention_days", "default_report_format", "report_dir",
	}
}

// Set assigns a single preference from its string form. The result is not validated.
func (p *Preferences) Set(key, value string) error {
	switch key {
	case "theme":
		p.Theme = value
	case "language":
		p.Language = value
	case "auto_save":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: auto_save: %v", ErrInvalidPreferences, err)
		}
		p.AutoSave = b
	case "recent_projects_limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: recent_projects_limit: %v", ErrInvalidPreferences, err)
		}
		p.RecentProjectsLimit = n
	case "history_retention_days":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: history_retention_days: %v", ErrInvalidPreferences, err)
		}
		p.HistoryRetentionDays = n
	case "default_report_format":
		p.DefaultReportFormat = value
	case "report_dir":
		p.ReportDir = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}
