// Package project provides the recently opened project domain model.
package project

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/whhaicheng/SimDesk/internal/domain/search"
	"github.com/whhaicheng/SimDesk/internal/domain/validation"
)

// RecentProject is an entry of the recent projects list, keyed by path.
type RecentProject struct {
	ID            string    `json:"id"`
	Path          string    `json:"path"`
	Name          string    `json:"name"`
	ToolVersion   string    `json:"tool_version,omitempty"`
	FirstOpenedAt time.Time `json:"first_opened_at"`
	LastOpenedAt  time.Time `json:"last_opened_at"`
	OpenCount     int       `json:"open_count"`
}

// New creates an entry for a project opened for the first time at openedAt.
func New(path, name, toolVersion string, openedAt time.Time) (*RecentProject, error) {
	p := &RecentProject{
		ID:            uuid.New().String(),
		Path:          path,
		Name:          name,
		ToolVersion:   toolVersion,
		FirstOpenedAt: openedAt.UTC(),
		LastOpenedAt:  openedAt.UTC(),
		OpenCount:     1,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the entry fields.
func (p *RecentProject) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return validation.New("id", "project id is required")
	}
	if strings.TrimSpace(p.Path) == "" {
		return validation.New("path", "project path is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return validation.New("name", "project name is required")
	}
	if p.OpenCount < 1 {
		return validation.New("openCount", "open count must be at least 1")
	}
	if p.LastOpenedAt.Before(p.FirstOpenedAt) {
		return validation.New("lastOpenedAt", "last opened time cannot precede first opened time")
	}
	return nil
}

// Reopen records another opening. Name and tool version follow the latest open.
func (p *RecentProject) Reopen(name, toolVersion string, openedAt time.Time) error {
	if strings.TrimSpace(name) == "" {
		return validation.New("name", "project name is required")
	}
	openedAt = openedAt.UTC()
	if openedAt.Before(p.LastOpenedAt) {
		openedAt = p.LastOpenedAt
	}
	p.Name = name
	if toolVersion != "" {
		p.ToolVersion = toolVersion
	}
	p.LastOpenedAt = openedAt
	p.OpenCount++
	return nil
}

// Filter selects recent projects. Zero fields mean "no constraint".
type Filter struct {
	Name        string     // Case-insensitive substring of name or path
	ToolVersion string     // Exact tool version
	OpenedFrom  *time.Time // Inclusive lower bound on last opened
	OpenedTo    *time.Time // Inclusive upper bound on last opened
}

// Spec builds the search predicates for the filter.
func (f Filter) Spec() search.Spec[*RecentProject] {
	spec := search.Spec[*RecentProject]{}
	spec = spec.Contains(f.Name,
		func(p *RecentProject) string { return p.Name },
		func(p *RecentProject) string { return p.Path },
	)
	if f.ToolVersion != "" {
		spec = spec.Equals(f.ToolVersion, func(p *RecentProject) string { return p.ToolVersion })
	}
	return spec.Between(f.OpenedFrom, f.OpenedTo, SortKey)
}

// SortKey orders recent projects: most recently opened first.
func SortKey(p *RecentProject) time.Time {
	return p.LastOpenedAt
}
