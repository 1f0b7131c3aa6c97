// Package usecase defines repository interfaces for persistence operations.
// These interfaces are defined by the use case layer and implemented by the infrastructure layer.
package usecase

import (
	"context"

	"github.com/whhaicheng/SimDesk/internal/domain/preferences"
	"github.com/whhaicheng/SimDesk/internal/domain/project"
	"github.com/whhaicheng/SimDesk/internal/domain/simulation"
)

// =============================================================================
// Run Repository Interface
// =============================================================================

// RunRepository defines the interface for simulation run persistence.
// Adapters report driver failures as *StorageError.
type RunRepository interface {
	// Insert stores a new run.
	// Returns a *ConflictError if a run with the same ID already exists.
	Insert(ctx context.Context, run *simulation.Run) error

	// Update replaces a stored run.
	// Returns a *NotFoundError if the run does not exist.
	Update(ctx context.Context, run *simulation.Run) error

	// FindByID finds a run by its ID.
	// Returns (nil, nil) when no run has the ID.
	FindByID(ctx context.Context, id string) (*simulation.Run, error)

	// Exists reports whether a run with the ID is stored.
	Exists(ctx context.Context, id string) (bool, error)

	// Delete deletes a run by its ID.
	// Returns a *NotFoundError if the run does not exist.
	Delete(ctx context.Context, id string) error

	// AllForSearch returns candidate runs for a history search in insertion order.
	// Adapters may pre-narrow by the filter; search.Search applies it fully.
	AllForSearch(ctx context.Context, filter simulation.Filter) ([]*simulation.Run, error)
}

// =============================================================================
// Project Repository Interface
// =============================================================================

// ProjectRepository defines the interface for the recent projects list.
type ProjectRepository interface {
	// Upsert inserts or replaces the entry for the project's path.
	Upsert(ctx context.Context, p *project.RecentProject) error

	// FindByPath returns (nil, nil) when the path was never opened.
	FindByPath(ctx context.Context, path string) (*project.RecentProject, error)

	// Delete removes the entry for path.
	// Returns a *NotFoundError if the path is not in the list.
	Delete(ctx context.Context, path string) error

	// DeleteAll clears the list.
	DeleteAll(ctx context.Context) error

	// AllForSearch returns candidate entries for a search in insertion order.
	AllForSearch(ctx context.Context, filter project.Filter) ([]*project.RecentProject, error)
}

// =============================================================================
// Preferences Repository Interface
// =============================================================================

// PreferencesRepository defines the interface for user preferences persistence.
type PreferencesRepository interface {
	// Get returns the stored preferences, or the defaults if none are stored.
	Get(ctx context.Context) (*preferences.Preferences, error)

	// Save validates and stores the preferences.
	Save(ctx context.Context, prefs *preferences.Preferences) error

	// Reset removes the stored preferences so Get returns the defaults again.
	Reset(ctx context.Context) error
}

// =============================================================================
// Collaborators
// =============================================================================

// EventPublisher broadcasts run events to interested parties.
type EventPublisher interface {
	Publish(ctx context.Context, event simulation.Event) error
}

// Metrics records use case and cache activity.
type Metrics interface {
	// RunEvent counts an emitted run event.
	RunEvent(eventType simulation.EventType)

	// CacheHit counts a read served from cache.
	CacheHit()

	// CacheMiss counts a read that fell through to the repository.
	CacheMiss()

	// RunsPruned counts runs removed by retention.
	RunsPruned(n int)
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

func (NopMetrics) RunEvent(simulation.EventType) {}
func (NopMetrics) CacheHit()                     {}
func (NopMetrics) CacheMiss()                    {}
func (NopMetrics) RunsPruned(int)                {}
