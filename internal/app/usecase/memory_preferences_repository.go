package usecase

import (
	"context"
	"sync"

	"github.com/whhaicheng/SimDesk/internal/domain/preferences"
)

// MemoryPreferencesRepository keeps preferences in memory.
type MemoryPreferencesRepository struct {
	prefs *preferences.Preferences
	mu    sync.RWMutex
}

// NewMemoryPreferencesRepository creates a repository that starts with the defaults.
func NewMemoryPreferencesRepository() *MemoryPreferencesRepository {
	return &MemoryPreferencesRepository{}
}

// Get returns a copy of the stored preferences or the defaults.
func (r *MemoryPreferencesRepository) Get(ctx context.Context) (*preferences.Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.prefs == nil {
		return preferences.Default(), nil
	}
	p := *r.prefs
	return &p, nil
}

// Save validates and stores a copy of prefs.
func (r *MemoryPreferencesRepository) Save(ctx context.Context, prefs *preferences.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p := *prefs
	r.prefs = &p
	return nil
}

// Reset drops the stored preferences.
func (r *MemoryPreferencesRepository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs = nil
	return nil
}
