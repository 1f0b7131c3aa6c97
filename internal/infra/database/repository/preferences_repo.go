package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/whhaicheng/SimDesk/internal/domain/preferences"
)

// PreferencesRepository persists user preferences as a JSON file.
type PreferencesRepository struct {
	path string
	mu   sync.Mutex
}

// NewPreferencesRepository creates a new preferences repository.
func NewPreferencesRepository(path string) *PreferencesRepository {
	return &PreferencesRepository{
		path: path,
	}
}

// Get loads the preferences, or the defaults if the file does not exist.
func (r *PreferencesRepository) Get(ctx context.Context) (*preferences.Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check if preferences file exists
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return preferences.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences file: %w", err)
	}

	// Fields missing from the file keep their defaults
	prefs := preferences.Default()
	if err := json.Unmarshal(data, prefs); err != nil {
		return nil, fmt.Errorf("parse preferences: %w", err)
	}

	if err := prefs.Validate(); err != nil {
		return nil, fmt.Errorf("validate preferences: %w", err)
	}

	return prefs, nil
}

// Save validates and writes the preferences.
func (r *PreferencesRepository) Save(ctx context.Context, prefs *preferences.Preferences) error {
	// Validate before saving
	if err := prefs.Validate(); err != nil {
		return fmt.Errorf("validate preferences: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	// Write to a temp file first so a crash never leaves a truncated file
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write preferences file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace preferences file: %w", err)
	}

	return nil
}

// Reset deletes the preferences file to force defaults.
func (r *PreferencesRepository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove preferences file: %w", err)
	}
	return nil
}

// Path returns the preferences file path.
func (r *PreferencesRepository) Path() string {
	return r.path
}
