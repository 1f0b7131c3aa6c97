package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/whhaicheng/SimDesk/internal/domain/preferences"
)

// setupPreferencesPath returns a preferences file path inside a temp directory.
func setupPreferencesPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config", "preferences.json")
}

// TestPreferencesRepository_Get_Default tests getting default preferences.
func TestPreferencesRepository_Get_Default(t *testing.T) {
	repo := NewPreferencesRepository(setupPreferencesPath(t))

	prefs, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if prefs.Version != preferences.CurrentVersion {
		t.Errorf("Version = %d, want %d", prefs.Version, preferences.CurrentVersion)
	}
	if prefs.RecentProjectsLimit != 10 {
		t.Errorf("RecentProjectsLimit = %d, want 10", prefs.RecentProjectsLimit)
	}
}

// TestPreferencesRepository_Save tests saving preferences.
func TestPreferencesRepository_Save(t *testing.T) {
	ctx := context.Background()
	path := setupPreferencesPath(t)
	repo := NewPreferencesRepository(path)

	prefs := preferences.Default()
	prefs.Theme = "dark"
	prefs.HistoryRetentionDays = 90

	if err := repo.Save(ctx, prefs); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	// Verify file was created
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("Preferences file was not created")
	}

	// Load and verify
	loaded, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() after save failed: %v", err)
	}
	if loaded.Theme != "dark" {
		t.Errorf("Theme = %s, want dark", loaded.Theme)
	}
	if loaded.HistoryRetentionDays != 90 {
		t.Errorf("HistoryRetentionDays = %d, want 90", loaded.HistoryRetentionDays)
	}
}

// TestPreferencesRepository_Save_Invalid tests validation before saving.
func TestPreferencesRepository_Save_Invalid(t *testing.T) {
	path := setupPreferencesPath(t)
	repo := NewPreferencesRepository(path)

	prefs := preferences.Default()
	prefs.RecentProjectsLimit = 0

	err := repo.Save(context.Background(), prefs)
	if !errors.Is(err, preferences.ErrInvalidPreferences) {
		t.Errorf("Save() error = %v, want ErrInvalidPreferences", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Invalid preferences should not be written")
	}
}

// TestPreferencesRepository_PartialFile tests that missing fields keep defaults.
func TestPreferencesRepository_PartialFile(t *testing.T) {
	path := setupPreferencesPath(t)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"version":1,"theme":"light"}`), 0644); err != nil {
		t.Fatal(err)
	}

	prefs, err := NewPreferencesRepository(path).Get(context.Background())
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if prefs.Theme != "light" || prefs.Language != "en" {
		t.Errorf("Get() = %+v, want light theme with default language", prefs)
	}
}

// TestPreferencesRepository_Reset tests resetting to defaults.
func TestPreferencesRepository_Reset(t *testing.T) {
	ctx := context.Background()
	repo := NewPreferencesRepository(setupPreferencesPath(t))

	prefs := preferences.Default()
	prefs.Language = "fr"
	if err := repo.Save(ctx, prefs); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	if err := repo.Reset(ctx); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}
	// Resetting twice is fine.
	if err := repo.Reset(ctx); err != nil {
		t.Fatalf("second Reset() failed: %v", err)
	}

	loaded, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if loaded.Language != "en" {
		t.Errorf("Language = %s, want en", loaded.Language)
	}
}
