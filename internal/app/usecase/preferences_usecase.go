// Package usecase provides preferences management business logic.
package usecase

import (
	"context"
	"fmt"

	"github.com/whhaicheng/SimDesk/internal/domain/preferences"
)

// PreferencesUseCase provides preferences management business operations.
type PreferencesUseCase struct {
	prefsRepo PreferencesRepository
}

// NewPreferencesUseCase creates a new preferences use case.
func NewPreferencesUseCase(prefsRepo PreferencesRepository) *PreferencesUseCase {
	return &PreferencesUseCase{
		prefsRepo: prefsRepo,
	}
}

// Get retrieves the current preferences.
func (uc *PreferencesUseCase) Get(ctx context.Context) (*preferences.Preferences, error) {
	return uc.prefsRepo.Get(ctx)
}

// Update replaces the preferences.
func (uc *PreferencesUseCase) Update(ctx context.Context, prefs *preferences.Preferences) error {
	// Validate before saving
	if err := prefs.Validate(); err != nil {
		return fmt.Errorf("validate preferences: %w", err)
	}

	return uc.prefsRepo.Save(ctx, prefs)
}

// Set changes a single preference by key and returns the saved preferences.
func (uc *PreferencesUseCase) Set(ctx context.Context, key, value string) (*preferences.Preferences, error) {
	prefs, err := uc.prefsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	if err := prefs.Set(key, value); err != nil {
		return nil, err
	}
	if err := uc.Update(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// Reset restores the defaults.
func (uc *PreferencesUseCase) Reset(ctx context.Context) error {
	return uc.prefsRepo.Reset(ctx)
}
