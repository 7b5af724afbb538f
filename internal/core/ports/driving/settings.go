package driving

import "github.com/custodia-labs/idledger/internal/core/domain"

// SettingsService manages ledger settings.
type SettingsService interface {
	// Get retrieves current settings, falling back to defaults.
	Get() (*domain.Settings, error)

	// Set validates and stores a single dot-notation key.
	Set(key, value string) error

	// Keys lists the supported keys.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
