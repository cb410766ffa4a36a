package driving

import (
	"context"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

// SettingsService manages persisted engine settings.
type SettingsService interface {
	// Load resolves the effective configuration from defaults, the settings
	// file and environment overrides.
	Load() (domain.EngineConfig, error)

	// Save persists the configurable parts of cfg.
	Save(cfg domain.EngineConfig) error

	// Set updates a single setting by key.
	Set(key, value string) error

	// Reconfigure persists a provider change and returns a new engine built
	// from the resulting configuration. Stored vectors are reused.
	Reconfigure(ctx context.Context, current Engine, provider domain.Provider, credential string) (Engine, error)

	// Keys returns the settable keys.
	Keys() []string

	// Path returns the settings file path.
	Path() string
}
