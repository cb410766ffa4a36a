// Package tui is brahma's interactive chat screen.
package tui

import (
	"errors"

	"github.com/custodia-labs/brahma/internal/core/ports/driving"
)

var (
	// ErrInvalidPorts is returned for a nil Ports.
	ErrInvalidPorts = errors.New("tui: invalid ports configuration")

	// ErrMissingEngine is returned when Ports has no engine.
	ErrMissingEngine = errors.New("tui: engine is required")
)

// Ports is what the chat screen drives.
type Ports struct {
	// Engine answers questions and rebuilds the index.
	Engine driving.Engine

	// Settings enables /provider. Optional.
	Settings driving.SettingsService

	// Guidance suggests a remedy for an error. Optional.
	Guidance func(error) string
}

// NewPorts creates Ports for engine and settings.
func NewPorts(engine driving.Engine, settings driving.SettingsService) *Ports {
	return &Ports{
		Engine:   engine,
		Settings: settings,
	}
}

// Validate ensures the engine is set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Engine == nil {
		return ErrMissingEngine
	}
	return nil
}
