package mcp

import (
	"context"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Engine answers questions and rebuilds the index.
	Engine driving.Engine
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Engine == nil {
		return ErrMissingEngine
	}
	return nil
}

// topKAnswerer is implemented by engines that accept a per-question
// retrieval depth.
type topKAnswerer interface {
	Answer(ctx context.Context, question string, k int) (*domain.QueryResult, error)
}
