package postprocessors

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
)

// BuilderFunc creates a stage from its settings map. Values come from
// TOML or JSON decoding, so numbers may arrive as int, int64 or float64.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry resolves stage names from the pipeline configuration.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]BuilderFunc)}
}

// Register binds name to builder, replacing any earlier binding.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build constructs the stage called name.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown pipeline stage %q (known: %v)", domain.ErrConfiguration, name, r.Names())
	}
	stage, err := builder(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: stage %q: %w", domain.ErrConfiguration, name, err)
	}
	return stage, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered stage names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
