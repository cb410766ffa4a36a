package loaders

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/brahma/internal/core/ports/driven"
	"github.com/custodia-labs/brahma/internal/loaders/csv"
	"github.com/custodia-labs/brahma/internal/loaders/docx"
	"github.com/custodia-labs/brahma/internal/loaders/html"
	"github.com/custodia-labs/brahma/internal/loaders/pdf"
	"github.com/custodia-labs/brahma/internal/loaders/plaintext"
	"github.com/custodia-labs/brahma/internal/loaders/pptx"
	"github.com/custodia-labs/brahma/internal/loaders/xlsx"
)

// Ensure Registry implements the interface.
var _ driven.LoaderRegistry = (*Registry)(nil)

// Registry maps file extensions to loaders.
// A later registration for the same extension replaces the earlier one.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]driven.Loader
}

// NewRegistry creates an empty loader registry.
func NewRegistry() *Registry {
	return &Registry{
		loaders: make(map[string]driven.Loader),
	}
}

// NewDefaultRegistry creates a registry with all built-in loaders.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(csv.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(pptx.New())
	r.Register(xlsx.New())
	r.Register(html.New())
	return r
}

// Register adds a loader for each of its extensions.
func (r *Registry) Register(loader driven.Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range loader.Extensions() {
		r.loaders[strings.ToLower(ext)] = loader
	}
}

// For returns the loader for a path based on its extension.
func (r *Registry) For(path string) (driven.Loader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loader, ok := r.loaders[strings.ToLower(filepath.Ext(path))]
	return loader, ok
}

// Extensions returns all registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.loaders))
	for ext := range r.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
