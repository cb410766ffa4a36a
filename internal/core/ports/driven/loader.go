package driven

import (
	"context"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

// Loader reads files of one format into text segments.
type Loader interface {
	// Format returns the document format produced by this loader.
	Format() domain.Format

	// Extensions returns the lower-case file extensions handled, e.g. ".pdf".
	Extensions() []string

	// Load extracts the segments of a single file.
	// An unreadable file returns an error and no segments.
	Load(ctx context.Context, path string) ([]domain.Segment, error)
}

// LoaderRegistry selects the loader for a file by its extension.
type LoaderRegistry interface {
	// Register adds a loader for each of its extensions.
	Register(loader Loader)

	// For returns the loader for a path, if any.
	For(path string) (Loader, bool)

	// Extensions returns all registered extensions in sorted order.
	Extensions() []string
}
