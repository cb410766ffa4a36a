package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
	"github.com/custodia-labs/brahma/internal/logger"
)

// LoadReport summarises a workspace scan.
type LoadReport struct {
	// Files is the number of candidate files found.
	Files int

	// Segments is the number of units loaded across all documents: pages,
	// rows, slides or sections, depending on the format.
	Segments int

	// Failed lists the files that could not be read.
	Failed []domain.LoadError
}

// DocumentLoader reads every supported file in a workspace directory.
type DocumentLoader struct {
	loaders   driven.LoaderRegistry
	exclude   []string
	recursive bool
	indexDir  string
}

// LoaderOption configures a DocumentLoader.
type LoaderOption func(*DocumentLoader)

// WithExclude sets glob patterns of file names to skip.
func WithExclude(patterns []string) LoaderOption {
	return func(l *DocumentLoader) {
		l.exclude = append([]string(nil), patterns...)
	}
}

// WithRecursive descends into sub-directories.
func WithRecursive(recursive bool) LoaderOption {
	return func(l *DocumentLoader) {
		l.recursive = recursive
	}
}

// WithIndexDir sets the index directory, which is never scanned.
func WithIndexDir(dir string) LoaderOption {
	return func(l *DocumentLoader) {
		l.indexDir = dir
	}
}

// NewDocumentLoader creates a loader over the given format registry.
func NewDocumentLoader(loaders driven.LoaderRegistry, opts ...LoaderOption) *DocumentLoader {
	l := &DocumentLoader{loaders: loaders}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load lists dir and loads every supported file in name order.
// Files that fail to load are reported and skipped. A missing directory is a
// configuration error.
func (l *DocumentLoader) Load(ctx context.Context, dir string) ([]domain.Document, LoadReport, error) {
	logger.Section("Loading Documents")

	var report LoadReport

	info, err := os.Stat(dir)
	if err != nil {
		return nil, report, fmt.Errorf("%w: workspace %s: %w", domain.ErrConfiguration, dir, err)
	}
	if !info.IsDir() {
		return nil, report, fmt.Errorf("%w: workspace %s is not a directory", domain.ErrConfiguration, dir)
	}

	paths, err := l.candidates(ctx, dir)
	if err != nil {
		return nil, report, err
	}
	report.Files = len(paths)
	logger.Debug("Found %d candidate files in %s", len(paths), dir)

	docs := make([]domain.Document, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		loader, ok := l.loaders.For(path)
		if !ok {
			continue
		}

		segments, err := loader.Load(ctx, path)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, report, err
			}
			logger.Warn("Skipping %s: %v", path, err)
			report.Failed = append(report.Failed, domain.LoadError{Path: path, Err: err})
			continue
		}

		logger.Debug("Loaded %s (%s, %d segments)", filepath.Base(path), loader.Format(), len(segments))
		report.Segments += len(segments)
		docs = append(docs, domain.Document{
			Path:     path,
			Format:   loader.Format(),
			Segments: segments,
		})
	}

	logger.Info("Loaded %d of %d files (%d segments)", len(docs), report.Files, report.Segments)
	return docs, report, nil
}

// candidates walks dir and returns the files a registered loader accepts.
func (l *DocumentLoader) candidates(ctx context.Context, dir string) ([]string, error) {
	indexDir := ""
	if l.indexDir != "" {
		if abs, err := filepath.Abs(l.indexDir); err == nil {
			indexDir = abs
		}
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			logger.Warn("Cannot read %s: %v", path, err)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path == dir {
				return nil
			}
			if !l.recursive || isHidden(d.Name()) || l.isIndexDir(path, indexDir) {
				return filepath.SkipDir
			}
			return nil
		}

		if isHidden(d.Name()) || !d.Type().IsRegular() {
			return nil
		}
		if _, ok := l.loaders.For(path); !ok {
			return nil
		}
		if pattern, ok := l.excluded(d.Name()); ok {
			logger.Debug("Excluding %s (matches %q)", path, pattern)
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: scan %s: %w", domain.ErrConfiguration, dir, err)
	}
	return paths, nil
}

func (l *DocumentLoader) isIndexDir(path, indexDir string) bool {
	if indexDir == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return abs == indexDir
}

// excluded reports the first exclude pattern matching name.
// Matching is case-insensitive.
func (l *DocumentLoader) excluded(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, pattern := range l.exclude {
		if ok, err := filepath.Match(strings.ToLower(pattern), lower); err == nil && ok {
			return pattern, true
		}
	}
	return "", false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
