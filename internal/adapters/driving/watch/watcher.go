// Package watch rebuilds the index when documents in the workspace change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/logger"
)

// DefaultDebounce is how long the workspace must be quiet before a reindex.
const DefaultDebounce = 2 * time.Second

// Reindexer rebuilds the index.
type Reindexer interface {
	Reindex(ctx context.Context) (*domain.IndexReport, error)
}

// ReportFunc receives the outcome of each triggered reindex.
type ReportFunc func(*domain.IndexReport, error)

// Watcher triggers a reindex after a burst of document changes settles.
type Watcher struct {
	reindexer Reindexer
	root      string
	indexDir  string
	recursive bool
	debounce  time.Duration
	onReport  ReportFunc
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a reindex.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithReportFunc sets the callback invoked after every reindex.
func WithReportFunc(fn ReportFunc) Option {
	return func(w *Watcher) {
		w.onReport = fn
	}
}

// New creates a watcher for the workspace described by cfg.
func New(r Reindexer, cfg domain.EngineConfig, opts ...Option) *Watcher {
	w := &Watcher{
		reindexer: r,
		root:      filepath.Clean(cfg.WorkspaceDir),
		indexDir:  filepath.Clean(cfg.IndexDir),
		recursive: cfg.Recursive,
		debounce:  DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.root)
	if err != nil {
		return fmt.Errorf("%w: workspace: %w", domain.ErrConfiguration, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: workspace %s is not a directory", domain.ErrConfiguration, w.root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addDirs(fsw, w.root); err != nil {
		return err
	}
	logger.Info("watch: watching %s (debounce %s)", w.root, w.debounce)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.recursive && event.Has(fsnotify.Create) && w.isWatchableDir(event.Name) {
				if err := w.addDirs(fsw, event.Name); err != nil {
					logger.Warn("watch: %v", err)
				}
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug("watch: %s %s", event.Op, event.Name)
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case <-timer.C:
			report, err := w.reindexer.Reindex(ctx)
			if errors.Is(err, domain.ErrIndexingInProgress) {
				logger.Debug("watch: reindex already running, retrying later")
				timer.Reset(w.debounce)
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			if w.onReport != nil {
				w.onReport(report, err)
			}
		}
	}
}

// addDirs watches dir, and its sub-directories when recursive.
func (w *Watcher) addDirs(fsw *fsnotify.Watcher, dir string) error {
	if !w.recursive {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && !w.isWatchableDir(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// isWatchableDir reports whether path is a visible directory outside the index.
func (w *Watcher) isWatchableDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	return !w.inIndexDir(path) && !isHidden(w.rel(path))
}

// relevant reports whether an event can change the indexed documents.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if w.inIndexDir(event.Name) || isHidden(w.rel(event.Name)) {
		return false
	}
	_, ok := domain.FormatForPath(event.Name)
	return ok
}

func (w *Watcher) inIndexDir(path string) bool {
	path = filepath.Clean(path)
	return path == w.indexDir || strings.HasPrefix(path, w.indexDir+string(filepath.Separator))
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return path
	}
	return rel
}

// isHidden reports whether any component of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
