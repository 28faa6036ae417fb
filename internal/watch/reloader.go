// Package watch reloads the index when the corpus file changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader watches a single file and calls a reload function once writes to
// it have settled. The directory is watched rather than the file so that
// editors replacing the file by rename are still seen.
type Reloader struct {
	path     string
	reload   func(context.Context) error
	debounce time.Duration
	logger   *slog.Logger
}

// Option configures a Reloader.
type Option func(*Reloader)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reloader) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// WithDebounce sets how long the file must stay quiet before reloading.
func WithDebounce(d time.Duration) Option {
	return func(r *Reloader) {
		if d > 0 {
			r.debounce = d
		}
	}
}

func New(path string, reload func(context.Context) error, opts ...Option) *Reloader {
	r := &Reloader{
		path:     filepath.Clean(path),
		reload:   reload,
		debounce: 500 * time.Millisecond,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run watches until ctx is done. Reload failures are logged; the caller's
// live index is expected to keep serving.
func (r *Reloader) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("watching %s: %w", r.path, err)
	}
	r.logger.Info("watching corpus", "path", r.path, "debounce", r.debounce)

	timer := time.NewTimer(r.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if r.relevant(ev) {
				timer.Reset(r.debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("watcher error", "err", err)
		case <-timer.C:
			r.logger.Info("corpus changed, reloading", "path", r.path)
			if err := r.reload(ctx); err != nil {
				r.logger.Error("reload after corpus change failed", "err", err)
			}
		}
	}
}

// relevant reports whether ev may have changed the watched file's content.
func (r *Reloader) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != r.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}
