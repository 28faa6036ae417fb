package index

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"faqbot/internal/domain"
)

// Live holds the generation currently serving queries.
// Readers take a reference once per call and keep using it to the end.
type Live struct {
	current atomic.Pointer[Generation]
}

// NewLive creates a holder serving initial.
func NewLive(initial *Generation) *Live {
	l := &Live{}
	l.current.Store(initial)
	return l
}

// Current returns the live generation.
func (l *Live) Current() *Generation { return l.current.Load() }

// Replace publishes g. Every Current call that starts afterwards observes g.
func (l *Live) Replace(g *Generation) { l.current.Store(g) }

// Coordinator rebuilds generations from corpus snapshots and swaps them in.
// Reloads are serialized; queries never wait on a build.
type Coordinator struct {
	live     *Live
	settings Settings
	workers  int
	logger   *slog.Logger
	mu       sync.Mutex
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// WithWorkers sets the build worker pool size. Values below 1 mean runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(c *Coordinator) { c.workers = n }
}

// NewCoordinator creates a coordinator serving an empty generation.
func NewCoordinator(settings Settings, opts ...Option) (*Coordinator, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	c := &Coordinator{
		settings: settings,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.live = NewLive(Empty(settings))
	return c, nil
}

// Settings returns the settings used for every build.
func (c *Coordinator) Settings() Settings { return c.settings }

// Current returns the live generation.
func (c *Coordinator) Current() *Generation { return c.live.Current() }

// Build creates a new generation without publishing it. Abandoning the
// result leaves the live generation untouched.
func (c *Coordinator) Build(ctx context.Context, entries []domain.Entry) (*Generation, error) {
	return Build(ctx, entries, c.settings, c.workers)
}

// Swap publishes g as the live generation. g itself is never modified:
// what goes live is a copy stamped with the next version.
func (c *Coordinator) Swap(g *Generation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.swapLocked(g)
	return err
}

// Reload builds a generation from entries and swaps it in. On failure the
// live generation keeps serving and the error is returned.
func (c *Coordinator) Reload(ctx context.Context, entries []domain.Entry) (*Generation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	c.logger.Info("rebuilding index", "documents", len(entries))
	g, err := c.Build(ctx, entries)
	if err != nil {
		c.logger.Error("index rebuild failed, keeping live index", "err", err,
			"live_version", c.live.Current().Version())
		return nil, err
	}
	g, err = c.swapLocked(g)
	if err != nil {
		return nil, err
	}
	c.logger.Info("index swapped",
		"version", g.Version(),
		"documents", g.Len(),
		"terms", g.Vocabulary().Len(),
		"elapsed", time.Since(start))
	return g, nil
}

// Restore publishes a previously persisted generation. It must have been
// built with this coordinator's settings.
func (c *Coordinator) Restore(g *Generation) error {
	if !g.Settings().Equal(c.settings) {
		return ErrArtifactMismatch
	}
	return c.Swap(g)
}

func (c *Coordinator) swapLocked(g *Generation) (*Generation, error) {
	if g == nil {
		return nil, fmt.Errorf("swap: nil generation")
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("swap: %w", err)
	}
	// Versions only move forward. Readers may already hold g, so the
	// stamp goes on a private copy.
	published := *g
	if cur := c.live.Current(); published.version <= cur.version {
		published.version = cur.version + 1
	}
	c.live.Replace(&published)
	return &published, nil
}
