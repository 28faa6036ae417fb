package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"faqbot/internal/domain"
	"faqbot/internal/index"
	"faqbot/internal/vectorstore"
)

var _ domain.FAQService = (*FAQServiceImpl)(nil)

// FAQServiceImpl answers questions against the live index and keeps it
// fresh. It is safe for concurrent use.
type FAQServiceImpl struct {
	coord        *index.Coordinator
	gate         index.Gate
	topK         int
	deferMessage string
	emptyMessage string
	store        vectorstore.Storage
	recorder     domain.Recorder
	logger       *slog.Logger

	// mu orders reload+save pairs and restores against each other.
	mu sync.Mutex
}

// Option configures a FAQServiceImpl.
type Option func(*FAQServiceImpl)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *FAQServiceImpl) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// WithStorage persists every reloaded generation to store.
func WithStorage(store vectorstore.Storage) Option {
	return func(s *FAQServiceImpl) { s.store = store }
}

// WithRecorder logs every question asked.
func WithRecorder(r domain.Recorder) Option {
	return func(s *FAQServiceImpl) { s.recorder = r }
}

// WithMessages sets the texts returned when deferring and for empty questions.
// Empty strings keep the current value.
func WithMessages(deferMessage, emptyMessage string) Option {
	return func(s *FAQServiceImpl) {
		if deferMessage != "" {
			s.deferMessage = deferMessage
		}
		if emptyMessage != "" {
			s.emptyMessage = emptyMessage
		}
	}
}

// WithTopK sets how many matches TopK returns when asked for k <= 0.
func WithTopK(k int) Option {
	return func(s *FAQServiceImpl) {
		if k > 0 {
			s.topK = k
		}
	}
}

func NewFAQService(coord *index.Coordinator, gate index.Gate, opts ...Option) *FAQServiceImpl {
	s := &FAQServiceImpl{
		coord:        coord,
		gate:         gate,
		topK:         5,
		deferMessage: "I'm not sure. Can you rephrase or be more specific?",
		emptyMessage: "Please type a question.",
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask matches query against the live index and decides whether to answer.
func (s *FAQServiceImpl) Ask(ctx context.Context, query string) domain.Outcome {
	out, _ := s.consult(ctx, s.coord.Current(), query, 1)
	return out
}

// Consult decides query and returns its k best matches, both taken from
// the same generation. k <= 0 uses the configured default. An empty query
// yields no matches.
func (s *FAQServiceImpl) Consult(ctx context.Context, query string, k int) (domain.Outcome, []domain.Match) {
	if k <= 0 {
		k = s.topK
	}
	return s.consult(ctx, s.coord.Current(), query, k)
}

func (s *FAQServiceImpl) consult(ctx context.Context, g *index.Generation, query string, k int) (domain.Outcome, []domain.Match) {
	var (
		out    domain.Outcome
		ranked = []domain.Match{}
	)
	if strings.TrimSpace(query) == "" {
		out = domain.Outcome{Kind: domain.OutcomeEmptyQuery, Message: s.emptyMessage}
	} else {
		ranked = g.Rank(query, k)
		out = s.gate.Decide(ranked)
		if out.Answered() {
			out.Message = out.Match.Answer
		} else {
			out.Message = s.deferMessage
		}
		s.logger.Debug("question decided",
			"outcome", out.Kind,
			"score", out.Score,
			"threshold", s.gate.Threshold,
			"version", g.Version())
	}
	if s.recorder != nil {
		if err := s.recorder.Record(ctx, query, out); err != nil {
			s.logger.Warn("failed to record consultation", "err", err)
		}
	}
	return out, ranked
}

// TopK returns the k best matches without gating. k <= 0 uses the configured default.
func (s *FAQServiceImpl) TopK(_ context.Context, query string, k int) []domain.Match {
	if k <= 0 {
		k = s.topK
	}
	return s.coord.Current().Rank(query, k)
}

// Reload rebuilds the index from entries and swaps it in. The new
// generation is persisted when a storage is configured; a failed save is
// logged and does not fail the reload. Reloads and saves run one at a time,
// so storage always ends up holding the generation that went live last.
func (s *FAQServiceImpl) Reload(ctx context.Context, entries []domain.Entry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.coord.Reload(ctx, entries)
	if err != nil {
		return 0, err
	}
	if err := s.persist(ctx, g); err != nil {
		s.logger.Error("failed to persist index", "version", g.Version(), "err", err)
	}
	return g.Len(), nil
}

// ReloadFrom takes a snapshot from src and reloads from it.
func (s *FAQServiceImpl) ReloadFrom(ctx context.Context, src domain.CorpusSource) (int, error) {
	entries, err := src.Snapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCorpusUnavailable, err)
	}
	return s.Reload(ctx, entries)
}

// Restore publishes the generation held in storage. It reports false when
// there is no storage, nothing has been saved yet, or the saved index was
// built with different settings.
func (s *FAQServiceImpl) Restore(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.store.Load(ctx)
	if errors.Is(err, vectorstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.coord.Restore(g); err != nil {
		if errors.Is(err, index.ErrArtifactMismatch) {
			s.logger.Info("saved index was built with other settings, ignoring it")
			return false, nil
		}
		return false, err
	}
	s.logger.Info("index restored", "version", s.coord.Current().Version(), "documents", g.Len())
	return true, nil
}

// Warm makes the service ready to answer: it restores a saved index when
// one matches the current settings, and rebuilds from src otherwise.
func (s *FAQServiceImpl) Warm(ctx context.Context, src domain.CorpusSource) error {
	ok, err := s.Restore(ctx)
	if err != nil {
		s.logger.Warn("could not restore saved index, rebuilding", "err", err)
	}
	if ok {
		return nil
	}
	_, err = s.ReloadFrom(ctx, src)
	return err
}

// Persist saves the live generation.
func (s *FAQServiceImpl) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, s.coord.Current())
}

func (s *FAQServiceImpl) persist(ctx context.Context, g *index.Generation) error {
	if s.store == nil {
		return nil
	}
	return s.store.Save(ctx, g)
}

// Stats describes the live generation.
type Stats struct {
	Items   int       `json:"items"`
	Terms   int       `json:"terms"`
	Version uint64    `json:"version"`
	BuiltAt time.Time `json:"built_at"`
}

func (s *FAQServiceImpl) Stats() Stats {
	g := s.coord.Current()
	return Stats{
		Items:   g.Len(),
		Terms:   g.Vocabulary().Len(),
		Version: g.Version(),
		BuiltAt: g.BuiltAt(),
	}
}

// Threshold returns the confidence cutoff in use.
func (s *FAQServiceImpl) Threshold() float64 { return s.gate.Threshold }
