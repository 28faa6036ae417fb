package memory

import (
	"context"
	"sync"

	"faqbot/internal/index"
	"faqbot/internal/vectorstore"
)

var _ vectorstore.Storage = (*Storage)(nil)

// Storage keeps the last saved generation in process memory.
type Storage struct {
	mu       sync.RWMutex
	artifact *index.Artifact
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Save(ctx context.Context, g *index.Generation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a := g.Artifact()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifact = a
	return nil
}

func (s *Storage) Load(ctx context.Context) (*index.Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	a := s.artifact
	s.mu.RUnlock()
	if a == nil {
		return nil, vectorstore.ErrNotFound
	}
	return index.FromArtifact(a)
}

func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifact = nil
	return nil
}
