package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"faqbot/internal/index"
	"faqbot/internal/vectorstore"
)

var _ vectorstore.Storage = (*Storage)(nil)

// Storage writes the index artifact as a single JSON document.
// Writes go to a temp file that is renamed into place.
type Storage struct {
	path string
}

func NewStorage(path string) (*Storage, error) {
	if path == "" {
		return nil, errors.New("index file path required")
	}
	return &Storage{path: path}, nil
}

// Path returns the artifact location.
func (s *Storage) Path() string { return s.path }

func (s *Storage) Save(ctx context.Context, g *index.Generation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	if err := enc.Encode(g.Artifact()); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding index artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *Storage) Load(ctx context.Context) (*index.Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, vectorstore.ErrNotFound
		}
		return nil, err
	}
	defer f.Close()

	var a index.Artifact
	if err := json.NewDecoder(f).Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %v", index.ErrArtifactCorrupt, err)
	}
	return index.FromArtifact(&a)
}

func (s *Storage) Close() error { return nil }
