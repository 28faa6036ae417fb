package vectorstore

import (
	"context"
	"errors"

	"faqbot/internal/index"
)

// ErrNotFound is returned by Load when nothing has been persisted yet.
var ErrNotFound = errors.New("no persisted index")

// Storage persists index generations so a restart can skip rebuilding.
type Storage interface {
	Save(ctx context.Context, g *index.Generation) error
	Load(ctx context.Context) (*index.Generation, error)
	Close() error
}
