package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"faqbot/internal/embedding/tfidf"
	"faqbot/internal/index"
	"faqbot/internal/vectorstore"
)

var _ vectorstore.Storage = (*Storage)(nil)

const (
	metaKey     = "meta"
	termPrefix  = "term/"
	entryPrefix = "entry/"
)

// meta is written last so a partial save never looks like a complete index.
type meta struct {
	Version   uint64         `json:"version"`
	BuiltAt   time.Time      `json:"built_at"`
	Settings  index.Settings `json:"settings"`
	Documents int            `json:"documents"`
	Terms     int            `json:"terms"`
	Entries   int            `json:"entries"`
}

// Storage persists the index artifact in a BadgerDB key space,
// one key per term and per entry.
type Storage struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLogger adapts slog.Logger to badger.Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (bl *badgerLogger) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLogger) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLogger) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLogger) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens (or creates) a store at dir. An empty dir opens an in-memory store.
func Open(dir string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = &badgerLogger{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger index store: %w", err)
	}
	return &Storage{db: db, logger: logger}, nil
}

func (s *Storage) Save(ctx context.Context, g *index.Generation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a := g.Artifact()
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("clearing previous index: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for i, t := range a.Terms {
		if err := setJSON(wb, termKey(i), t); err != nil {
			return err
		}
	}
	for i, e := range a.Entries {
		if err := setJSON(wb, entryKey(i), e); err != nil {
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := meta{
		Version:   a.Version,
		BuiltAt:   a.BuiltAt,
		Settings:  a.Settings,
		Documents: a.Documents,
		Terms:     len(a.Terms),
		Entries:   len(a.Entries),
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(metaKey), data)
	})
}

func (s *Storage) Load(ctx context.Context) (*index.Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var a index.Artifact
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return vectorstore.ErrNotFound
		}
		if err != nil {
			return err
		}
		var m meta
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &m) }); err != nil {
			return fmt.Errorf("%w: meta: %v", index.ErrArtifactCorrupt, err)
		}
		a.Version, a.BuiltAt, a.Settings, a.Documents = m.Version, m.BuiltAt, m.Settings, m.Documents

		a.Terms = make([]tfidf.Term, 0, m.Terms)
		if err := scan(txn, termPrefix, func(val []byte) error {
			var t tfidf.Term
			if err := json.Unmarshal(val, &t); err != nil {
				return err
			}
			a.Terms = append(a.Terms, t)
			return nil
		}); err != nil {
			return fmt.Errorf("%w: terms: %v", index.ErrArtifactCorrupt, err)
		}

		a.Entries = make([]index.ArtifactEntry, 0, m.Entries)
		if err := scan(txn, entryPrefix, func(val []byte) error {
			var e index.ArtifactEntry
			if err := json.Unmarshal(val, &e); err != nil {
				return err
			}
			a.Entries = append(a.Entries, e)
			return nil
		}); err != nil {
			return fmt.Errorf("%w: entries: %v", index.ErrArtifactCorrupt, err)
		}

		if len(a.Terms) != m.Terms || len(a.Entries) != m.Entries {
			return fmt.Errorf("%w: expected %d terms and %d entries, found %d and %d",
				index.ErrArtifactCorrupt, m.Terms, m.Entries, len(a.Terms), len(a.Entries))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index.FromArtifact(&a)
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func scan(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func setJSON(wb *badger.WriteBatch, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return wb.Set(key, data)
}

// Zero-padded keys iterate in index order.
func termKey(i int) []byte  { return []byte(fmt.Sprintf("%s%010d", termPrefix, i)) }
func entryKey(i int) []byte { return []byte(fmt.Sprintf("%s%010d", entryPrefix, i)) }
