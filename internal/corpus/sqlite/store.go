package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"faqbot/internal/corpus"
	"faqbot/internal/domain"
)

var (
	_ domain.CorpusSource = (*Store)(nil)
	_ domain.Recorder     = (*Store)(nil)
)

// Store keeps the FAQ corpus and the consultation log in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Consultation is one logged question.
type Consultation struct {
	ID        string
	Query     string
	Outcome   domain.OutcomeKind
	EntryID   string
	Score     float64
	CreatedAt time.Time
}

// Open opens the database at path, creating it and its schema if needed.
// ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// one connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS faq (
            id TEXT PRIMARY KEY,
            q TEXT NOT NULL,
            a TEXT NOT NULL,
            position INTEGER NOT NULL,
            updated_at TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_faq_position ON faq(position);`,
		`CREATE TABLE IF NOT EXISTS consultation (
            id TEXT PRIMARY KEY,
            query TEXT NOT NULL,
            outcome TEXT NOT NULL,
            faq_id TEXT,
            score REAL NOT NULL,
            created_at TEXT NOT NULL
        );`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Snapshot returns every entry in corpus order.
func (s *Store) Snapshot(ctx context.Context) ([]domain.Entry, error) {
	return s.List(ctx)
}

// List returns every entry ordered by insertion position.
func (s *Store) List(ctx context.Context) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, q, a FROM faq ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.Entry{}
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.Question, &e.Answer); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns the entry with the given id.
func (s *Store) Get(ctx context.Context, id string) (domain.Entry, error) {
	var e domain.Entry
	err := s.db.QueryRowContext(ctx, `SELECT id, q, a FROM faq WHERE id = ?`, id).
		Scan(&e.ID, &e.Question, &e.Answer)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Entry{}, fmt.Errorf("%w: %s", corpus.ErrEntryNotFound, id)
	}
	return e, err
}

// Upsert inserts or replaces an entry. New entries go to the end of the
// corpus; an empty id is replaced by a new UUID. The stored entry is returned.
func (s *Store) Upsert(ctx context.Context, e domain.Entry) (domain.Entry, error) {
	e.Question = strings.TrimSpace(e.Question)
	e.Answer = strings.TrimSpace(e.Answer)
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO faq (id, q, a, position, updated_at)
        VALUES (?, ?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM faq), ?)
        ON CONFLICT(id) DO UPDATE SET q = excluded.q, a = excluded.a, updated_at = excluded.updated_at`,
		e.ID, e.Question, e.Answer, now())
	if err != nil {
		return domain.Entry{}, fmt.Errorf("upserting entry %s: %w", e.ID, err)
	}
	return e, nil
}

// Delete removes an entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM faq WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting entry %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", corpus.ErrEntryNotFound, id)
	}
	return nil
}

// Import replaces the whole corpus with entries, in order. Entries whose id
// is not a valid UUID, or repeats an earlier entry's id, get a fresh one.
// The stored entries are returned.
func (s *Store) Import(ctx context.Context, entries []domain.Entry) ([]domain.Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM faq`); err != nil {
		return nil, fmt.Errorf("clearing corpus: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO faq (id, q, a, position, updated_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ts := now()
	stored := make([]domain.Entry, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if _, err := uuid.Parse(e.ID); err != nil {
			e.ID = uuid.NewString()
		} else if _, dup := seen[e.ID]; dup {
			e.ID = uuid.NewString()
		}
		seen[e.ID] = struct{}{}
		e.Question = strings.TrimSpace(e.Question)
		e.Answer = strings.TrimSpace(e.Answer)
		if _, err := stmt.ExecContext(ctx, e.ID, e.Question, e.Answer, i, ts); err != nil {
			return nil, fmt.Errorf("inserting entry %d: %w", i, err)
		}
		stored[i] = e
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stored, nil
}

// Record logs a consultation.
func (s *Store) Record(ctx context.Context, query string, outcome domain.Outcome) error {
	var entryID sql.NullString
	if outcome.Match != nil {
		entryID = sql.NullString{String: outcome.Match.ID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO consultation (id, query, outcome, faq_id, score, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), query, string(outcome.Kind), entryID, outcome.Score, now())
	if err != nil {
		return fmt.Errorf("recording consultation: %w", err)
	}
	return nil
}

// Consultations returns the most recent logged questions, newest first.
func (s *Store) Consultations(ctx context.Context, limit int) ([]Consultation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, query, outcome, faq_id, score, created_at
        FROM consultation ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Consultation
	for rows.Next() {
		var (
			c       Consultation
			outcome string
			entryID sql.NullString
			created string
		)
		if err := rows.Scan(&c.ID, &c.Query, &outcome, &entryID, &c.Score, &created); err != nil {
			return nil, err
		}
		c.Outcome = domain.OutcomeKind(outcome)
		c.EntryID = entryID.String
		c.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, c)
	}
	return out, rows.Err()
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }
