package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faqbot/internal/corpus"
	"faqbot/internal/domain"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "faq.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, path, s.Path())

	entries, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpsertAppendsAndUpdates(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	first, err := s.Upsert(ctx, domain.Entry{Question: " First? ", Answer: "One."})
	require.NoError(t, err)
	_, err = uuid.Parse(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "First?", first.Question)

	_, err = s.Upsert(ctx, domain.Entry{ID: "b", Question: "Second?", Answer: "Two."})
	require.NoError(t, err)

	first.Answer = "Uno."
	_, err = s.Upsert(ctx, first)
	require.NoError(t, err)

	entries, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].ID, "update keeps position")
	assert.Equal(t, "Uno.", entries[0].Answer)
	assert.Equal(t, "b", entries[1].ID)

	got, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "Second?", got.Question)
}

func TestGetAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Get(ctx, "nope")
	assert.ErrorIs(t, err, corpus.ErrEntryNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "nope"), corpus.ErrEntryNotFound)

	e, err := s.Upsert(ctx, domain.Entry{Question: "Q?", Answer: "A."})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, e.ID))
	_, err = s.Get(ctx, e.ID)
	assert.ErrorIs(t, err, corpus.ErrEntryNotFound)
}

func TestImportReplacesAndFixesIDs(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Upsert(ctx, domain.Entry{ID: "old", Question: "Old?", Answer: "Gone."})
	require.NoError(t, err)

	valid := uuid.NewString()
	stored, err := s.Import(ctx, []domain.Entry{
		{ID: "1", Question: "Numeric id?", Answer: "Replaced."},
		{ID: valid, Question: "Valid id?", Answer: "Kept."},
		{Question: "No id?", Answer: "Assigned."},
	})
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.NotEqual(t, "1", stored[0].ID)
	_, err = uuid.Parse(stored[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, valid, stored[1].ID)
	assert.NotEmpty(t, stored[2].ID)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, stored, entries)
}

func TestImportDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	id := uuid.NewString()
	stored, err := s.Import(ctx, []domain.Entry{
		{ID: id, Question: "First?", Answer: "One."},
		{ID: id, Question: "Copy?", Answer: "Two."},
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, id, stored[0].ID)
	assert.NotEqual(t, id, stored[1].ID)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, stored, entries)
}

func TestRecordConsultations(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	m := &domain.Match{Entry: domain.Entry{ID: "e1"}, Score: 0.8}
	require.NoError(t, s.Record(ctx, "how do I pay", domain.Outcome{Kind: domain.OutcomeAnswer, Match: m, Score: 0.8}))
	require.NoError(t, s.Record(ctx, "zzz", domain.Outcome{Kind: domain.OutcomeDefer, Score: 0.1}))

	got, err := s.Consultations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "zzz", got[0].Query)
	assert.Equal(t, domain.OutcomeDefer, got[0].Outcome)
	assert.Empty(t, got[0].EntryID)
	assert.Equal(t, "e1", got[1].EntryID)
	assert.InDelta(t, 0.8, got[1].Score, 1e-9)
	assert.False(t, got[1].CreatedAt.IsZero())
}
