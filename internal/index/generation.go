// Package index builds, ranks and hot-swaps TF-IDF index generations.
//
// A Generation is an immutable snapshot of vocabulary, document vectors and
// the corpus entries they were computed from. Queries are always answered
// against exactly one generation; the Coordinator replaces the live one
// atomically after a complete rebuild.
package index

import (
	"fmt"
	"sort"
	"time"

	"faqbot/internal/domain"
	"faqbot/internal/embedding/tfidf"
)

// Settings are the indexing options that define a generation's vector space.
type Settings struct {
	tfidf.Config
	IndexAnswers bool `json:"index_answers"`
}

// DefaultSettings indexes questions only with unigram and bigram terms.
func DefaultSettings() Settings {
	return Settings{Config: tfidf.DefaultConfig()}
}

// Equal reports whether two settings yield the same vector space.
func (s Settings) Equal(o Settings) bool {
	return s.IndexAnswers == o.IndexAnswers && s.Config.Equal(o.Config)
}

// Generation is one complete, immutable build of vocabulary and vectors.
type Generation struct {
	version  uint64
	builtAt  time.Time
	settings Settings
	encoder  *tfidf.Encoder
	entries  []domain.Entry
	vectors  []tfidf.Vector
}

// Empty returns a generation with no documents. Every query against it defers.
func Empty(settings Settings) *Generation {
	vocab := tfidf.BuildVocabulary(nil, settings.MinDF, settings.MaxDF)
	return &Generation{
		builtAt:  time.Now().UTC(),
		settings: settings,
		encoder:  tfidf.NewEncoder(tfidf.NewAnalyzer(settings.Config), vocab, settings.SublinearTF),
	}
}

// Version is the generation's sequence number; 0 means never published.
func (g *Generation) Version() uint64 { return g.version }

// BuiltAt returns when the generation was built.
func (g *Generation) BuiltAt() time.Time { return g.builtAt }

// Settings returns the settings the generation was built with.
func (g *Generation) Settings() Settings { return g.settings }

// Len returns the number of indexed entries.
func (g *Generation) Len() int { return len(g.entries) }

// Vocabulary returns the generation's vocabulary.
func (g *Generation) Vocabulary() *tfidf.Vocabulary { return g.encoder.Vocabulary() }

// Entry returns the i-th corpus entry.
func (g *Generation) Entry(i int) domain.Entry { return g.entries[i] }

// Vector returns the i-th document vector.
func (g *Generation) Vector(i int) tfidf.Vector { return g.vectors[i] }

// Encode projects a query into this generation's vector space.
func (g *Generation) Encode(query string) tfidf.Vector { return g.encoder.Encode(query) }

// Rank scores every entry against query and returns the best min(k, Len())
// matches by descending score. Exact ties keep ascending corpus order.
func (g *Generation) Rank(query string, k int) []domain.Match {
	if k <= 0 || len(g.entries) == 0 {
		return []domain.Match{}
	}
	q := g.encoder.Encode(query)
	scored := make([]domain.Match, len(g.entries))
	for i := range g.entries {
		scored[i] = domain.Match{Entry: g.entries[i], Position: i, Score: tfidf.Dot(q, g.vectors[i])}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Position < scored[j].Position
	})
	if k > len(scored) {
		k = len(scored)
	}
	out := make([]domain.Match, k)
	copy(out, scored[:k])
	return out
}

// Validate checks that vectors and entries line up and that every vector
// lives in the generation's vocabulary space.
func (g *Generation) Validate() error {
	if len(g.entries) != len(g.vectors) {
		return fmt.Errorf("%d entries but %d vectors", len(g.entries), len(g.vectors))
	}
	dim := g.encoder.Vocabulary().Len()
	for i, v := range g.vectors {
		if err := v.Validate(dim); err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
	}
	return nil
}

func documentText(e domain.Entry, withAnswer bool) string {
	if withAnswer {
		return e.Question + " " + e.Answer
	}
	return e.Question
}
