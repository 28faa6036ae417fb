package tfidf

import (
	"fmt"
	"math"
	"sort"
)

// Term is a vocabulary entry.
type Term struct {
	Text  string  `json:"term"`
	Index int     `json:"index"`
	DF    int     `json:"df"`
	IDF   float64 `json:"idf"`
}

// Vocabulary maps terms to their index and weight. It is immutable once built.
type Vocabulary struct {
	index map[string]int
	terms []Term
	docs  int
}

// BuildVocabulary counts document frequencies over pre-analyzed documents,
// drops terms outside [minDF, maxDF*N] and assigns indices in lexical order.
// A corpus with no surviving terms yields an empty vocabulary.
func BuildVocabulary(docs [][]string, minDF int, maxDF float64) *Vocabulary {
	df := make(map[string]int)
	for _, terms := range docs {
		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}
	n := len(docs)
	maxCount := maxDF * float64(n)
	kept := make([]string, 0, len(df))
	for term, count := range df {
		if count < minDF || float64(count) > maxCount {
			continue
		}
		kept = append(kept, term)
	}
	// Create stable ordering for vocabulary
	sort.Strings(kept)

	v := &Vocabulary{
		index: make(map[string]int, len(kept)),
		terms: make([]Term, len(kept)),
		docs:  n,
	}
	N := float64(n)
	for i, term := range kept {
		v.index[term] = i
		v.terms[i] = Term{
			Text:  term,
			Index: i,
			DF:    df[term],
			// Smoothed IDF
			IDF: math.Log((1+N)/(1+float64(df[term]))) + 1.0,
		}
	}
	return v
}

// NewVocabulary rebuilds a vocabulary from stored terms, e.g. a persisted index.
// Terms must be ordered by index, unique, and carry positive finite weights.
func NewVocabulary(docs int, terms []Term) (*Vocabulary, error) {
	if docs < 0 {
		return nil, fmt.Errorf("negative document count %d", docs)
	}
	v := &Vocabulary{
		index: make(map[string]int, len(terms)),
		terms: make([]Term, len(terms)),
		docs:  docs,
	}
	for i, t := range terms {
		if t.Index != i {
			return nil, fmt.Errorf("term %q has index %d at position %d", t.Text, t.Index, i)
		}
		if _, dup := v.index[t.Text]; dup {
			return nil, fmt.Errorf("duplicate term %q", t.Text)
		}
		if math.IsNaN(t.IDF) || math.IsInf(t.IDF, 0) || t.IDF <= 0 {
			return nil, fmt.Errorf("term %q has invalid idf %v", t.Text, t.IDF)
		}
		v.index[t.Text] = i
		v.terms[i] = t
	}
	return v, nil
}

// Lookup returns the entry for term.
func (v *Vocabulary) Lookup(term string) (Term, bool) {
	i, ok := v.index[term]
	if !ok {
		return Term{}, false
	}
	return v.terms[i], true
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int { return len(v.terms) }

// Documents returns the corpus size the vocabulary was built from.
func (v *Vocabulary) Documents() int { return v.docs }

// Terms returns a copy of all terms ordered by index.
func (v *Vocabulary) Terms() []Term {
	out := make([]Term, len(v.terms))
	copy(out, v.terms)
	return out
}
