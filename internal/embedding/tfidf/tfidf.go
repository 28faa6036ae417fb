package tfidf

import (
	"math"
	"sort"
)

// Encoder projects text into the vector space of one vocabulary.
type Encoder struct {
	analyzer  *Analyzer
	vocab     *Vocabulary
	sublinear bool
}

// NewEncoder creates an encoder. The analyzer must be the one the vocabulary was built with.
func NewEncoder(analyzer *Analyzer, vocab *Vocabulary, sublinear bool) *Encoder {
	return &Encoder{analyzer: analyzer, vocab: vocab, sublinear: sublinear}
}

// Vocabulary returns the vocabulary vectors are expressed in.
func (e *Encoder) Vocabulary() *Vocabulary { return e.vocab }

// Encode computes the L2-normalized TF-IDF vector of text.
// Terms missing from the vocabulary are ignored.
func (e *Encoder) Encode(text string) Vector {
	return e.EncodeTerms(e.analyzer.Terms(text))
}

// EncodeTerms computes the vector for terms already produced by the analyzer.
func (e *Encoder) EncodeTerms(terms []string) Vector {
	tf := make(map[int]int)
	idf := make(map[int]float64)
	for _, term := range terms {
		if t, ok := e.vocab.Lookup(term); ok {
			tf[t.Index]++
			idf[t.Index] = t.IDF
		}
	}
	if len(tf) == 0 {
		return Vector{}
	}
	vec := Vector{
		Indices: make([]int, 0, len(tf)),
		Values:  make([]float64, len(tf)),
	}
	for idx := range tf {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)
	for i, idx := range vec.Indices {
		w := float64(tf[idx])
		if e.sublinear {
			w = 1 + math.Log(w)
		}
		vec.Values[i] = w * idf[idx]
	}
	// L2 normalize
	norm := vec.Norm()
	if norm == 0 {
		return Vector{}
	}
	for i := range vec.Values {
		vec.Values[i] /= norm
	}
	return vec
}
