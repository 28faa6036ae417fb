package tfidf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzeAll(a *Analyzer, docs []string) [][]string {
	out := make([][]string, len(docs))
	for i, d := range docs {
		out[i] = a.Terms(d)
	}
	return out
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := map[string]func(*Config){
		"ngram min":    func(c *Config) { c.NGramMin = 0 },
		"ngram order":  func(c *Config) { c.NGramMin, c.NGramMax = 3, 2 },
		"min df":       func(c *Config) { c.MinDF = 0 },
		"max df zero":  func(c *Config) { c.MaxDF = 0 },
		"max df high":  func(c *Config) { c.MaxDF = 1.5 },
		"max df nan":   func(c *Config) { c.MaxDF = math.NaN() },
		"token length": func(c *Config) { c.MinTokenLength = 0 },
	}
	for name, mutate := range bad {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfigEqual(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	a.Stopwords = []string{"The", "a"}
	b.Stopwords = []string{"a", "the", "the"}
	assert.True(t, a.Equal(b))

	b.SublinearTF = true
	assert.False(t, a.Equal(b))
}

func TestAnalyzerTerms(t *testing.T) {
	a := NewAnalyzer(Config{NGramMin: 1, NGramMax: 2, MinDF: 1, MaxDF: 1, MinTokenLength: 1})
	assert.Equal(t,
		[]string{"how", "to", "reset", "how to", "to reset"},
		a.Terms("How to RESET?"))
	assert.Nil(t, a.Terms("   "))
}

func TestAnalyzerStopwordsBeforeNGrams(t *testing.T) {
	cfg := Config{NGramMin: 1, NGramMax: 2, MinDF: 1, MaxDF: 1, MinTokenLength: 1, Stopwords: []string{"To", "my"}}
	a := NewAnalyzer(cfg)
	assert.Equal(t,
		[]string{"how", "reset", "password", "how reset", "reset password"},
		a.Terms("how to reset my password"))
}

func TestAnalyzerMinTokenLength(t *testing.T) {
	a := NewAnalyzer(Config{NGramMin: 1, NGramMax: 1, MinDF: 1, MaxDF: 1, MinTokenLength: 2})
	assert.Equal(t, []string{"is", "it"}, a.Terms("a is it"))
}

func TestBuildVocabulary(t *testing.T) {
	a := NewAnalyzer(Config{NGramMin: 1, NGramMax: 1, MinDF: 1, MaxDF: 1, MinTokenLength: 1})
	docs := analyzeAll(a, []string{"apple banana", "apple cherry", "apple apple"})
	v := BuildVocabulary(docs, 1, 1.0)

	require.Equal(t, 3, v.Len())
	assert.Equal(t, 3, v.Documents())

	apple, ok := v.Lookup("apple")
	require.True(t, ok)
	assert.Equal(t, 0, apple.Index)
	assert.Equal(t, 3, apple.DF)
	// term in every document keeps a strictly positive weight
	assert.InDelta(t, 1.0, apple.IDF, 1e-12)

	banana, ok := v.Lookup("banana")
	require.True(t, ok)
	assert.Equal(t, 1, banana.Index)
	assert.InDelta(t, math.Log(4.0/2.0)+1, banana.IDF, 1e-12)

	_, ok = v.Lookup("durian")
	assert.False(t, ok)
}

func TestBuildVocabularyDocumentFrequencyBounds(t *testing.T) {
	a := NewAnalyzer(Config{NGramMin: 1, NGramMax: 1, MinDF: 1, MaxDF: 1, MinTokenLength: 1})
	docs := analyzeAll(a, []string{"common rare", "common shared", "common shared"})

	v := BuildVocabulary(docs, 2, 1.0)
	assert.Equal(t, []string{"common", "shared"}, termTexts(v))

	v = BuildVocabulary(docs, 1, 0.7)
	assert.Equal(t, []string{"rare", "shared"}, termTexts(v))
}

func TestBuildVocabularyEmpty(t *testing.T) {
	v := BuildVocabulary(nil, 1, 1.0)
	assert.Equal(t, 0, v.Len())

	a := NewAnalyzer(Config{NGramMin: 1, NGramMax: 1, MinDF: 1, MaxDF: 1, MinTokenLength: 1, Stopwords: []string{"the"}})
	v = BuildVocabulary(analyzeAll(a, []string{"the", "?!"}), 1, 1.0)
	assert.Equal(t, 0, v.Len())
	enc := NewEncoder(a, v, false)
	assert.True(t, enc.Encode("the thing").IsZero())
}

func TestNewVocabularyValidation(t *testing.T) {
	_, err := NewVocabulary(1, []Term{{Text: "a", Index: 1, DF: 1, IDF: 1}})
	assert.Error(t, err)
	_, err = NewVocabulary(1, []Term{{Text: "a", Index: 0, DF: 1, IDF: 1}, {Text: "a", Index: 1, DF: 1, IDF: 1}})
	assert.Error(t, err)
	_, err = NewVocabulary(1, []Term{{Text: "a", Index: 0, DF: 1, IDF: 0}})
	assert.Error(t, err)

	v, err := NewVocabulary(2, []Term{{Text: "a", Index: 0, DF: 1, IDF: 1.4}})
	require.NoError(t, err)
	assert.Equal(t, 1, v.Len())
	assert.Equal(t, 2, v.Documents())
}

func TestEncodeNormalized(t *testing.T) {
	cfg := DefaultConfig()
	a := NewAnalyzer(cfg)
	corpus := []string{"how to reset password", "how to cancel subscription", "reset reset reset link"}
	v := BuildVocabulary(analyzeAll(a, corpus), cfg.MinDF, cfg.MaxDF)

	for _, sublinear := range []bool{false, true} {
		enc := NewEncoder(a, v, sublinear)
		for _, doc := range corpus {
			vec := enc.Encode(doc)
			require.NoError(t, vec.Validate(v.Len()))
			assert.InDelta(t, 1.0, vec.Norm(), 1e-9)
		}
	}
}

func TestEncodeWeights(t *testing.T) {
	cfg := Config{NGramMin: 1, NGramMax: 1, MinDF: 1, MaxDF: 1, MinTokenLength: 1}
	a := NewAnalyzer(cfg)
	v := BuildVocabulary(analyzeAll(a, []string{"x y", "y"}), 1, 1)
	x, _ := v.Lookup("x")
	y, _ := v.Lookup("y")

	raw := NewEncoder(a, v, false).Encode("x x x y")
	wx, wy := 3*x.IDF, 1*y.IDF
	n := math.Sqrt(wx*wx + wy*wy)
	assert.Equal(t, []int{x.Index, y.Index}, raw.Indices)
	assert.InDelta(t, wx/n, raw.Values[0], 1e-12)
	assert.InDelta(t, wy/n, raw.Values[1], 1e-12)

	sub := NewEncoder(a, v, true).Encode("x x x y")
	wx = (1 + math.Log(3)) * x.IDF
	n = math.Sqrt(wx*wx + wy*wy)
	assert.InDelta(t, wx/n, sub.Values[0], 1e-12)
}

func TestEncodeOutOfVocabulary(t *testing.T) {
	cfg := DefaultConfig()
	a := NewAnalyzer(cfg)
	v := BuildVocabulary(analyzeAll(a, []string{"refund policy"}), 1, 1)
	enc := NewEncoder(a, v, false)

	assert.True(t, enc.Encode("weather forecast").IsZero())
	assert.Equal(t, enc.Encode("refund"), enc.Encode("refund unknownword"))
}

func TestDot(t *testing.T) {
	a := Vector{Indices: []int{0, 2, 5}, Values: []float64{1, 2, 3}}
	b := Vector{Indices: []int{2, 3, 5}, Values: []float64{4, 1, 1}}
	assert.InDelta(t, 11.0, Dot(a, b), 1e-12)
	assert.Equal(t, 0.0, Dot(a, Vector{}))
}

func TestVectorValidate(t *testing.T) {
	assert.NoError(t, Vector{}.Validate(0))
	assert.Error(t, Vector{Indices: []int{1, 0}, Values: []float64{1, 1}}.Validate(3))
	assert.Error(t, Vector{Indices: []int{3}, Values: []float64{1}}.Validate(3))
	assert.Error(t, Vector{Indices: []int{0}, Values: []float64{-1}}.Validate(3))
	assert.Error(t, Vector{Indices: []int{0}}.Validate(3))
}

func termTexts(v *Vocabulary) []string {
	var out []string
	for _, t := range v.Terms() {
		out = append(out, t.Text)
	}
	return out
}
