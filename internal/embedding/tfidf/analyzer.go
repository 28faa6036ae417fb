package tfidf

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"faqbot/internal/textnorm"
)

// ErrInvalidConfig is returned when vectorizer settings are out of range.
var ErrInvalidConfig = errors.New("invalid tfidf config")

// Config holds the settings that shape terms and weights.
// Two generations are only comparable when their Configs are equal.
type Config struct {
	NGramMin       int      `json:"ngram_min" yaml:"ngram_min" toml:"ngram_min"`
	NGramMax       int      `json:"ngram_max" yaml:"ngram_max" toml:"ngram_max"`
	MinDF          int      `json:"min_df" yaml:"min_df" toml:"min_df"`
	MaxDF          float64  `json:"max_df" yaml:"max_df" toml:"max_df"`
	SublinearTF    bool     `json:"sublinear_tf" yaml:"sublinear_tf" toml:"sublinear_tf"`
	MinTokenLength int      `json:"min_token_length" yaml:"min_token_length" toml:"min_token_length"`
	Stopwords      []string `json:"stopwords,omitempty" yaml:"-" toml:"-"`
}

// DefaultConfig returns unigram+bigram terms with no document-frequency filtering.
func DefaultConfig() Config {
	return Config{NGramMin: 1, NGramMax: 2, MinDF: 1, MaxDF: 1.0, MinTokenLength: 1}
}

// Validate checks the ranges of every field.
func (c Config) Validate() error {
	switch {
	case c.NGramMin < 1:
		return fmt.Errorf("%w: ngram_min must be >= 1, got %d", ErrInvalidConfig, c.NGramMin)
	case c.NGramMax < c.NGramMin:
		return fmt.Errorf("%w: ngram_max %d < ngram_min %d", ErrInvalidConfig, c.NGramMax, c.NGramMin)
	case c.MinDF < 1:
		return fmt.Errorf("%w: min_df must be >= 1, got %d", ErrInvalidConfig, c.MinDF)
	case math.IsNaN(c.MaxDF) || c.MaxDF <= 0 || c.MaxDF > 1:
		return fmt.Errorf("%w: max_df must be in (0, 1], got %v", ErrInvalidConfig, c.MaxDF)
	case c.MinTokenLength < 1:
		return fmt.Errorf("%w: min_token_length must be >= 1, got %d", ErrInvalidConfig, c.MinTokenLength)
	}
	return nil
}

// Equal reports whether both configs produce the same vector space.
func (c Config) Equal(o Config) bool {
	if c.NGramMin != o.NGramMin || c.NGramMax != o.NGramMax || c.MinDF != o.MinDF ||
		c.MaxDF != o.MaxDF || c.SublinearTF != o.SublinearTF || c.MinTokenLength != o.MinTokenLength {
		return false
	}
	a, b := normalizeStopwords(c.Stopwords), normalizeStopwords(o.Stopwords)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Analyzer turns text into the terms counted by the vocabulary.
// Stopwords and short tokens are removed before n-grams are assembled.
type Analyzer struct {
	ngramMin  int
	ngramMax  int
	minLength int
	stopwords map[string]struct{}
}

// NewAnalyzer creates an analyzer for the given config.
// The config is assumed to be valid.
func NewAnalyzer(cfg Config) *Analyzer {
	words := normalizeStopwords(cfg.Stopwords)
	stop := make(map[string]struct{}, len(words))
	for _, w := range words {
		stop[w] = struct{}{}
	}
	return &Analyzer{
		ngramMin:  cfg.NGramMin,
		ngramMax:  cfg.NGramMax,
		minLength: cfg.MinTokenLength,
		stopwords: stop,
	}
}

// Terms normalizes text and returns its n-gram terms, repeats included.
func (a *Analyzer) Terms(text string) []string {
	raw := textnorm.Tokens(text)
	if len(raw) == 0 {
		return nil
	}
	tokens := raw[:0]
	for _, t := range raw {
		if _, isStop := a.stopwords[t]; isStop {
			continue
		}
		if utf8.RuneCountInString(t) < a.minLength {
			continue
		}
		tokens = append(tokens, t)
	}
	var terms []string
	for n := a.ngramMin; n <= a.ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				terms = append(terms, tokens[i])
				continue
			}
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

// normalizeStopwords returns the sorted, de-duplicated single-token stopwords.
func normalizeStopwords(words []string) []string {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		n := textnorm.Normalize(w)
		if n == "" || strings.Contains(n, " ") {
			continue
		}
		set[n] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
