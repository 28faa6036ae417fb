package domain

import "context"

// Entry is a single question/answer pair of the FAQ corpus.
type Entry struct {
	ID       string `json:"id"`
	Question string `json:"q"`
	Answer   string `json:"a"`
}

// Match is a corpus entry ranked against a query.
// Position is the entry's place in the corpus the index was built from.
type Match struct {
	Entry
	Position int
	Score    float64
}

// OutcomeKind classifies the result of asking a question.
type OutcomeKind string

const (
	OutcomeAnswer     OutcomeKind = "answer"
	OutcomeDefer      OutcomeKind = "defer"
	OutcomeEmptyQuery OutcomeKind = "empty_query"
)

// Outcome is the decision returned for a single question.
// Match is only set for OutcomeAnswer; Score is the best score found (0 for an empty query).
type Outcome struct {
	Kind    OutcomeKind
	Match   *Match
	Score   float64
	Message string
}

// Answered reports whether the outcome carries a matched entry.
func (o Outcome) Answered() bool { return o.Kind == OutcomeAnswer && o.Match != nil }

// CorpusSource provides a read-only snapshot of the corpus for indexing.
type CorpusSource interface {
	Snapshot(ctx context.Context) ([]Entry, error)
}

// Recorder stores an audit trail of asked questions.
type Recorder interface {
	Record(ctx context.Context, query string, outcome Outcome) error
}

// FAQService defines the operations exposed by the application core.
type FAQService interface {
	Ask(ctx context.Context, query string) Outcome
	TopK(ctx context.Context, query string, k int) []Match
	Reload(ctx context.Context, entries []Entry) (int, error)
}
