package index

import "faqbot/internal/domain"

// DefaultThreshold is the minimum score needed to answer instead of deferring.
const DefaultThreshold = 0.25

// Gate is a stateless confidence cutoff.
type Gate struct {
	Threshold float64
}

// Passes reports whether score clears the threshold. The boundary is inclusive.
func (g Gate) Passes(score float64) bool { return score >= g.Threshold }

// Decide turns a ranking into an answer or a deferral based on its best match.
// An empty ranking always defers.
func (g Gate) Decide(ranked []domain.Match) domain.Outcome {
	if len(ranked) == 0 {
		return domain.Outcome{Kind: domain.OutcomeDefer}
	}
	best := ranked[0]
	if !g.Passes(best.Score) {
		return domain.Outcome{Kind: domain.OutcomeDefer, Score: best.Score}
	}
	return domain.Outcome{Kind: domain.OutcomeAnswer, Match: &best, Score: best.Score}
}
