package reconcile

import (
	"fmt"

	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
	"github.com/kailas-cloud/aptdex/internal/normalize"
	"github.com/kailas-cloud/aptdex/internal/similarity"
)

// DefaultThreshold is the minimum similarity at which a match is accepted.
const DefaultThreshold = 0.85

// Outcome classifies the result of matching one transaction.
type Outcome int

const (
	// NoCandidates means no metadata row shares the transaction's join key.
	NoCandidates Outcome = iota
	// BelowThreshold means the best candidate scored under the threshold.
	BelowThreshold
	// Matched means the best candidate was accepted.
	Matched
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case BelowThreshold:
		return "below_threshold"
	default:
		return "no_candidates"
	}
}

// Match is the best candidate found for a transaction.
// Best is nil only when Outcome is NoCandidates.
type Match struct {
	Best    *Candidate
	Score   float64
	Outcome Outcome
}

// Accepted reports whether the match was accepted.
func (m Match) Accepted() bool { return m.Outcome == Matched }

// Matcher scores transactions against the candidates of their join key.
type Matcher struct {
	index     *Index
	threshold float64
}

// ValidateThreshold checks that t is in (0, 1].
func ValidateThreshold(t float64) error {
	if !(t > 0 && t <= 1) {
		return fmt.Errorf("similarity threshold must be in (0, 1], got %v", t)
	}
	return nil
}

// NewMatcher creates a matcher over ix accepting scores >= threshold.
func NewMatcher(ix *Index, threshold float64) (*Matcher, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	return &Matcher{index: ix, threshold: threshold}, nil
}

// Match finds the highest-scoring candidate for tx. Ties keep the candidate
// seen first.
func (m *Matcher) Match(tx *apartment.Transaction) Match {
	cands := m.index.CandidatesFor(tx.District, normalize.Neighborhood(tx.Neighborhood))
	if len(cands) == 0 {
		return Match{Outcome: NoCandidates}
	}

	name := normalize.ComplexName(tx.Name)
	best := Match{Best: &cands[0], Score: similarity.Ratio(name, cands[0].Name)}
	for i := 1; i < len(cands); i++ {
		if s := similarity.Ratio(name, cands[i].Name); s > best.Score {
			best.Best, best.Score = &cands[i], s
		}
	}

	best.Outcome = BelowThreshold
	if best.Score >= m.threshold {
		best.Outcome = Matched
	}
	return best
}
