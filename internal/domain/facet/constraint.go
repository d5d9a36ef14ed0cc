package facet

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/normalize"
)

// AllValue is the wire value meaning "no constraint".
const AllValue = "all"

type constraintKind int

const (
	kindAll constraintKind = iota
	kindMatch
	kindRange
)

// Constraint restricts one facet. The zero value places no restriction.
type Constraint struct {
	kind  constraintKind
	match string
	rng   Range
}

// Range is a closed numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies in r, both ends inclusive.
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Any returns the constraint that accepts every row.
func Any() Constraint { return Constraint{} }

// NewMatch creates an exact-match constraint. "all" yields Any.
func NewMatch(value string) (Constraint, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return Constraint{}, fmt.Errorf("%w: match value is required", domain.ErrInvalidFilter)
	}
	if strings.EqualFold(v, AllValue) {
		return Any(), nil
	}
	return Constraint{kind: kindMatch, match: v}, nil
}

// NewRange creates a closed range constraint. min must not exceed max.
func NewRange(lo, hi float64) (Constraint, error) {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return Constraint{}, fmt.Errorf("%w: range bounds must be finite", domain.ErrInvalidFilter)
	}
	if lo > hi {
		return Constraint{}, fmt.Errorf("%w: range min %g exceeds max %g", domain.ErrInvalidFilter, lo, hi)
	}
	return Constraint{kind: kindRange, rng: Range{Min: lo, Max: hi}}, nil
}

// IsAll reports whether c places no restriction.
func (c Constraint) IsAll() bool { return c.kind == kindAll }

// IsMatch reports whether c is an exact-match constraint.
func (c Constraint) IsMatch() bool { return c.kind == kindMatch }

// IsRange reports whether c is a range constraint.
func (c Constraint) IsRange() bool { return c.kind == kindRange }

// Match returns the exact-match value.
func (c Constraint) Match() string { return c.match }

// Range returns the range of a range constraint.
func (c Constraint) Range() Range { return c.rng }

// AcceptsString reports whether v satisfies c. An empty v never satisfies
// a non-all constraint.
func (c Constraint) AcceptsString(v string) bool {
	switch c.kind {
	case kindAll:
		return true
	case kindMatch:
		return v != "" && normalize.Equal(v, c.match)
	default:
		return false
	}
}

// AcceptsNumber reports whether v satisfies c. A nil v never satisfies a
// non-all constraint.
func (c Constraint) AcceptsNumber(v *float64) bool {
	switch c.kind {
	case kindAll:
		return true
	case kindRange:
		return v != nil && c.rng.Contains(*v)
	default:
		return false
	}
}

// String renders c for logs and query strings.
func (c Constraint) String() string {
	switch c.kind {
	case kindMatch:
		return c.match
	case kindRange:
		return fmt.Sprintf("%g..%g", c.rng.Min, c.rng.Max)
	default:
		return AllValue
	}
}
