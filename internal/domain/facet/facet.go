// Package facet defines the filterable dimensions of the catalog and the
// criteria a caller narrows it with.
package facet

import (
	"fmt"

	"github.com/kailas-cloud/aptdex/internal/domain"
)

// Facet is one filterable dimension. Facets are ordered by precedence:
// a lower value takes precedence over every higher one.
type Facet int

// Facets in precedence order.
const (
	District Facet = iota
	Neighborhood
	ConstructionYear
	UnitCount
	Layout
	SubwayDistance
	Station

	numFacets
)

// Kind is the constraint shape a facet accepts.
type Kind int

const (
	// KindMatch facets take an exact string value.
	KindMatch Kind = iota
	// KindRange facets take a closed numeric range.
	KindRange
)

var names = [numFacets]string{
	District:         "district",
	Neighborhood:     "neighborhood",
	ConstructionYear: "year",
	UnitCount:        "units",
	Layout:           "layout",
	SubwayDistance:   "distance",
	Station:          "station",
}

// All returns every facet in precedence order.
func All() []Facet {
	out := make([]Facet, numFacets)
	for i := range out {
		out[i] = Facet(i)
	}
	return out
}

// Parse resolves a facet by its wire name.
func Parse(name string) (Facet, error) {
	for i, n := range names {
		if n == name {
			return Facet(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown facet %q", domain.ErrInvalidFilter, name)
}

// String returns the wire name of f.
func (f Facet) String() string {
	if !f.valid() {
		return fmt.Sprintf("facet(%d)", int(f))
	}
	return names[f]
}

// Kind returns the constraint shape f accepts.
func (f Facet) Kind() Kind {
	switch f {
	case ConstructionYear, UnitCount, SubwayDistance:
		return KindRange
	default:
		return KindMatch
	}
}

// Precedes reports whether f takes precedence over other.
func (f Facet) Precedes(other Facet) bool { return f < other }

// DefaultRange is the range reported for a numeric facet when no row is left
// to observe one. ok is false for match facets.
func (f Facet) DefaultRange() (r Range, ok bool) {
	switch f {
	case ConstructionYear:
		return Range{Min: 1900, Max: 2025}, true
	case UnitCount:
		return Range{Min: 0, Max: 10000}, true
	case SubwayDistance:
		return Range{Min: 0, Max: 10}, true
	default:
		return Range{}, false
	}
}

func (f Facet) valid() bool { return f >= 0 && f < numFacets }
