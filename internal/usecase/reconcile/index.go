package reconcile

import (
	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
	"github.com/kailas-cloud/aptdex/internal/normalize"
)

// Candidate is a deduplicated metadata row that transactions can match.
type Candidate struct {
	// Pos is the row's position in the metadata slice the index was built from.
	Pos    int
	Record *apartment.Metadata
	// Name is the normalized complex name used for scoring.
	Name string
}

type joinKey struct {
	district     string
	neighborhood string
}

type dedupKey struct {
	district     string
	neighborhood string
	name         string
}

// Index groups metadata rows by (district, normalized neighborhood).
// Rows repeating an earlier (district, neighborhood, name) triple are skipped.
type Index struct {
	groups map[joinKey][]Candidate
	size   int
}

// NewIndex builds the index over meta. meta must outlive the index.
func NewIndex(meta []apartment.Metadata) *Index {
	seen := make(map[dedupKey]struct{}, len(meta))
	ix := &Index{groups: make(map[joinKey][]Candidate)}
	for i := range meta {
		m := &meta[i]
		dk := dedupKey{m.District, m.Neighborhood, m.Name}
		if _, dup := seen[dk]; dup {
			continue
		}
		seen[dk] = struct{}{}

		k := joinKey{m.District, normalize.Neighborhood(m.Neighborhood)}
		ix.groups[k] = append(ix.groups[k], Candidate{
			Pos:    i,
			Record: m,
			Name:   normalize.ComplexName(m.Name),
		})
		ix.size++
	}
	return ix
}

// CandidatesFor returns the rows under the join key in first-seen order, or nil.
func (ix *Index) CandidatesFor(district, normalizedNeighborhood string) []Candidate {
	return ix.groups[joinKey{district, normalizedNeighborhood}]
}

// Len returns the number of indexed rows after deduplication.
func (ix *Index) Len() int { return ix.size }

// Groups returns the number of distinct join keys.
func (ix *Index) Groups() int { return len(ix.groups) }
