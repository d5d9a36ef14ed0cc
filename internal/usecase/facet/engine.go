// Package facet narrows the catalog by a chain of dependent criteria and
// reports what each facet can still be narrowed to.
package facet

import (
	"math"
	"sort"

	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
	domfacet "github.com/kailas-cloud/aptdex/internal/domain/facet"
	"github.com/kailas-cloud/aptdex/internal/normalize"
)

// Result is the filtered rows with the bounds of every facet.
type Result struct {
	Rows   []apartment.Enriched
	Bounds []domfacet.Bounds
}

// Bound returns the bounds of f.
func (r Result) Bound(f domfacet.Facet) domfacet.Bounds {
	for _, b := range r.Bounds {
		if b.Facet == f {
			return b
		}
	}
	return domfacet.Bounds{Facet: f, Name: f.String()}
}

// Engine evaluates criteria over catalog rows. It holds no state.
type Engine struct{}

// New creates a facet engine.
func New() *Engine { return &Engine{} }

// Evaluate filters rows by c and computes the bounds of every facet.
func (e *Engine) Evaluate(rows []apartment.Enriched, c domfacet.Criteria) Result {
	return Result{Rows: e.Filter(rows, c), Bounds: e.Bounds(rows, c)}
}

// Filter returns the rows satisfying every applied constraint, in order.
// A row missing a constrained value never passes.
func (e *Engine) Filter(rows []apartment.Enriched, c domfacet.Criteria) []apartment.Enriched {
	out := make([]apartment.Enriched, 0, len(rows))
	for i := range rows {
		if matches(&rows[i], c) {
			out = append(out, rows[i])
		}
	}
	return out
}

// Bounds computes the bounds of every facet in precedence order.
//
// Each facet is scoped by the constraints of the facets that precede it and
// by nothing else, so its own selection and later selections never narrow it.
// The district facet is therefore computed over all rows, and the currently
// selected district is always among its options.
func (e *Engine) Bounds(rows []apartment.Enriched, c domfacet.Criteria) []domfacet.Bounds {
	all := domfacet.All()
	out := make([]domfacet.Bounds, 0, len(all))
	for _, f := range all {
		scope := c.Above(f)
		b := domfacet.Bounds{
			Facet:   f,
			Name:    f.String(),
			Applied: c.IsApplied(f),
			Current: c.Get(f).String(),
		}
		if f.Kind() == domfacet.KindRange {
			r, fallback := numericRange(rows, f, scope)
			b.Range, b.Fallback = &r, fallback
			if f == domfacet.UnitCount {
				v := domfacet.SuggestUnitMin(r)
				b.SuggestedMin = &v
			}
		} else {
			b.Options = options(rows, f, scope)
			if f == domfacet.District && b.Applied {
				b.Options = ensureOption(b.Options, c.Get(f).Match())
			}
		}
		out = append(out, b)
	}
	return out
}

// numericRange returns the observed min and max of f over rows in scope, or
// the facet's default range when no row in scope has a value.
func numericRange(rows []apartment.Enriched, f domfacet.Facet, scope domfacet.Criteria) (domfacet.Range, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range rows {
		row := &rows[i]
		if !matches(row, scope) {
			continue
		}
		v := numberValue(row, f)
		if v == nil {
			continue
		}
		lo = math.Min(lo, *v)
		hi = math.Max(hi, *v)
	}
	if lo > hi {
		r, _ := f.DefaultRange()
		return r, true
	}
	return domfacet.Range{Min: lo, Max: hi}, false
}

// options returns the distinct non-empty values of f over rows in scope,
// sorted. Values equal under normalization are reported once.
func options(rows []apartment.Enriched, f domfacet.Facet, scope domfacet.Criteria) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := range rows {
		row := &rows[i]
		if !matches(row, scope) {
			continue
		}
		v := stringValue(row, f)
		if v == "" {
			continue
		}
		k := normalize.Key(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func ensureOption(opts []string, v string) []string {
	for _, o := range opts {
		if normalize.Equal(o, v) {
			return opts
		}
	}
	opts = append(opts, v)
	sort.Strings(opts)
	return opts
}
