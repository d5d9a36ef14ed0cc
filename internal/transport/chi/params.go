package chi

import (
	"fmt"
	"math"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/aptdex/internal/domain"
	domfacet "github.com/kailas-cloud/aptdex/internal/domain/facet"
)

const (
	defaultRowLimit = 100
	maxRowLimit     = 1000
)

// CatalogParams are the query parameters of the catalog, facet and export endpoints.
type CatalogParams struct {
	District     *string
	Neighborhood *string
	YearMin      *float64
	YearMax      *float64
	UnitsMin     *float64
	UnitsMax     *float64
	Layout       *string
	DistanceMin  *float64
	DistanceMax  *float64
	Station      *string
	// Reset names a facet to clear together with every facet after it.
	Reset *string
	Limit *int
}

// bindCatalogParams reads CatalogParams from the query string.
func bindCatalogParams(r *http.Request) (CatalogParams, error) {
	var p CatalogParams
	q := r.URL.Query()

	bindings := []struct {
		name string
		dest any
	}{
		{"district", &p.District},
		{"neighborhood", &p.Neighborhood},
		{"year_min", &p.YearMin},
		{"year_max", &p.YearMax},
		{"units_min", &p.UnitsMin},
		{"units_max", &p.UnitsMax},
		{"layout", &p.Layout},
		{"distance_min", &p.DistanceMin},
		{"distance_max", &p.DistanceMax},
		{"station", &p.Station},
		{"reset", &p.Reset},
		{"limit", &p.Limit},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return CatalogParams{}, fmt.Errorf("%w: parameter %s: %v", domain.ErrInvalidFilter, b.name, err)
		}
	}
	return p, nil
}

// Criteria converts the parameters into facet criteria. Constraints are
// applied in precedence order, then Reset clears its facet and those after it.
func (p CatalogParams) Criteria() (domfacet.Criteria, error) {
	var c domfacet.Criteria

	matches := []struct {
		facet domfacet.Facet
		value *string
	}{
		{domfacet.District, p.District},
		{domfacet.Neighborhood, p.Neighborhood},
		{domfacet.Layout, p.Layout},
		{domfacet.Station, p.Station},
	}
	for _, m := range matches {
		if m.value == nil {
			continue
		}
		con, err := domfacet.NewMatch(*m.value)
		if err != nil {
			return domfacet.Criteria{}, fmt.Errorf("%s: %w", m.facet, err)
		}
		if err := c.Set(m.facet, con); err != nil {
			return domfacet.Criteria{}, err
		}
	}

	ranges := []struct {
		facet  domfacet.Facet
		lo, hi *float64
	}{
		{domfacet.ConstructionYear, p.YearMin, p.YearMax},
		{domfacet.UnitCount, p.UnitsMin, p.UnitsMax},
		{domfacet.SubwayDistance, p.DistanceMin, p.DistanceMax},
	}
	for _, r := range ranges {
		if r.lo == nil && r.hi == nil {
			continue
		}
		lo, hi := -math.MaxFloat64, math.MaxFloat64
		if r.lo != nil {
			lo = *r.lo
		}
		if r.hi != nil {
			hi = *r.hi
		}
		con, err := domfacet.NewRange(lo, hi)
		if err != nil {
			return domfacet.Criteria{}, fmt.Errorf("%s: %w", r.facet, err)
		}
		if err := c.Set(r.facet, con); err != nil {
			return domfacet.Criteria{}, err
		}
	}

	if p.Reset != nil && *p.Reset != "" {
		f, err := domfacet.Parse(*p.Reset)
		if err != nil {
			return domfacet.Criteria{}, err
		}
		c.Reset(f)
	}
	return c, nil
}

// RowLimit returns the number of rows to return.
func (p CatalogParams) RowLimit() (int, error) {
	if p.Limit == nil {
		return defaultRowLimit, nil
	}
	if *p.Limit <= 0 || *p.Limit > maxRowLimit {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidFilter, maxRowLimit)
	}
	return *p.Limit, nil
}
