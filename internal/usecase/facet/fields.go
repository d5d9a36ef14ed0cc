package facet

import (
	"strings"

	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
	domfacet "github.com/kailas-cloud/aptdex/internal/domain/facet"
)

// stringValue returns the value of a match facet on row.
func stringValue(row *apartment.Enriched, f domfacet.Facet) string {
	switch f {
	case domfacet.District:
		return strings.TrimSpace(row.District)
	case domfacet.Neighborhood:
		return strings.TrimSpace(row.Neighborhood)
	case domfacet.Layout:
		return row.Layout.Label()
	case domfacet.Station:
		return strings.TrimSpace(row.NearestStation)
	default:
		return ""
	}
}

// numberValue returns the value of a range facet on row, or nil when missing.
func numberValue(row *apartment.Enriched, f domfacet.Facet) *float64 {
	switch f {
	case domfacet.ConstructionYear:
		return intAsFloat(row.ConstructionYear)
	case domfacet.UnitCount:
		return intAsFloat(row.Units)
	case domfacet.SubwayDistance:
		return row.SubwayDistanceKM
	default:
		return nil
	}
}

func intAsFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

// accepts reports whether row satisfies con on facet f.
func accepts(row *apartment.Enriched, f domfacet.Facet, con domfacet.Constraint) bool {
	if con.IsAll() {
		return true
	}
	if f.Kind() == domfacet.KindRange {
		return con.AcceptsNumber(numberValue(row, f))
	}
	return con.AcceptsString(stringValue(row, f))
}

// matches reports whether row satisfies every constraint in c.
func matches(row *apartment.Enriched, c domfacet.Criteria) bool {
	for _, f := range c.Applied() {
		if !accepts(row, f, c.Get(f)) {
			return false
		}
	}
	return true
}
