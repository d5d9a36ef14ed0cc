package facet

import (
	"testing"

	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
	domfacet "github.com/kailas-cloud/aptdex/internal/domain/facet"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

type rowOpt func(*apartment.Enriched)

func year(v int) rowOpt { return func(r *apartment.Enriched) { r.ConstructionYear = intPtr(v) } }
func units(v int) rowOpt { return func(r *apartment.Enriched) { r.Units = intPtr(v) } }
func layout(v apartment.Layout) rowOpt {
	return func(r *apartment.Enriched) { r.Layout = v }
}
func subway(station string, km float64) rowOpt {
	return func(r *apartment.Enriched) {
		r.NearestStation = station
		r.SubwayDistanceKM = floatPtr(km)
	}
}

func row(district, neighborhood, name string, opts ...rowOpt) apartment.Enriched {
	r := apartment.Enriched{Metadata: apartment.Metadata{
		District:     district,
		Neighborhood: neighborhood,
		Name:         name,
	}}
	for _, o := range opts {
		o(&r)
	}
	return r
}

// testCatalog is a small catalog over three districts.
func testCatalog() []apartment.Enriched {
	return []apartment.Enriched{
		row("중구", "신당동", "남산타운", year(2002), units(5150), layout(apartment.LayoutStair), subway("신당", 0.45)),
		row("중구", "신당동", "청구e편한세상", year(2000), units(1000), layout(apartment.LayoutMixed), subway("신당", 0.62)),
		row("중구", "황학동", "롯데캐슬베네치아", year(2008), units(1852), layout(apartment.LayoutStair), subway("신당", 0.3)),
		row("강남구", "대치동", "은마", year(1979), units(4424), layout(apartment.LayoutCorridor), subway("대치", 0.5)),
		row("강남구", "역삼동", "역삼래미안", year(2005), units(1050), layout(apartment.LayoutStair), subway("역삼", 0.8)),
		row("강남구", "개포동", "개포주공", units(1980)),
		row("송파구", "잠실동", "엘스", year(2008), units(5678), layout(apartment.LayoutStair), subway("잠실새내", 0.4)),
		row("송파구", "잠실동", "리센츠", year(2008), units(5563), layout("타워형"), subway("잠실새내", 0.35)),
	}
}

func mustMatch(t *testing.T, v string) domfacet.Constraint {
	t.Helper()
	c, err := domfacet.NewMatch(v)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func mustRange(t *testing.T, lo, hi float64) domfacet.Constraint {
	t.Helper()
	c, err := domfacet.NewRange(lo, hi)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func set(t *testing.T, c *domfacet.Criteria, f domfacet.Facet, con domfacet.Constraint) {
	t.Helper()
	if err := c.Set(f, con); err != nil {
		t.Fatalf("Set(%s): %v", f, err)
	}
}

func names(rows []apartment.Enriched) []string {
	out := make([]string, len(rows))
	for i := range rows {
		out[i] = rows[i].Name
	}
	return out
}
