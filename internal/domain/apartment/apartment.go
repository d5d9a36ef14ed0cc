// Package apartment holds the record types of the apartment catalog.
package apartment

import (
	"math"
	"strings"
)

// SqmPerPyeong is the number of square meters in one pyeong.
const SqmPerPyeong = 3.3058

// Layout is the circulation layout of a complex.
// Values outside the known constants are raw source strings kept verbatim.
type Layout string

const (
	// LayoutUnknown marks a complex without layout information.
	LayoutUnknown Layout = ""
	// LayoutCorridor is a corridor-access complex.
	LayoutCorridor Layout = "복도식"
	// LayoutStair is a staircase-access complex.
	LayoutStair Layout = "계단식"
	// LayoutMixed is a complex mixing corridor and staircase access.
	LayoutMixed Layout = "혼합식"
)

// LayoutUnknownLabel is the facet value of a complex without layout information.
const LayoutUnknownLabel = "unknown"

// Label returns the layout as offered and matched by the layout facet.
// LayoutUnknown is labelled LayoutUnknownLabel.
func (l Layout) Label() string {
	if v := strings.TrimSpace(string(l)); v != "" {
		return v
	}
	return LayoutUnknownLabel
}

// IsKnown reports whether l is one of the classified layouts.
func (l Layout) IsKnown() bool {
	switch l {
	case LayoutCorridor, LayoutStair, LayoutMixed:
		return true
	default:
		return false
	}
}

// Metadata is one complex from the structural metadata dataset.
// Optional numeric fields are nil when the source value was missing or malformed.
type Metadata struct {
	District     string `json:"district"`
	Neighborhood string `json:"neighborhood"`
	Name         string `json:"name"`
	Address      string `json:"address,omitempty"`

	ConstructionYear *int     `json:"construction_year,omitempty"`
	Units            *int     `json:"units,omitempty"`
	Layout           Layout   `json:"layout,omitempty"`
	FloorAreaSqm     *float64 `json:"floor_area_sqm,omitempty"`
	Parking          *int     `json:"parking,omitempty"`

	// Unit counts by exclusive area band.
	UnitsUpTo60  *int `json:"units_up_to_60,omitempty"`
	Units60To85  *int `json:"units_60_to_85,omitempty"`
	Units85To135 *int `json:"units_85_to_135,omitempty"`

	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	NearestStation   string   `json:"nearest_station,omitempty"`
	SubwayDistanceKM *float64 `json:"subway_distance_km,omitempty"`

	// Extra holds source columns the catalog does not interpret.
	Extra map[string]string `json:"extra,omitempty"`
}

// HasLocation reports whether both coordinates are present.
func (m *Metadata) HasLocation() bool {
	return m.Latitude != nil && m.Longitude != nil
}

// AreaPerUnitSqm returns the average exclusive area per unit in m², rounded to 0.01.
func (m *Metadata) AreaPerUnitSqm() *float64 {
	if m.FloorAreaSqm == nil || m.Units == nil || *m.Units <= 0 {
		return nil
	}
	v := round(*m.FloorAreaSqm/float64(*m.Units), 2)
	return &v
}

// PyeongPerUnit returns the average exclusive area per unit in pyeong, rounded to 0.1.
func (m *Metadata) PyeongPerUnit() *float64 {
	sqm := m.AreaPerUnitSqm()
	if sqm == nil {
		return nil
	}
	v := ToPyeong(*sqm)
	return &v
}

// ParkingPerUnit returns parking spaces per unit, rounded to 0.01.
func (m *Metadata) ParkingPerUnit() *float64 {
	if m.Parking == nil || m.Units == nil || *m.Units <= 0 {
		return nil
	}
	v := round(float64(*m.Parking)/float64(*m.Units), 2)
	return &v
}

// Transaction is one row of the transaction-price dataset.
type Transaction struct {
	District      string   `json:"district"`
	Neighborhood  string   `json:"neighborhood"`
	Name          string   `json:"name"`
	SizePyeong    *float64 `json:"size_pyeong,omitempty"`
	Price         string   `json:"price,omitempty"`
	ReferenceDate string   `json:"reference_date,omitempty"`
}

// Deal holds the transaction fields attached to a matched complex.
type Deal struct {
	SizePyeong    *float64
	Price         string
	ReferenceDate string
	// Score is the name similarity that accepted the match.
	Score float64
}

// Enriched is a metadata record with the fields of its matched transaction.
// Deal is nil when no transaction matched above threshold.
type Enriched struct {
	Metadata
	Deal *Deal
}

// UnitSizePyeong returns the matched unit size, or nil when unmatched.
func (e *Enriched) UnitSizePyeong() *float64 {
	if e.Deal == nil {
		return nil
	}
	return e.Deal.SizePyeong
}

// TransactionPrice returns the matched price, or "" when unmatched.
func (e *Enriched) TransactionPrice() string {
	if e.Deal == nil {
		return ""
	}
	return e.Deal.Price
}

// ReferenceDate returns the matched reference date, or "" when unmatched.
func (e *Enriched) ReferenceDate() string {
	if e.Deal == nil {
		return ""
	}
	return e.Deal.ReferenceDate
}

// ToPyeong converts square meters to pyeong rounded to 0.1.
func ToPyeong(sqm float64) float64 {
	return round(sqm/SqmPerPyeong, 1)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
