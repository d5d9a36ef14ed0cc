package ingest

import (
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
	"github.com/kailas-cloud/aptdex/internal/domain/geo"
	"github.com/kailas-cloud/aptdex/internal/normalize"
)

// neighborhoodFixes rewrites neighborhood spellings that the join key
// normalization cannot reach.
var neighborhoodFixes = map[string]string{
	"답십리1동": "답십리동",
}

// Report counts what a mapping run kept and dropped.
type Report struct {
	Read                  int `json:"read"`
	Kept                  int `json:"kept"`
	DroppedRental         int `json:"dropped_rental"`
	DroppedOfficetel      int `json:"dropped_officetel"`
	DroppedClassification int `json:"dropped_classification"`
	// CoercionFailures counts fields left empty because the cell did not parse.
	CoercionFailures int `json:"coercion_failures"`
	// StationsAssigned counts rows whose nearest station was computed.
	StationsAssigned int `json:"stations_assigned"`
}

// Mapper converts raw rows into records.
type Mapper struct {
	stations geo.Stations
	log      *zap.Logger
}

// NewMapper creates a mapper. Rows with coordinates but no precomputed
// station get their nearest station from stations; a nil table skips that.
func NewMapper(stations geo.Stations, log *zap.Logger) *Mapper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mapper{stations: stations, log: log}
}

// Metadata maps and filters metadata rows. Rental complexes, officetels and,
// when the classification column is present, anything not classified as an
// apartment are dropped. Malformed cells leave their field empty.
func (m *Mapper) Metadata(rows []Row) ([]apartment.Metadata, Report) {
	rep := Report{Read: len(rows)}
	out := make([]apartment.Metadata, 0, len(rows))
	for i, r := range rows {
		name, _ := r.first(colName)
		switch {
		case strings.Contains(name, "임대"):
			rep.DroppedRental++
			continue
		case r.has(colClassification) && !classifiedApartment(r):
			rep.DroppedClassification++
			continue
		case strings.Contains(strings.ToLower(name), "오피스텔"):
			rep.DroppedOfficetel++
			continue
		}

		c := cellReader{row: r, line: i, log: m.log}
		rec := c.metadata(name)
		rep.CoercionFailures += c.failures
		if m.assignStation(&rec) {
			rep.StationsAssigned++
		}
		out = append(out, rec)
	}
	rep.Kept = len(out)
	return out, rep
}

func classifiedApartment(r Row) bool {
	v, _ := r.first(colClassification)
	return strings.Contains(v, "아파트")
}

func (m *Mapper) assignStation(rec *apartment.Metadata) bool {
	if rec.NearestStation != "" || !rec.HasLocation() || len(m.stations) == 0 {
		return false
	}
	if !geo.ValidateCoordinates(*rec.Latitude, *rec.Longitude) {
		return false
	}
	st, km, ok := m.stations.Nearest(*rec.Latitude, *rec.Longitude)
	if !ok {
		return false
	}
	rec.NearestStation = st.Name
	rec.SubwayDistanceKM = &km
	return true
}

// cellReader reads typed cells of one row, logging and counting failures.
type cellReader struct {
	row      Row
	line     int
	log      *zap.Logger
	failures int
}

func (c *cellReader) metadata(name string) apartment.Metadata {
	rec := apartment.Metadata{
		Name:             name,
		ConstructionYear: c.year(),
		Units:            c.intCell(colUnits),
		Layout:           c.layout(),
		FloorAreaSqm:     c.floatCell(colFloorArea),
		Parking:          c.intCell(colParking),
		UnitsUpTo60:      c.intCell(colUnitsUpTo60),
		Units60To85:      c.intCell(colUnits60To85),
		Units85To135:     c.intCell(colUnits85To135),
		Latitude:         c.floatCell(colLatitude),
		Longitude:        c.floatCell(colLongitude),
		SubwayDistanceKM: c.floatCell(colSubwayDistance),
	}
	rec.Address, _ = c.row.first(colAddress)
	rec.NearestStation, _ = c.row.first(colStation)

	rec.District, _ = c.row.first(colDistrict)
	if rec.District == "" {
		rec.District = normalize.DistrictFromAddress(rec.Address)
	}
	rec.Neighborhood, _ = c.row.first(colNeighborhood)
	if rec.Neighborhood == "" {
		rec.Neighborhood = normalize.NeighborhoodFromAddress(rec.Address)
	}
	if fixed, ok := neighborhoodFixes[rec.Neighborhood]; ok {
		rec.Neighborhood = fixed
	}

	for k, v := range c.row {
		if _, known := metadataColumns[k]; known || isBlank(strings.TrimSpace(v)) {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[k] = v
	}
	return rec
}

func (c *cellReader) year() *int {
	if v, col := c.row.first(colYear); v != "" {
		y, err := parseInt(v)
		return c.keepInt(col, y, err)
	}
	v, col := c.row.first(colApprovalDate)
	if v == "" {
		return nil
	}
	y, err := parseYear(v)
	return c.keepInt(col, y, err)
}

func (c *cellReader) intCell(aliases []string) *int {
	v, col := c.row.first(aliases)
	if v == "" {
		return nil
	}
	n, err := parseInt(v)
	return c.keepInt(col, n, err)
}

func (c *cellReader) floatCell(aliases []string) *float64 {
	v, col := c.row.first(aliases)
	if v == "" {
		return nil
	}
	f, err := parseFloat(v)
	if err != nil {
		c.fail(col, err)
		return nil
	}
	return &f
}

func (c *cellReader) keepInt(col string, v int, err error) *int {
	if err != nil {
		c.fail(col, err)
		return nil
	}
	return &v
}

func (c *cellReader) fail(col string, err error) {
	c.failures++
	c.log.Debug("field left empty", zap.Int("row", c.line), zap.String("column", col), zap.Error(err))
}

// layout classifies the raw corridor type by substring; unrecognised values
// are kept verbatim.
func (c *cellReader) layout() apartment.Layout {
	v, _ := c.row.first(colLayout)
	return ClassifyLayout(v)
}

// ClassifyLayout maps a raw corridor-type string onto a layout.
func ClassifyLayout(raw string) apartment.Layout {
	switch {
	case raw == "":
		return apartment.LayoutUnknown
	case strings.Contains(raw, "복도"):
		return apartment.LayoutCorridor
	case strings.Contains(raw, "계단"):
		return apartment.LayoutStair
	case strings.Contains(raw, "혼합"):
		return apartment.LayoutMixed
	default:
		return apartment.Layout(raw)
	}
}
