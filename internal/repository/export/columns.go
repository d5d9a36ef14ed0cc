// Package export writes the enriched catalog and district statistics to
// CSV, SQLite and Parquet files.
package export

import (
	"sort"
	"strconv"

	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
)

// column is one exported catalog field. value returns nil for a missing value.
type column struct {
	header  string
	sqlName string
	sqlType string
	value   func(r *apartment.Enriched) any
}

// catalogColumns uses the export header names the ingest mapper reads, so an
// exported catalog can be loaded back as a metadata file.
var catalogColumns = []column{
	{"자치구", "district", "TEXT", func(r *apartment.Enriched) any { return r.District }},
	{"동", "neighborhood", "TEXT", func(r *apartment.Enriched) any { return r.Neighborhood }},
	{"아파트명", "name", "TEXT", func(r *apartment.Enriched) any { return r.Name }},
	{"주소", "address", "TEXT", func(r *apartment.Enriched) any { return str(r.Address) }},
	{"건축연도", "construction_year", "INTEGER", func(r *apartment.Enriched) any { return intOrNil(r.ConstructionYear) }},
	{"세대수", "units", "INTEGER", func(r *apartment.Enriched) any { return intOrNil(r.Units) }},
	{"복도계단식", "layout", "TEXT", func(r *apartment.Enriched) any { return str(string(r.Layout)) }},
	{"전용면적_제곱미터", "floor_area_sqm", "REAL", func(r *apartment.Enriched) any { return floatOrNil(r.FloorAreaSqm) }},
	{"주차대수", "parking", "INTEGER", func(r *apartment.Enriched) any { return intOrNil(r.Parking) }},
	{"전용면적60㎡이하_세대수", "units_up_to_60", "INTEGER", func(r *apartment.Enriched) any { return intOrNil(r.UnitsUpTo60) }},
	{"전용면적60_85㎡_세대수", "units_60_to_85", "INTEGER", func(r *apartment.Enriched) any { return intOrNil(r.Units60To85) }},
	{"전용면적85_135㎡_세대수", "units_85_to_135", "INTEGER", func(r *apartment.Enriched) any { return intOrNil(r.Units85To135) }},
	{"세대당평균전용면적_제곱미터", "area_per_unit_sqm", "REAL", func(r *apartment.Enriched) any { return floatOrNil(r.AreaPerUnitSqm()) }},
	{"세대당평균평형", "pyeong_per_unit", "REAL", func(r *apartment.Enriched) any { return floatOrNil(r.PyeongPerUnit()) }},
	{"세대당주차면수", "parking_per_unit", "REAL", func(r *apartment.Enriched) any { return floatOrNil(r.ParkingPerUnit()) }},
	{"위도", "latitude", "REAL", func(r *apartment.Enriched) any { return floatOrNil(r.Latitude) }},
	{"경도", "longitude", "REAL", func(r *apartment.Enriched) any { return floatOrNil(r.Longitude) }},
	{"가장가까운지하철역", "nearest_station", "TEXT", func(r *apartment.Enriched) any { return str(r.NearestStation) }},
	{"지하철역거리_km", "subway_distance_km", "REAL", func(r *apartment.Enriched) any { return floatOrNil(r.SubwayDistanceKM) }},
	{"평수", "unit_size_pyeong", "REAL", func(r *apartment.Enriched) any { return floatOrNil(r.UnitSizePyeong()) }},
	{"실거래가", "transaction_price", "TEXT", func(r *apartment.Enriched) any { return str(r.TransactionPrice()) }},
	{"기준연월일", "reference_date", "TEXT", func(r *apartment.Enriched) any { return str(r.ReferenceDate()) }},
}

// extraKeys returns the sorted union of uninterpreted source columns.
func extraKeys(rows []apartment.Enriched) []string {
	seen := map[string]struct{}{}
	for i := range rows {
		for k := range rows[i].Extra {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func str(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// cell renders a column value for CSV; missing values are empty.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}
