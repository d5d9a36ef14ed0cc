package export

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
)

// parquetRow is the Parquet schema of one catalog row.
type parquetRow struct {
	District         string   `parquet:"district"`
	Neighborhood     string   `parquet:"neighborhood"`
	Name             string   `parquet:"name"`
	Address          string   `parquet:"address"`
	ConstructionYear *int64   `parquet:"construction_year"`
	Units            *int64   `parquet:"units"`
	Layout           string   `parquet:"layout"`
	FloorAreaSqm     *float64 `parquet:"floor_area_sqm"`
	Parking          *int64   `parquet:"parking"`
	PyeongPerUnit    *float64 `parquet:"pyeong_per_unit"`
	ParkingPerUnit   *float64 `parquet:"parking_per_unit"`
	Latitude         *float64 `parquet:"latitude"`
	Longitude        *float64 `parquet:"longitude"`
	NearestStation   string   `parquet:"nearest_station"`
	SubwayDistanceKM *float64 `parquet:"subway_distance_km"`
	UnitSizePyeong   *float64 `parquet:"unit_size_pyeong"`
	TransactionPrice string   `parquet:"transaction_price"`
	ReferenceDate    string   `parquet:"reference_date"`
	MatchScore       *float64 `parquet:"match_score"`
}

// Parquet writes rows as a single Parquet file to w.
func Parquet(w io.Writer, rows []apartment.Enriched) error {
	out := make([]parquetRow, len(rows))
	for i := range rows {
		out[i] = toParquetRow(&rows[i])
	}

	pw := parquet.NewGenericWriter[parquetRow](w)
	if _, err := pw.Write(out); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

func toParquetRow(r *apartment.Enriched) parquetRow {
	p := parquetRow{
		District:         r.District,
		Neighborhood:     r.Neighborhood,
		Name:             r.Name,
		Address:          r.Address,
		ConstructionYear: int64Ptr(r.ConstructionYear),
		Units:            int64Ptr(r.Units),
		Layout:           string(r.Layout),
		FloorAreaSqm:     r.FloorAreaSqm,
		Parking:          int64Ptr(r.Parking),
		PyeongPerUnit:    r.PyeongPerUnit(),
		ParkingPerUnit:   r.ParkingPerUnit(),
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		NearestStation:   r.NearestStation,
		SubwayDistanceKM: r.SubwayDistanceKM,
		UnitSizePyeong:   r.UnitSizePyeong(),
		TransactionPrice: r.TransactionPrice(),
		ReferenceDate:    r.ReferenceDate(),
	}
	if r.Deal != nil {
		score := r.Deal.Score
		p.MatchScore = &score
	}
	return p
}

func int64Ptr(v *int) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}
