package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
	"github.com/kailas-cloud/aptdex/internal/repository/tabular"
	"github.com/kailas-cloud/aptdex/internal/usecase/stats"
)

// NotAvailable is written for a statistic with no contributing values.
const NotAvailable = "N/A"

// CatalogCSV writes rows as a BOM-prefixed CSV. Uninterpreted source columns
// follow the catalog columns in name order.
func CatalogCSV(w io.Writer, rows []apartment.Enriched) error {
	extras := extraKeys(rows)
	header := make([]string, 0, len(catalogColumns)+len(extras))
	for _, c := range catalogColumns {
		header = append(header, c.header)
	}
	header = append(header, extras...)

	cw, err := tabular.NewWriter(w, header)
	if err != nil {
		return err
	}
	rec := make([]string, len(header))
	for i := range rows {
		r := &rows[i]
		for j, c := range catalogColumns {
			rec[j] = cell(c.value(r))
		}
		for j, k := range extras {
			rec[len(catalogColumns)+j] = r.Extra[k]
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return cw.Close()
}

var districtHeader = []string{
	"자치구", "아파트 수", "평균 건축연도", "평균 세대수", "평균 평형 (세대당)",
	"평균 주차대수", "평균 세대당 주차면수", "평균 지하철 거리",
}

// DistrictCSV writes per-district statistics as a BOM-prefixed CSV.
// Unavailable means are written as N/A.
func DistrictCSV(w io.Writer, districts []stats.DistrictStats) error {
	cw, err := tabular.NewWriter(w, districtHeader)
	if err != nil {
		return err
	}
	for _, d := range districts {
		rec := []string{
			d.District,
			strconv.Itoa(d.Complexes),
			metric(d.ConstructionYear, func(v float64) string { return fmt.Sprintf("%d년", int(v)) }),
			metric(d.Units, func(v float64) string { return fmt.Sprintf("%d세대", int(v)) }),
			metric(d.PyeongPerUnit, func(v float64) string { return fmt.Sprintf("%.1f평", v) }),
			metric(d.Parking, func(v float64) string { return fmt.Sprintf("%d대", int(v)) }),
			metric(d.ParkingPerUnit, func(v float64) string { return fmt.Sprintf("%.2f면", v) }),
			metric(d.SubwayDistanceKM, func(v float64) string { return fmt.Sprintf("%.2fkm", v) }),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return cw.Close()
}

func metric(m stats.Metric, format func(float64) string) string {
	if !m.Available() {
		return NotAvailable
	}
	return format(m.Mean)
}
