// Package stats summarizes catalog rows.
package stats

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
)

// Metric is a mean over the rows that have a value.
// A metric with no values is unavailable, which is distinct from a mean of 0.
type Metric struct {
	Mean  float64
	Count int
}

// Available reports whether at least one value contributed.
func (m Metric) Available() bool { return m.Count > 0 }

// MarshalJSON renders an unavailable metric as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Available() {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		Mean  float64 `json:"mean"`
		Count int     `json:"count"`
	}{m.Mean, m.Count})
}

type accumulator struct {
	sum float64
	n   int
}

func (a *accumulator) add(v *float64) {
	if v == nil {
		return
	}
	a.sum += *v
	a.n++
}

func (a *accumulator) addInt(v *int) {
	if v == nil {
		return
	}
	a.sum += float64(*v)
	a.n++
}

func (a *accumulator) metric() Metric {
	if a.n == 0 {
		return Metric{}
	}
	return Metric{Mean: a.sum / float64(a.n), Count: a.n}
}

// Stats summarizes a set of rows.
type Stats struct {
	Complexes        int    `json:"complexes"`
	ConstructionYear Metric `json:"construction_year"`
	Units            Metric `json:"units"`
	PyeongPerUnit    Metric `json:"pyeong_per_unit"`
	Parking          Metric `json:"parking"`
	ParkingPerUnit   Metric `json:"parking_per_unit"`
	SubwayDistanceKM Metric `json:"subway_distance_km"`
	// UnitSizePyeong averages the unit sizes of matched transactions.
	UnitSizePyeong Metric `json:"unit_size_pyeong"`
}

// Summarize computes the means of rows. Empty input yields every metric
// unavailable.
func Summarize(rows []apartment.Enriched) Stats {
	var year, units, pyeong, parking, perUnit, subway, size accumulator
	for i := range rows {
		r := &rows[i]
		year.addInt(r.ConstructionYear)
		units.addInt(r.Units)
		pyeong.add(r.PyeongPerUnit())
		parking.addInt(r.Parking)
		perUnit.add(r.ParkingPerUnit())
		subway.add(r.SubwayDistanceKM)
		size.add(r.UnitSizePyeong())
	}
	return Stats{
		Complexes:        len(rows),
		ConstructionYear: year.metric(),
		Units:            units.metric(),
		PyeongPerUnit:    pyeong.metric(),
		Parking:          parking.metric(),
		ParkingPerUnit:   perUnit.metric(),
		SubwayDistanceKM: subway.metric(),
		UnitSizePyeong:   size.metric(),
	}
}

// DistrictStats is the summary of one district.
type DistrictStats struct {
	District string `json:"district"`
	Stats
}

// GroupByDistrict summarizes rows per district, sorted by district name.
// Rows without a district are skipped. Pass the whole catalog: the result is
// meant as a baseline that does not follow the active filters.
func GroupByDistrict(rows []apartment.Enriched) []DistrictStats {
	groups := make(map[string][]apartment.Enriched)
	for i := range rows {
		d := strings.TrimSpace(rows[i].District)
		if d == "" {
			continue
		}
		groups[d] = append(groups[d], rows[i])
	}

	out := make([]DistrictStats, 0, len(groups))
	for d, g := range groups {
		out = append(out, DistrictStats{District: d, Stats: Summarize(g)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].District < out[j].District })
	return out
}
