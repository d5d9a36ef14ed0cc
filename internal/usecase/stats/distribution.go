package stats

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
)

// PyeongBucketWidth is the width of the per-unit area histogram buckets.
const PyeongBucketWidth = 5

// Bucket is one bar of a distribution.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Distribution holds the complex counts used for the catalog charts.
type Distribution struct {
	ByDistrict []Bucket `json:"by_district"`
	ByYear     []Bucket `json:"by_year"`
	ByLayout   []Bucket `json:"by_layout"`
	ByPyeong   []Bucket `json:"by_pyeong"`
}

// Distributions counts complexes per district, construction year, layout and
// per-unit area bucket. Rows missing a value are left out of that chart.
// District and layout bars are ordered by count descending, year and area
// bars by their value.
func Distributions(rows []apartment.Enriched) Distribution {
	district := map[string]int{}
	layout := map[string]int{}
	year := map[int]int{}
	pyeong := map[int]int{}

	for i := range rows {
		r := &rows[i]
		if d := strings.TrimSpace(r.District); d != "" {
			district[d]++
		}
		if l := strings.TrimSpace(string(r.Layout)); l != "" {
			layout[l]++
		}
		if r.ConstructionYear != nil {
			year[*r.ConstructionYear]++
		}
		if p := r.PyeongPerUnit(); p != nil && *p >= 0 {
			pyeong[int(math.Floor(*p/PyeongBucketWidth))]++
		}
	}

	return Distribution{
		ByDistrict: byCount(district),
		ByYear:     byKey(year, strconv.Itoa),
		ByLayout:   byCount(layout),
		ByPyeong:   byKey(pyeong, pyeongLabel),
	}
}

func pyeongLabel(bucket int) string {
	lo := bucket * PyeongBucketWidth
	return fmt.Sprintf("%d-%d평", lo, lo+PyeongBucketWidth)
}

func byCount(counts map[string]int) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for k, n := range counts {
		out = append(out, Bucket{Label: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func byKey(counts map[int]int, label func(int) string) []Bucket {
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, Bucket{Label: label(k), Count: counts[k]})
	}
	return out
}
