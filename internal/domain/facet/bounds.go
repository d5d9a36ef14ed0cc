package facet

// Bounds is what a facet can still be narrowed to given the other constraints.
type Bounds struct {
	Facet   Facet  `json:"-"`
	Name    string `json:"facet"`
	Applied bool   `json:"applied"`
	// Current is the applied constraint rendered for display.
	Current string `json:"current"`

	// Range is set for numeric facets.
	Range *Range `json:"range,omitempty"`
	// Fallback is true when no row was left and Range is the default range.
	Fallback bool `json:"fallback,omitempty"`
	// SuggestedMin is an initial lower bound offered for the unit-count facet.
	SuggestedMin *float64 `json:"suggested_min,omitempty"`

	// Options is set for match facets, sorted ascending.
	Options []string `json:"options,omitempty"`
}

// SuggestedUnitFloor is the preferred initial lower bound for unit counts.
const SuggestedUnitFloor = 300

// SuggestUnitMin clamps SuggestedUnitFloor into r.
func SuggestUnitMin(r Range) float64 {
	lo := float64(SuggestedUnitFloor)
	if r.Min > lo {
		lo = r.Min
	}
	if lo > r.Max {
		lo = r.Max
	}
	return lo
}
