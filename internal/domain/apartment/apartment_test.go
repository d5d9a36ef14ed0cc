package apartment

import "testing"

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestLayout_IsKnown(t *testing.T) {
	tests := []struct {
		layout Layout
		want   bool
	}{
		{LayoutCorridor, true},
		{LayoutStair, true},
		{LayoutMixed, true},
		{LayoutUnknown, false},
		{Layout("타워형"), false},
	}
	for _, tt := range tests {
		if got := tt.layout.IsKnown(); got != tt.want {
			t.Errorf("Layout(%q).IsKnown() = %v, want %v", tt.layout, got, tt.want)
		}
	}
}

func TestLayout_Label(t *testing.T) {
	tests := []struct {
		layout Layout
		want   string
	}{
		{LayoutStair, "계단식"},
		{"타워형", "타워형"},
		{LayoutUnknown, LayoutUnknownLabel},
		{"  ", LayoutUnknownLabel},
	}
	for _, tt := range tests {
		if got := tt.layout.Label(); got != tt.want {
			t.Errorf("Layout(%q).Label() = %q, want %q", tt.layout, got, tt.want)
		}
	}
}

func TestMetadata_DerivedPerUnit(t *testing.T) {
	m := Metadata{
		Units:        intPtr(400),
		FloorAreaSqm: floatPtr(33100),
		Parking:      intPtr(520),
	}

	area := m.AreaPerUnitSqm()
	if area == nil || *area != 82.75 {
		t.Fatalf("AreaPerUnitSqm() = %v, want 82.75", area)
	}
	py := m.PyeongPerUnit()
	if py == nil || *py != 25.0 {
		t.Fatalf("PyeongPerUnit() = %v, want 25.0", py)
	}
	pk := m.ParkingPerUnit()
	if pk == nil || *pk != 1.3 {
		t.Fatalf("ParkingPerUnit() = %v, want 1.3", pk)
	}
}

func TestMetadata_DerivedPerUnit_Unavailable(t *testing.T) {
	tests := []struct {
		name string
		m    Metadata
	}{
		{"no units", Metadata{FloorAreaSqm: floatPtr(100), Parking: intPtr(10)}},
		{"zero units", Metadata{Units: intPtr(0), FloorAreaSqm: floatPtr(100), Parking: intPtr(10)}},
		{"no area or parking", Metadata{Units: intPtr(10)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := tt.m.AreaPerUnitSqm(); v != nil {
				t.Errorf("AreaPerUnitSqm() = %v, want nil", *v)
			}
			if v := tt.m.ParkingPerUnit(); v != nil {
				t.Errorf("ParkingPerUnit() = %v, want nil", *v)
			}
		})
	}
}

func TestMetadata_ZeroParkingIsAValue(t *testing.T) {
	m := Metadata{Units: intPtr(100), Parking: intPtr(0)}
	pk := m.ParkingPerUnit()
	if pk == nil || *pk != 0 {
		t.Fatalf("ParkingPerUnit() = %v, want 0", pk)
	}
}

func TestEnriched_Unmatched(t *testing.T) {
	e := Enriched{Metadata: Metadata{Name: "한강아파트"}}
	if e.UnitSizePyeong() != nil || e.TransactionPrice() != "" || e.ReferenceDate() != "" {
		t.Fatal("unmatched record must have empty enrichment fields")
	}
}

func TestEnriched_Matched(t *testing.T) {
	e := Enriched{
		Metadata: Metadata{Name: "한강아파트"},
		Deal:     &Deal{SizePyeong: floatPtr(34.5), Price: "5억", ReferenceDate: "2024-06-01", Score: 1},
	}
	if got := e.UnitSizePyeong(); got == nil || *got != 34.5 {
		t.Errorf("UnitSizePyeong() = %v", got)
	}
	if e.TransactionPrice() != "5억" {
		t.Errorf("TransactionPrice() = %q", e.TransactionPrice())
	}
	if e.ReferenceDate() != "2024-06-01" {
		t.Errorf("ReferenceDate() = %q", e.ReferenceDate())
	}
}

func TestToPyeong(t *testing.T) {
	if got := ToPyeong(84.99); got != 25.7 {
		t.Errorf("ToPyeong(84.99) = %v, want 25.7", got)
	}
}
