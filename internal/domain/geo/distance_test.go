package geo

import (
	"math"
	"testing"
)

func almost(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want, eps              float64
	}{
		// Flinders Peak to Buninyong, the classic reference pair.
		{"reference line", -37.95103342, 144.42486789, -37.65282114, 143.92649554, 54972.271, 0.01},
		{"seoul station to gangnam", 37.5547, 126.9707, 37.4979, 127.0276, 8064.67, 0.1},
		{"jfk to changi", 40.64, -73.78, 1.36, 103.99, 15347512.36, 50},
		{"same point", 37.5, 127, 37.5, 127, 0, 1e-9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2); !almost(d, tt.want, tt.eps) {
				t.Errorf("Distance = %.3fm, want %.3fm", d, tt.want)
			}
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Distance(37.5547, 126.9707, 37.4979, 127.0276)
	b := Distance(37.4979, 127.0276, 37.5547, 126.9707)
	if !almost(a, b, 1e-6) {
		t.Errorf("a->b %.6f != b->a %.6f", a, b)
	}
}

func TestDistance_NearAntipode(t *testing.T) {
	// Nearly antipodal points.
	d := Distance(0, 0, 0.5, 179.7)
	if math.IsNaN(d) || d < 19_900_000 || d > 20_010_000 {
		t.Fatalf("near-antipodal distance = %.0fm", d)
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     bool
	}{
		{37.5, 127, true},
		{-90, -180, true},
		{90, 180, true},
		{91, 0, false},
		{0, -181, false},
	}
	for _, tt := range tests {
		if got := ValidateCoordinates(tt.lat, tt.lon); got != tt.want {
			t.Errorf("ValidateCoordinates(%v, %v) = %v, want %v", tt.lat, tt.lon, got, tt.want)
		}
	}
}
