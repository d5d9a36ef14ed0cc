// Package geo computes distances between coordinates and the nearest subway
// station of a point.
package geo

import "github.com/tidwall/geodesic"

// Distance returns the geodesic distance in meters between two points on the
// WGS-84 ellipsoid, given as latitude and longitude in degrees.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	var meters float64
	geodesic.WGS84.Inverse(lat1, lon1, lat2, lon2, &meters, nil, nil)
	return meters
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
