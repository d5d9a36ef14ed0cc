package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/aptdex/internal/domain"
)

// parseFloat parses a numeric cell, tolerating thousands separators.
func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrFieldCoercion, s)
	}
	return v, nil
}

// parseInt parses an integer cell. Integral floats such as "1234.0" are accepted.
func parseInt(s string) (int, error) {
	f, err := parseFloat(s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %q is not an integer", domain.ErrFieldCoercion, s)
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %q is out of range", domain.ErrFieldCoercion, s)
	}
	return int(f), nil
}

// parseYear takes the leading four characters of a date such as
// "2003-12-26 00:00:00.0" or "20031226". They must all be ASCII digits.
func parseYear(s string) (int, error) {
	if len(s) < 4 {
		return 0, fmt.Errorf("%w: %q has no year", domain.ErrFieldCoercion, s)
	}
	y := 0
	for _, c := range []byte(s[:4]) {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q has no year", domain.ErrFieldCoercion, s)
		}
		y = y*10 + int(c-'0')
	}
	return y, nil
}
