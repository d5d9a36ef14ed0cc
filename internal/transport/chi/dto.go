package chi

import (
	"time"

	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
	domcat "github.com/kailas-cloud/aptdex/internal/domain/catalog"
	domfacet "github.com/kailas-cloud/aptdex/internal/domain/facet"
	"github.com/kailas-cloud/aptdex/internal/usecase/stats"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type catalogInfo struct {
	ID          string             `json:"id"`
	BuiltAt     time.Time          `json:"built_at"`
	Fingerprint string             `json:"fingerprint"`
	Rows        int                `json:"rows"`
	Report      domcat.MatchReport `json:"report"`
	Sources     domcat.Sources     `json:"sources"`
}

type rowResponse struct {
	apartment.Metadata
	AreaPerUnitSqm   *float64 `json:"area_per_unit_sqm,omitempty"`
	PyeongPerUnit    *float64 `json:"pyeong_per_unit,omitempty"`
	ParkingPerUnit   *float64 `json:"parking_per_unit,omitempty"`
	UnitSizePyeong   *float64 `json:"unit_size_pyeong,omitempty"`
	TransactionPrice string   `json:"transaction_price,omitempty"`
	ReferenceDate    string   `json:"reference_date,omitempty"`
	MatchScore       *float64 `json:"match_score,omitempty"`
}

type catalogResponse struct {
	Catalog  catalogInfo       `json:"catalog"`
	Criteria string            `json:"criteria"`
	Total    int               `json:"total"`
	Items    []rowResponse     `json:"items"`
	Bounds   []domfacet.Bounds `json:"bounds"`
	Summary  stats.Stats       `json:"summary"`
}

type facetsResponse struct {
	Criteria string            `json:"criteria"`
	Total    int               `json:"total"`
	Bounds   []domfacet.Bounds `json:"bounds"`
}

type districtsResponse struct {
	Items []stats.DistrictStats `json:"items"`
}

func catalogToInfo(c *domcat.Catalog) catalogInfo {
	return catalogInfo{
		ID:          c.ID.String(),
		BuiltAt:     c.BuiltAt.UTC(),
		Fingerprint: c.FingerprintHex(),
		Rows:        c.Len(),
		Report:      c.Report,
		Sources:     c.Sources,
	}
}

func rowToResponse(e *apartment.Enriched) rowResponse {
	out := rowResponse{
		Metadata:         e.Metadata,
		AreaPerUnitSqm:   e.AreaPerUnitSqm(),
		PyeongPerUnit:    e.PyeongPerUnit(),
		ParkingPerUnit:   e.ParkingPerUnit(),
		UnitSizePyeong:   e.UnitSizePyeong(),
		TransactionPrice: e.TransactionPrice(),
		ReferenceDate:    e.ReferenceDate(),
	}
	if e.Deal != nil {
		score := e.Deal.Score
		out.MatchScore = &score
	}
	return out
}

func rowsToResponse(rows []apartment.Enriched, limit int) []rowResponse {
	if limit > len(rows) {
		limit = len(rows)
	}
	out := make([]rowResponse, limit)
	for i := range out {
		out[i] = rowToResponse(&rows[i])
	}
	return out
}
