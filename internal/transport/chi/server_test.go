package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
	domcat "github.com/kailas-cloud/aptdex/internal/domain/catalog"
	facetuc "github.com/kailas-cloud/aptdex/internal/usecase/facet"
	healthuc "github.com/kailas-cloud/aptdex/internal/usecase/health"
)

type mockCatalog struct {
	cat        *domcat.Catalog
	err        error
	refreshErr error
	credential string
}

func (m *mockCatalog) Catalog(_ context.Context) (*domcat.Catalog, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cat, nil
}

func (m *mockCatalog) Refresh(_ context.Context, credential string) (*domcat.Catalog, error) {
	m.credential = credential
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return m.cat, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func testRows() []apartment.Enriched {
	return []apartment.Enriched{
		{
			Metadata: apartment.Metadata{
				District: "강남구", Neighborhood: "역삼동", Name: "래미안",
				ConstructionYear: intPtr(2005), Units: intPtr(500), Layout: apartment.LayoutStair,
				NearestStation: "역삼", SubwayDistanceKM: floatPtr(0.3),
			},
			Deal: &apartment.Deal{SizePyeong: floatPtr(34), Price: "25억", ReferenceDate: "2024-06-01", Score: 1},
		},
		{
			Metadata: apartment.Metadata{
				District: "강남구", Neighborhood: "대치동", Name: "은마",
				ConstructionYear: intPtr(1979), Units: intPtr(4424), Layout: apartment.LayoutCorridor,
				NearestStation: "대치", SubwayDistanceKM: floatPtr(0.5),
			},
		},
		{
			Metadata: apartment.Metadata{
				District: "송파구", Neighborhood: "잠실동", Name: "엘스",
				ConstructionYear: intPtr(2008), Units: intPtr(5678), Layout: apartment.LayoutStair,
				NearestStation: "잠실새내", SubwayDistanceKM: floatPtr(0.4),
			},
		},
	}
}

func newTestServer(cat *mockCatalog, health *mockHealth) http.Handler {
	if health == nil {
		health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	s := NewServer(cat, facetuc.New(), health, zap.NewNop())
	return NewRouter(s, zap.NewNop())
}

func newCatalogMock() *mockCatalog {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return &mockCatalog{cat: domcat.New(0xabc, testRows(), domcat.MatchReport{Matched: 1}, now)}
}

func doRequest(h http.Handler, method, path string, query url.Values) *httptest.ResponseRecorder {
	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req := httptest.NewRequest(method, target, http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

type testCatalogBody struct {
	Criteria string `json:"criteria"`
	Total    int    `json:"total"`
	Items    []struct {
		Name             string   `json:"name"`
		TransactionPrice string   `json:"transaction_price"`
		MatchScore       *float64 `json:"match_score"`
	} `json:"items"`
	Bounds []struct {
		Facet   string   `json:"facet"`
		Applied bool     `json:"applied"`
		Options []string `json:"options"`
		Range   *struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"range"`
	} `json:"bounds"`
	Catalog struct {
		Fingerprint string `json:"fingerprint"`
		Rows        int    `json:"rows"`
		Sources     struct {
			MetadataOrigin string   `json:"metadata_origin"`
			Unavailable    []string `json:"unavailable"`
		} `json:"sources"`
	} `json:"catalog"`
}

func decodeCatalog(t *testing.T, rr *httptest.ResponseRecorder) testCatalogBody {
	t.Helper()
	var body testCatalogBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return body
}

func TestGetCatalog_NoFilters(t *testing.T) {
	h := newTestServer(newCatalogMock(), nil)

	rr := doRequest(h, http.MethodGet, "/catalog", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	body := decodeCatalog(t, rr)
	if body.Total != 3 || len(body.Items) != 3 {
		t.Errorf("total = %d, items = %d, want 3/3", body.Total, len(body.Items))
	}
	if body.Criteria != "all" {
		t.Errorf("criteria = %q, want all", body.Criteria)
	}
	if len(body.Bounds) != 7 {
		t.Errorf("bounds = %d, want 7", len(body.Bounds))
	}
	if body.Catalog.Fingerprint != "abc" || body.Catalog.Rows != 3 {
		t.Errorf("catalog info = %+v", body.Catalog)
	}
	if body.Items[0].TransactionPrice != "25억" || body.Items[0].MatchScore == nil {
		t.Errorf("first item = %+v, want matched deal", body.Items[0])
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestGetCatalog_DistrictFilter(t *testing.T) {
	h := newTestServer(newCatalogMock(), nil)

	rr := doRequest(h, http.MethodGet, "/catalog", url.Values{"district": {"강남구"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := decodeCatalog(t, rr)
	if body.Total != 2 {
		t.Errorf("total = %d, want 2", body.Total)
	}
	district := body.Bounds[0]
	if district.Facet != "district" || !district.Applied {
		t.Fatalf("district bound = %+v", district)
	}
	// District options ignore the district selection itself.
	if len(district.Options) != 2 {
		t.Errorf("district options = %v, want both districts", district.Options)
	}
	neighborhood := body.Bounds[1]
	if len(neighborhood.Options) != 2 || neighborhood.Options[0] != "대치동" {
		t.Errorf("neighborhood options = %v, want [대치동 역삼동]", neighborhood.Options)
	}
}

func TestGetCatalog_RangeAndLimit(t *testing.T) {
	h := newTestServer(newCatalogMock(), nil)

	rr := doRequest(h, http.MethodGet, "/catalog", url.Values{"year_min": {"2000"}, "limit": {"1"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	body := decodeCatalog(t, rr)
	if body.Total != 2 || len(body.Items) != 1 {
		t.Errorf("total = %d, items = %d, want 2/1", body.Total, len(body.Items))
	}
}

func TestGetCatalog_ResetClearsLowerFacets(t *testing.T) {
	h := newTestServer(newCatalogMock(), nil)

	rr := doRequest(h, http.MethodGet, "/catalog", url.Values{
		"district":     {"강남구"},
		"neighborhood": {"역삼동"},
		"station":      {"역삼"},
		"reset":        {"neighborhood"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := decodeCatalog(t, rr)
	if body.Criteria != "district=강남구" {
		t.Errorf("criteria = %q, want district=강남구", body.Criteria)
	}
	if body.Total != 2 {
		t.Errorf("total = %d, want 2", body.Total)
	}
}

func TestGetCatalog_InvalidParams(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
	}{
		{"non-numeric year", url.Values{"year_min": {"abc"}}},
		{"inverted range", url.Values{"year_min": {"2010"}, "year_max": {"2000"}}},
		{"zero limit", url.Values{"limit": {"0"}}},
		{"limit too large", url.Values{"limit": {"5000"}}},
		{"unknown reset facet", url.Values{"reset": {"price"}}},
		{"blank district", url.Values{"district": {" "}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(newCatalogMock(), nil)
			rr := doRequest(h, http.MethodGet, "/catalog", tt.query)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			if body := decodeError(t, rr); body.Code != codeInvalidFilter {
				t.Errorf("code = %q, want %q", body.Code, codeInvalidFilter)
			}
		})
	}
}

func TestGetCatalog_Unavailable(t *testing.T) {
	cat := &mockCatalog{err: domain.NewDataUnavailable("metadata", errors.New("no file"))}
	h := newTestServer(cat, nil)

	rr := doRequest(h, http.MethodGet, "/catalog", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	body := decodeError(t, rr)
	if body.Code != codeDataUnavailable || strings.Contains(body.Message, "no file") {
		t.Errorf("error = %+v, want data_unavailable without internals", body)
	}
}

func TestGetCatalog_ReportsMissingDatasets(t *testing.T) {
	cat := newCatalogMock()
	cat.cat.Sources = domcat.Sources{MetadataOrigin: "snapshot", Unavailable: []string{domcat.DatasetTrades}}
	h := newTestServer(cat, nil)

	rr := doRequest(h, http.MethodGet, "/catalog", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	src := decodeCatalog(t, rr).Catalog.Sources
	if src.MetadataOrigin != "snapshot" || len(src.Unavailable) != 1 || src.Unavailable[0] != "trades" {
		t.Errorf("sources = %+v", src)
	}
}

func TestGetCatalog_InternalError(t *testing.T) {
	h := newTestServer(&mockCatalog{err: errors.New("boom")}, nil)

	rr := doRequest(h, http.MethodGet, "/catalog", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if body := decodeError(t, rr); body.Message != "internal error" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestGetFacets(t *testing.T) {
	h := newTestServer(newCatalogMock(), nil)

	rr := doRequest(h, http.MethodGet, "/facets", url.Values{"layout": {"계단식"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := decodeCatalog(t, rr)
	if body.Total != 2 || len(body.Items) != 0 {
		t.Errorf("total = %d, items = %d, want 2/0", body.Total, len(body.Items))
	}
	distance := body.Bounds[5]
	if distance.Facet != "distance" || distance.Range == nil {
		t.Fatalf("distance bound = %+v", distance)
	}
	if distance.Range.Min != 0.3 || distance.Range.Max != 0.4 {
		t.Errorf("distance range = %+v, want 0.3..0.4", *distance.Range)
	}
}

func TestGetDistrictStats(t *testing.T) {
	h := newTestServer(newCatalogMock(), nil)

	rr := doRequest(h, http.MethodGet, "/stats/districts", url.Values{"district": {"송파구"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body struct {
		Items []struct {
			District  string `json:"district"`
			Complexes int    `json:"complexes"`
		} `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 2 {
		t.Fatalf("items = %d, want 2 (filters ignored)", len(body.Items))
	}
	if body.Items[0].District != "강남구" || body.Items[0].Complexes != 2 {
		t.Errorf("first district = %+v", body.Items[0])
	}
}

func TestGetDistributions(t *testing.T) {
	h := newTestServer(newCatalogMock(), nil)

	rr := doRequest(h, http.MethodGet, "/stats/distributions", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body struct {
		ByLayout []struct {
			Label string `json:"label"`
			Count int    `json:"count"`
		} `json:"by_layout"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.ByLayout) != 2 || body.ByLayout[0].Label != "계단식" || body.ByLayout[0].Count != 2 {
		t.Errorf("by_layout = %+v", body.ByLayout)
	}
}

func TestExportCatalog_Filtered(t *testing.T) {
	h := newTestServer(newCatalogMock(), nil)

	rr := doRequest(h, http.MethodGet, "/export/catalog.csv", url.Values{"district": {"송파구"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	body := rr.Body.String()
	if !strings.HasPrefix(body, "\ufeff") {
		t.Error("csv must start with a UTF-8 BOM")
	}
	if !strings.Contains(body, "엘스") || strings.Contains(body, "은마") {
		t.Errorf("filtered export = %q", body)
	}
}

func TestExportDistricts(t *testing.T) {
	h := newTestServer(newCatalogMock(), nil)

	rr := doRequest(h, http.MethodGet, "/export/districts.csv", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "districts.csv") {
		t.Errorf("content disposition = %q", cd)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "강남구") || !strings.Contains(body, "송파구") {
		t.Errorf("district export = %q", body)
	}
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		refreshErr error
		wantStatus int
		wantCode   string
	}{
		{"missing header", "", nil, http.StatusUnauthorized, codeUnauthorized},
		{"basic scheme", "Basic abc", nil, http.StatusUnauthorized, codeUnauthorized},
		{
			"wrong credential", "Bearer nope",
			domain.NewRefreshRejected(domain.RefreshReasonCredential, nil),
			http.StatusUnauthorized, codeUnauthorized,
		},
		{
			"upstream failure", "Bearer secret",
			domain.NewRefreshRejected(domain.RefreshReasonUpstream, domain.NewDataUnavailable("upstream", nil)),
			http.StatusBadGateway, codeUpstreamError,
		},
		{"success", "Bearer secret", nil, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := newCatalogMock()
			cat.refreshErr = tt.refreshErr
			h := newTestServer(cat, nil)

			req := httptest.NewRequest(http.MethodPost, "/refresh", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantCode != "" {
				if body := decodeError(t, rr); body.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestRefresh_PassesToken(t *testing.T) {
	cat := newCatalogMock()
	h := newTestServer(cat, nil)

	req := httptest.NewRequest(http.MethodPost, "/refresh", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if cat.credential != "secret" {
		t.Errorf("credential = %q, want secret", cat.credential)
	}
	var body struct {
		Rows int `json:"rows"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Rows != 3 {
		t.Errorf("rows = %d, want 3", body.Rows)
	}
}

func TestRefresh_GetNotAllowed(t *testing.T) {
	h := newTestServer(newCatalogMock(), nil)
	rr := doRequest(h, http.MethodGet, "/refresh", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		report     healthuc.Report
		wantStatus int
	}{
		{
			"healthy",
			healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{"catalog": healthuc.CheckOK}},
			http.StatusOK,
		},
		{
			"degraded",
			healthuc.Report{Status: healthuc.Degraded, Checks: map[string]healthuc.CheckResult{"catalog": healthuc.CheckError}},
			http.StatusServiceUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(newCatalogMock(), &mockHealth{report: tt.report})
			rr := doRequest(h, http.MethodGet, "/health", nil)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			var body healthResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != string(tt.report.Status) {
				t.Errorf("status = %q, want %q", body.Status, tt.report.Status)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(newCatalogMock(), nil)
	_ = doRequest(h, http.MethodGet, "/catalog", nil)

	rr := doRequest(h, http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "aptdex_http_requests_total") {
		t.Error("metrics output missing aptdex_http_requests_total")
	}
}

func TestNotFound(t *testing.T) {
	h := newTestServer(newCatalogMock(), nil)
	rr := doRequest(h, http.MethodGet, "/collections", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestJSONRecoverer(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	h := jsonRecoverer(zap.NewNop())(panicking)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if body := decodeError(t, rr); body.Code != codeInternalError {
		t.Errorf("code = %q", body.Code)
	}
}
