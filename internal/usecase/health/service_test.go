package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
	domcat "github.com/kailas-cloud/aptdex/internal/domain/catalog"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockCatalog struct {
	rows    int
	missing []string
	err     error
}

func (m *mockCatalog) Catalog(_ context.Context) (*domcat.Catalog, error) {
	if m.err != nil {
		return nil, m.err
	}
	cat := domcat.New(1, make([]apartment.Enriched, m.rows), domcat.MatchReport{}, time.Now())
	cat.Sources = domcat.Sources{MetadataOrigin: "file", Unavailable: m.missing}
	return cat, nil
}

// --- Tests ---

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		db       error
		catalog  *mockCatalog
		status   Status
		database CheckResult
		cat      CheckResult
		sources  CheckResult
	}{
		{"all healthy", nil, &mockCatalog{rows: 3}, Healthy, CheckOK, CheckOK, CheckOK},
		{"db error", errors.New("conn refused"), &mockCatalog{rows: 3}, Degraded, CheckError, CheckOK, CheckOK},
		{"empty catalog", nil, &mockCatalog{}, Degraded, CheckOK, CheckError, CheckError},
		{"catalog error", nil, &mockCatalog{err: errors.New("boom")}, Degraded, CheckOK, CheckError, CheckError},
		{"both fail", errors.New("db down"), &mockCatalog{}, Degraded, CheckError, CheckError, CheckError},
		{
			"trades missing", nil, &mockCatalog{rows: 3, missing: []string{domcat.DatasetTrades}},
			Degraded, CheckOK, CheckOK, CheckError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&mockDBPinger{err: tt.db}, tt.catalog).Check(context.Background())
			if r.Status != tt.status {
				t.Errorf("status = %q, want %q", r.Status, tt.status)
			}
			if r.Checks["database"] != tt.database {
				t.Errorf("database = %q, want %q", r.Checks["database"], tt.database)
			}
			if r.Checks["catalog"] != tt.cat {
				t.Errorf("catalog = %q, want %q", r.Checks["catalog"], tt.cat)
			}
			if r.Checks["sources"] != tt.sources {
				t.Errorf("sources = %q, want %q", r.Checks["sources"], tt.sources)
			}
		})
	}
}

func TestCheck_NoCatalog(t *testing.T) {
	r := New(&mockDBPinger{}, nil).Check(context.Background())
	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["catalog"]; ok {
		t.Error("catalog check should be absent when catalog is nil")
	}
}
