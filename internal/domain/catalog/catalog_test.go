package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/aptdex/internal/domain"

	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
)

func TestNew(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := []apartment.Enriched{{Metadata: apartment.Metadata{Name: "한강아파트"}}}

	a := New(0xbeef, rows, MatchReport{MetadataRows: 1}, now)
	b := New(0xbeef, rows, MatchReport{MetadataRows: 1}, now)

	if a.ID == b.ID {
		t.Error("each build must get its own ID")
	}
	if a.Len() != 1 || a.BuiltAt != now || a.Report.MetadataRows != 1 {
		t.Errorf("unexpected catalog %+v", a)
	}
	if a.FingerprintHex() != "beef" {
		t.Errorf("FingerprintHex() = %q", a.FingerprintHex())
	}
}

func TestSources(t *testing.T) {
	complete := Sources{MetadataOrigin: "file"}
	if complete.Missing(DatasetTrades) || complete.Err() != nil {
		t.Errorf("complete sources reported missing data: %v", complete.Err())
	}

	partial := Sources{MetadataOrigin: "file", Unavailable: []string{DatasetTrades}}
	if !partial.Missing(DatasetTrades) || partial.Missing(DatasetMetadata) {
		t.Errorf("Missing wrong for %+v", partial)
	}
	err := partial.Err()
	if !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("Err() = %v, want ErrDataUnavailable", err)
	}
	var due *domain.DataUnavailableError
	if !errors.As(err, &due) || due.Dataset != DatasetTrades {
		t.Errorf("Err() dataset = %+v", due)
	}
}
