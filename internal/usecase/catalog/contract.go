package catalog

import (
	"context"
	"time"

	"github.com/kailas-cloud/aptdex/internal/ingest"
	"github.com/kailas-cloud/aptdex/internal/repository/snapshot"
	"github.com/kailas-cloud/aptdex/internal/repository/source"
)

// Source reads the raw datasets and reports when they change.
type Source interface {
	Fingerprint(ctx context.Context) (uint64, error)
	Load(ctx context.Context) (*source.Data, error)
}

// Fetcher pulls fresh metadata rows from the upstream open-data service.
type Fetcher interface {
	Fetch(ctx context.Context) ([]ingest.Row, error)
}

// SnapshotWriter persists fetched metadata rows.
type SnapshotWriter interface {
	Save(ctx context.Context, rows []ingest.Row, fetchedAt time.Time) (*snapshot.Snapshot, error)
}
