package health

import (
	"context"

	domcat "github.com/kailas-cloud/aptdex/internal/domain/catalog"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CatalogProvider returns the current catalog.
type CatalogProvider interface {
	Catalog(ctx context.Context) (*domcat.Catalog, error)
}
