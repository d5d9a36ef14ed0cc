package chi

import (
	"context"

	domcat "github.com/kailas-cloud/aptdex/internal/domain/catalog"
	healthuc "github.com/kailas-cloud/aptdex/internal/usecase/health"
)

// CatalogService serves and refreshes the enriched catalog.
type CatalogService interface {
	Catalog(ctx context.Context) (*domcat.Catalog, error)
	Refresh(ctx context.Context, credential string) (*domcat.Catalog, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
