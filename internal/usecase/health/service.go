package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	catalog CatalogProvider
}

// New creates a Service. catalog can be nil.
func New(db DBPinger, catalog CatalogProvider) *Service {
	return &Service{db: db, catalog: catalog}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	// An empty catalog means no source data was readable.
	if s.catalog != nil {
		cat, err := s.catalog.Catalog(ctx)
		switch {
		case err != nil || cat.Len() == 0:
			checks["catalog"] = CheckError
			checks["sources"] = CheckError
		case len(cat.Sources.Unavailable) > 0:
			checks["catalog"] = CheckOK
			checks["sources"] = CheckError
		default:
			checks["catalog"] = CheckOK
			checks["sources"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
