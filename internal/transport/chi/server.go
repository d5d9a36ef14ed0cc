package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/repository/export"
	facetuc "github.com/kailas-cloud/aptdex/internal/usecase/facet"
	healthuc "github.com/kailas-cloud/aptdex/internal/usecase/health"
	"github.com/kailas-cloud/aptdex/internal/usecase/stats"
)

// Error codes returned in error bodies.
const (
	codeInvalidFilter   = "invalid_filter"
	codeUnauthorized    = "unauthorized"
	codeUpstreamError   = "upstream_error"
	codeDataUnavailable = "data_unavailable"
	codeInternalError   = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the catalog API.
type Server struct {
	catalog       CatalogService
	facets        *facetuc.Engine
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(catalog CatalogService, facets *facetuc.Engine, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		catalog: catalog,
		facets:  facets,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		refreshRejectedHandler,
		sentinelHandler(domain.ErrDataUnavailable, http.StatusServiceUnavailable, codeDataUnavailable),
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, codeInvalidFilter),
	}
	return s
}

// Routes registers the API routes on r.
func (s *Server) Routes(r chirouter.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/catalog", s.GetCatalog)
	r.Get("/facets", s.GetFacets)
	r.Get("/stats/districts", s.GetDistrictStats)
	r.Get("/stats/distributions", s.GetDistributions)
	r.Get("/export/catalog.csv", s.ExportCatalog)
	r.Get("/export/districts.csv", s.ExportDistricts)
	r.Post("/refresh", s.Refresh)
}

// GetCatalog handles GET /catalog.
func (s *Server) GetCatalog(w http.ResponseWriter, r *http.Request) {
	params, err := bindCatalogParams(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	criteria, err := params.Criteria()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	limit, err := params.RowLimit()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	cat, err := s.catalog.Catalog(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res := s.facets.Evaluate(cat.Rows, criteria)
	writeJSON(w, http.StatusOK, catalogResponse{
		Catalog:  catalogToInfo(cat),
		Criteria: criteria.String(),
		Total:    len(res.Rows),
		Items:    rowsToResponse(res.Rows, limit),
		Bounds:   res.Bounds,
		Summary:  stats.Summarize(res.Rows),
	})
}

// GetFacets handles GET /facets.
func (s *Server) GetFacets(w http.ResponseWriter, r *http.Request) {
	params, err := bindCatalogParams(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	criteria, err := params.Criteria()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	cat, err := s.catalog.Catalog(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res := s.facets.Evaluate(cat.Rows, criteria)
	writeJSON(w, http.StatusOK, facetsResponse{
		Criteria: criteria.String(),
		Total:    len(res.Rows),
		Bounds:   res.Bounds,
	})
}

// GetDistrictStats handles GET /stats/districts. Filters do not apply.
func (s *Server) GetDistrictStats(w http.ResponseWriter, r *http.Request) {
	cat, err := s.catalog.Catalog(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, districtsResponse{Items: stats.GroupByDistrict(cat.Rows)})
}

// GetDistributions handles GET /stats/distributions. Filters do not apply.
func (s *Server) GetDistributions(w http.ResponseWriter, r *http.Request) {
	cat, err := s.catalog.Catalog(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Distributions(cat.Rows))
}

// ExportCatalog handles GET /export/catalog.csv with the same filters as /catalog.
func (s *Server) ExportCatalog(w http.ResponseWriter, r *http.Request) {
	params, err := bindCatalogParams(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	criteria, err := params.Criteria()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	cat, err := s.catalog.Catalog(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rows := s.facets.Filter(cat.Rows, criteria)
	setCSVHeaders(w, "catalog.csv")
	if err := export.CatalogCSV(w, rows); err != nil {
		s.requestLogger(r).Error("write catalog csv", zap.Error(err))
	}
}

// ExportDistricts handles GET /export/districts.csv.
func (s *Server) ExportDistricts(w http.ResponseWriter, r *http.Request) {
	cat, err := s.catalog.Catalog(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setCSVHeaders(w, "districts.csv")
	if err := export.DistrictCSV(w, stats.GroupByDistrict(cat.Rows)); err != nil {
		s.requestLogger(r).Error("write district csv", zap.Error(err))
	}
}

// Refresh handles POST /refresh. The bearer token is the refresh password.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, err.Error())
		return
	}

	cat, err := s.catalog.Refresh(r.Context(), token)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, catalogToInfo(cat))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		if errors.Is(err, domain.ErrInvalidFilter) {
			// Filter errors describe caller input only.
			msg = err.Error()
		}
		writeError(w, status, code, msg)
		return true
	}
}

// refreshRejectedHandler maps a credential rejection to 401 and an upstream
// rejection to 502.
func refreshRejectedHandler(w http.ResponseWriter, err error) bool {
	var rre *domain.RefreshRejectedError
	if !errors.As(err, &rre) {
		return false
	}
	switch rre.Reason {
	case domain.RefreshReasonCredential:
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid refresh credential")
	default:
		writeError(w, http.StatusBadGateway, codeUpstreamError, domain.ErrRefreshRejected.Error())
	}
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.requestLogger(r)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// requestLogger tags the server logger with the request id.
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if id := chiMiddleware.GetReqID(r.Context()); id != "" {
		return s.logger.With(zap.String("request_id", id))
	}
	return s.logger
}
