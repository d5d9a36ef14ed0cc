package metrics

import "github.com/prometheus/client_golang/prometheus"

// Catalog and reconciliation metrics.
var (
	CatalogBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_builds_total",
			Help:      "Catalog builds by result",
		},
		[]string{"result"}, // "ok" / "error"
	)

	CatalogBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_build_duration_seconds",
			Help:      "Time to load sources and reconcile them into a catalog",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	CatalogRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_rows",
			Help:      "Rows in the current catalog",
		},
	)

	CatalogCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_total",
			Help:      "Catalog cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ReconcileTransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_transactions_total",
			Help:      "Transactions processed by match outcome",
		},
		[]string{"outcome"}, // "matched" / "below_threshold" / "no_candidates"
	)

	ReconcileMatchScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_match_score",
			Help:      "Best similarity score per transaction that had candidates",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 1},
		},
	)

	RefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Refresh requests by result",
		},
		[]string{"result"}, // "ok" / "credential" / "upstream"
	)

	SourceFetchPagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetch_pages_total",
			Help:      "Open-data API pages fetched by status",
		},
		[]string{"status"}, // "ok" / "error"
	)

	SourceFetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_page_duration_seconds",
			Help:      "Open-data API page request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

var catalogMetricsRegistered bool

// RegisterCatalogMetrics registers the catalog metrics. Must be called once from main.
func RegisterCatalogMetrics() {
	if catalogMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		CatalogBuildsTotal,
		CatalogBuildDuration,
		CatalogRows,
		CatalogCacheTotal,
		ReconcileTransactionsTotal,
		ReconcileMatchScore,
		RefreshTotal,
		SourceFetchPagesTotal,
		SourceFetchDuration,
	)
	catalogMetricsRegistered = true
}
