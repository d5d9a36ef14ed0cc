// Package catalog builds, caches and refreshes the enriched apartment catalog.
package catalog

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/aptdex/internal/domain"
	domcat "github.com/kailas-cloud/aptdex/internal/domain/catalog"
	"github.com/kailas-cloud/aptdex/internal/ingest"
	"github.com/kailas-cloud/aptdex/internal/logger"
	"github.com/kailas-cloud/aptdex/internal/metrics"
	"github.com/kailas-cloud/aptdex/internal/usecase/reconcile"
)

// Service owns the current catalog. Catalog returns the same instance until
// the sources change, Invalidate is called or a refresh succeeds.
type Service struct {
	source    Source
	fetcher   Fetcher
	snapshots SnapshotWriter
	reconcile *reconcile.Service
	mapper    *ingest.Mapper
	password  string
	now       func() time.Time

	current   atomic.Pointer[domcat.Catalog]
	buildMu   sync.Mutex
	refreshMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithRefresh enables Refresh: rows come from fetcher and are persisted
// through snapshots. Refresh requires the given password; an empty password
// rejects every refresh.
func WithRefresh(fetcher Fetcher, snapshots SnapshotWriter, password string) Option {
	return func(s *Service) {
		s.fetcher = fetcher
		s.snapshots = snapshots
		s.password = password
	}
}

// WithClock overrides the build timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a catalog service.
func New(src Source, rec *reconcile.Service, mapper *ingest.Mapper, opts ...Option) *Service {
	s := &Service{
		source:    src,
		reconcile: rec,
		mapper:    mapper,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Catalog returns the current catalog, building it when none is cached or
// the source fingerprint moved. When the fingerprint cannot be read the
// cached catalog is served as is. A catalog built without metadata is cached
// like any other but reported as a DataUnavailable error.
func (s *Service) Catalog(ctx context.Context) (*domcat.Catalog, error) {
	log := logger.FromContext(ctx)

	fp, fpErr := s.source.Fingerprint(ctx)
	if cur := s.current.Load(); cur != nil {
		if fpErr != nil {
			log.Warn("source fingerprint unavailable, serving cached catalog", zap.Error(fpErr))
			metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
			return usable(cur)
		}
		if cur.Fingerprint == fp {
			metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
			return usable(cur)
		}
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	// Another caller may have rebuilt while we waited.
	if cur := s.current.Load(); cur != nil && fpErr == nil && cur.Fingerprint == fp {
		metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
		return usable(cur)
	}
	metrics.CatalogCacheTotal.WithLabelValues("miss").Inc()

	cat, err := s.build(ctx)
	if err != nil {
		if cur := s.current.Load(); cur != nil {
			log.Error("catalog rebuild failed, serving previous catalog", zap.Error(err))
			return usable(cur)
		}
		return nil, err
	}
	s.current.Store(cat)
	return usable(cat)
}

// usable rejects a catalog whose metadata could not be read.
func usable(cat *domcat.Catalog) (*domcat.Catalog, error) {
	if cat.Sources.Missing(domcat.DatasetMetadata) {
		return nil, domain.NewDataUnavailable(domcat.DatasetMetadata, nil)
	}
	return cat, nil
}

// Invalidate drops the cached catalog; the next Catalog call rebuilds.
func (s *Service) Invalidate() {
	s.current.Store(nil)
}

// Refresh checks credential, pulls fresh metadata, persists it and rebuilds
// the catalog. On any failure the previous catalog stays in place and a
// *domain.RefreshRejectedError is returned.
func (s *Service) Refresh(ctx context.Context, credential string) (*domcat.Catalog, error) {
	log := logger.FromContext(ctx)

	if !s.credentialOK(credential) {
		metrics.RefreshTotal.WithLabelValues(string(domain.RefreshReasonCredential)).Inc()
		log.Warn("refresh rejected", zap.String("reason", string(domain.RefreshReasonCredential)))
		return nil, domain.NewRefreshRejected(domain.RefreshReasonCredential, nil)
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	cat, err := s.refresh(ctx)
	if err != nil {
		metrics.RefreshTotal.WithLabelValues(string(domain.RefreshReasonUpstream)).Inc()
		log.Error("refresh failed, keeping previous catalog", zap.Error(err))
		return nil, domain.NewRefreshRejected(domain.RefreshReasonUpstream, err)
	}
	metrics.RefreshTotal.WithLabelValues("ok").Inc()
	return cat, nil
}

func (s *Service) refresh(ctx context.Context) (*domcat.Catalog, error) {
	if s.fetcher == nil || s.snapshots == nil {
		return nil, errors.New("refresh source not configured")
	}
	rows, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.NewDataUnavailable("upstream", nil)
	}
	snap, err := s.snapshots.Save(ctx, rows, s.now())
	if err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	logger.FromContext(ctx).Info("snapshot saved",
		zap.Int("rows", len(snap.Rows)),
		zap.Time("fetched_at", snap.FetchedAt),
	)

	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	cat, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	s.current.Store(cat)
	return cat, nil
}

func (s *Service) credentialOK(credential string) bool {
	if s.password == "" || credential == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(credential), []byte(s.password)) == 1
}

func (s *Service) build(ctx context.Context) (*domcat.Catalog, error) {
	start := time.Now()
	log := logger.FromContext(ctx)

	data, err := s.source.Load(ctx)
	if err != nil {
		metrics.CatalogBuildsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load sources: %w", err)
	}

	meta, metaRep := s.mapper.Metadata(data.Metadata)
	trades, tradeRep := s.mapper.Transactions(data.Trades)
	res := s.reconcile.Enrich(ctx, meta, trades)
	cat := domcat.New(data.Fingerprint, res.Rows, res.Report, s.now())
	cat.Sources = domcat.Sources{
		MetadataOrigin: string(data.MetadataOrigin),
		Unavailable:    data.Unavailable,
	}
	if len(data.Unavailable) > 0 {
		log.Warn("catalog built with missing datasets", zap.Error(cat.Sources.Err()))
	}

	took := time.Since(start)
	metrics.CatalogBuildsTotal.WithLabelValues("ok").Inc()
	metrics.CatalogBuildDuration.Observe(took.Seconds())
	metrics.CatalogRows.Set(float64(cat.Len()))

	log.Info("catalog built",
		zap.String("id", cat.ID.String()),
		zap.String("fingerprint", cat.FingerprintHex()),
		zap.String("origin", string(data.MetadataOrigin)),
		zap.Int("rows", cat.Len()),
		zap.Int("trades", len(trades)),
		zap.Int("dropped", metaRep.Read-metaRep.Kept),
		zap.Int("coercion_failures", metaRep.CoercionFailures+tradeRep.CoercionFailures),
		zap.Int("matched", res.Report.Matched),
		zap.Int("below_threshold", res.Report.BelowThreshold),
		zap.Int("no_candidates", res.Report.NoCandidates),
		zap.Int("enriched", res.Report.Enriched),
		zap.Duration("took", took),
	)
	return cat, nil
}
