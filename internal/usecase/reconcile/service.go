// Package reconcile merges transaction prices into the metadata catalog by
// fuzzy complex-name matching within each (district, neighborhood) group.
package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
	"github.com/kailas-cloud/aptdex/internal/domain/catalog"
	"github.com/kailas-cloud/aptdex/internal/logger"
	"github.com/kailas-cloud/aptdex/internal/metrics"
)

// Service reconciles metadata and transaction datasets.
type Service struct {
	threshold float64
}

// New creates a reconcile service with the given acceptance threshold.
func New(threshold float64) (*Service, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	return &Service{threshold: threshold}, nil
}

// Threshold returns the acceptance threshold.
func (s *Service) Threshold() float64 { return s.threshold }

// Result is the enriched catalog rows with the run's match report.
type Result struct {
	Rows   []apartment.Enriched
	Report catalog.MatchReport
}

type claim struct {
	deal  *apartment.Deal
	score float64
}

// Enrich left-joins trades onto meta. The output has exactly one row per
// metadata row, in the same order. Each accepted transaction claims the row
// it matched; when several claim one row the highest score wins and equal
// scores keep the earliest transaction. Inputs are not modified.
func (s *Service) Enrich(ctx context.Context, meta []apartment.Metadata, trades []apartment.Transaction) Result {
	start := time.Now()
	log := logger.FromContext(ctx)

	ix := NewIndex(meta)
	m := &Matcher{index: ix, threshold: s.threshold}

	report := catalog.MatchReport{
		MetadataRows: len(meta),
		Candidates:   ix.Len(),
		Transactions: len(trades),
	}
	claims := make(map[int]claim)

	for i := range trades {
		tx := &trades[i]
		res := m.Match(tx)
		metrics.ReconcileTransactionsTotal.WithLabelValues(res.Outcome.String()).Inc()
		if res.Best != nil {
			metrics.ReconcileMatchScore.Observe(res.Score)
		}

		switch res.Outcome {
		case NoCandidates:
			report.NoCandidates++
			continue
		case BelowThreshold:
			report.BelowThreshold++
			continue
		case Matched:
			report.Matched++
		}

		pos := res.Best.Pos
		if prev, taken := claims[pos]; taken {
			report.Superseded++
			if res.Score <= prev.score {
				continue
			}
		}
		claims[pos] = claim{
			deal: &apartment.Deal{
				SizePyeong:    tx.SizePyeong,
				Price:         tx.Price,
				ReferenceDate: tx.ReferenceDate,
				Score:         res.Score,
			},
			score: res.Score,
		}
	}

	rows := make([]apartment.Enriched, len(meta))
	for i := range meta {
		rows[i] = apartment.Enriched{Metadata: meta[i]}
		if c, ok := claims[i]; ok {
			rows[i].Deal = c.deal
		}
	}
	report.Enriched = len(claims)

	log.Debug("reconciled",
		zap.Int("metadata", report.MetadataRows),
		zap.Int("candidates", report.Candidates),
		zap.Int("groups", ix.Groups()),
		zap.Int("transactions", report.Transactions),
		zap.Int("matched", report.Matched),
		zap.Int("below_threshold", report.BelowThreshold),
		zap.Int("no_candidates", report.NoCandidates),
		zap.Int("superseded", report.Superseded),
		zap.Duration("took", time.Since(start)),
	)

	return Result{Rows: rows, Report: report}
}
