// Package catalog holds the merged apartment catalog produced by one build.
package catalog

import (
	"errors"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
)

// Dataset names.
const (
	DatasetMetadata = "metadata"
	DatasetTrades   = "trades"
)

// Sources describes the inputs a catalog was built from.
type Sources struct {
	// MetadataOrigin is snapshot, file or none.
	MetadataOrigin string   `json:"metadata_origin"`
	// Unavailable lists datasets that were missing or empty and were read as empty.
	Unavailable    []string `json:"unavailable,omitempty"`
}

// Missing reports whether dataset was unavailable.
func (s Sources) Missing(dataset string) bool {
	return slices.Contains(s.Unavailable, dataset)
}

// Err returns a DataUnavailable error per unavailable dataset, or nil.
func (s Sources) Err() error {
	errs := make([]error, 0, len(s.Unavailable))
	for _, ds := range s.Unavailable {
		errs = append(errs, domain.NewDataUnavailable(ds, nil))
	}
	return errors.Join(errs...)
}

// MatchReport counts the outcomes of one reconciliation run.
type MatchReport struct {
	MetadataRows int `json:"metadata_rows"`
	// Candidates is the number of metadata rows left after deduplication.
	Candidates   int `json:"candidates"`
	Transactions int `json:"transactions"`

	Matched        int `json:"matched"`
	BelowThreshold int `json:"below_threshold"`
	NoCandidates   int `json:"no_candidates"`
	// Superseded counts accepted matches that lost their row to a better one.
	Superseded int `json:"superseded"`

	// Enriched is the number of output rows carrying a deal.
	Enriched int `json:"enriched"`
}

// Catalog is an immutable enriched catalog. Callers must not modify Rows.
type Catalog struct {
	ID          uuid.UUID
	Fingerprint uint64
	BuiltAt     time.Time
	Rows        []apartment.Enriched
	Report      MatchReport
	Sources     Sources
}

// New stamps rows into a catalog with a fresh build ID.
func New(fingerprint uint64, rows []apartment.Enriched, report MatchReport, now time.Time) *Catalog {
	return &Catalog{
		ID:          uuid.New(),
		Fingerprint: fingerprint,
		BuiltAt:     now,
		Rows:        rows,
		Report:      report,
	}
}

// Len returns the number of rows.
func (c *Catalog) Len() int { return len(c.Rows) }

// FingerprintHex returns the source fingerprint in hex.
func (c *Catalog) FingerprintHex() string {
	return strconv.FormatUint(c.Fingerprint, 16)
}
