// Package source assembles the raw datasets a catalog is built from.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/aptdex/internal/domain"
	domcat "github.com/kailas-cloud/aptdex/internal/domain/catalog"
	"github.com/kailas-cloud/aptdex/internal/ingest"
	"github.com/kailas-cloud/aptdex/internal/logger"
	"github.com/kailas-cloud/aptdex/internal/repository/snapshot"
	"github.com/kailas-cloud/aptdex/internal/repository/tabular"
)

// Dataset names used in logs and DataUnavailable errors.
const (
	DatasetMetadata = domcat.DatasetMetadata
	DatasetTrades   = domcat.DatasetTrades
)

// Origin names where the metadata rows came from.
type Origin string

const (
	OriginSnapshot Origin = "snapshot"
	OriginFile     Origin = "file"
	OriginNone     Origin = "none"
)

// snapshots is the consumer interface for the snapshot store (ISP).
type snapshots interface {
	Info(ctx context.Context) (*snapshot.Snapshot, error)
	Load(ctx context.Context) (*snapshot.Snapshot, error)
}

// Data is one read of both datasets.
type Data struct {
	Metadata       []ingest.Row
	Trades         []ingest.Row
	MetadataOrigin Origin
	// Unavailable lists the datasets that were missing or empty.
	Unavailable    []string
	Fingerprint    uint64
}

// Source reads metadata from the stored snapshot when one exists, otherwise
// from the metadata CSV, and transactions from the transaction CSV.
type Source struct {
	snapshots    snapshots
	metadataPath string
	tradesPath   string
}

// New creates a Source. snaps may be nil, in which case only files are read.
func New(snaps snapshots, metadataPath, tradesPath string) *Source {
	return &Source{snapshots: snaps, metadataPath: metadataPath, tradesPath: tradesPath}
}

// Fingerprint summarises the current state of every input without reading
// the files: snapshot checksum, then size and modification time of each file.
func (s *Source) Fingerprint(ctx context.Context) (uint64, error) {
	d := xxhash.New()
	if s.snapshots != nil {
		info, err := s.snapshots.Info(ctx)
		switch {
		case err == nil:
			_, _ = d.WriteString("snapshot:" + strconv.FormatUint(info.Fingerprint, 16) + "\n")
		case errors.Is(err, snapshot.ErrNotFound):
			_, _ = d.WriteString("snapshot:-\n")
		default:
			return 0, fmt.Errorf("snapshot info: %w", err)
		}
	}
	s.writeFileStamps(d)
	return d.Sum64(), nil
}

func (s *Source) filesFingerprint() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString("snapshot:error\n")
	s.writeFileStamps(d)
	return d.Sum64()
}

func (s *Source) writeFileStamps(d *xxhash.Digest) {
	for _, path := range []string{s.metadataPath, s.tradesPath} {
		_, _ = d.WriteString(fileStamp(path))
	}
}

// Load reads both datasets. Missing inputs yield empty datasets, are logged
// and listed in Data.Unavailable; they never fail the load.
func (s *Source) Load(ctx context.Context) (*Data, error) {
	log := logger.FromContext(ctx)

	data := &Data{MetadataOrigin: OriginNone}
	var snapRows []ingest.Row
	fp, err := s.Fingerprint(ctx)
	if err != nil {
		log.Warn("snapshot store unavailable, reading files only", zap.Error(err))
		data.Fingerprint = s.filesFingerprint()
	} else {
		data.Fingerprint = fp
		snapRows = s.loadSnapshot(ctx, log)
	}

	if len(snapRows) > 0 {
		data.Metadata, data.MetadataOrigin = snapRows, OriginSnapshot
	} else if rows, ok := readFile(log, s.metadataPath, DatasetMetadata); ok {
		data.Metadata, data.MetadataOrigin = rows, OriginFile
	} else {
		data.Unavailable = append(data.Unavailable, DatasetMetadata)
	}

	trades, ok := readFile(log, s.tradesPath, DatasetTrades)
	if !ok {
		data.Unavailable = append(data.Unavailable, DatasetTrades)
	}
	data.Trades = trades
	return data, nil
}

func (s *Source) loadSnapshot(ctx context.Context, log *zap.Logger) []ingest.Row {
	if s.snapshots == nil {
		return nil
	}
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		if !errors.Is(err, snapshot.ErrNotFound) {
			log.Warn("snapshot unreadable, falling back to metadata file", zap.Error(err))
		}
		return nil
	}
	return snap.Rows
}

func readFile(log *zap.Logger, path, dataset string) ([]ingest.Row, bool) {
	if path == "" {
		log.Warn("dataset not configured", zap.Error(domain.NewDataUnavailable(dataset, nil)))
		return nil, false
	}
	rows, err := tabular.ReadFile(path, dataset)
	if err != nil {
		log.Warn("dataset unavailable", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	if len(rows) == 0 {
		log.Warn("dataset empty", zap.String("path", path), zap.Error(domain.NewDataUnavailable(dataset, nil)))
		return nil, false
	}
	return rows, true
}

func fileStamp(path string) string {
	fi, err := os.Stat(path)
	if err != nil {
		return path + ":-\n"
	}
	return fmt.Sprintf("%s:%d:%d\n", path, fi.Size(), fi.ModTime().UnixNano())
}
