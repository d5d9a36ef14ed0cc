package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/repository/export"
	"github.com/kailas-cloud/aptdex/internal/repository/source"
	"github.com/kailas-cloud/aptdex/internal/usecase/catalog"
	"github.com/kailas-cloud/aptdex/internal/usecase/reconcile"
	"github.com/kailas-cloud/aptdex/internal/usecase/stats"
)

// Output formats of the reconcile command.
const (
	formatCSV     = "csv"
	formatSQLite  = "sqlite"
	formatParquet = "parquet"
)

// Output file names inside --out.
const (
	catalogCSVFile   = "seoul_apartments_enriched.csv"
	districtCSVFile  = "district_statistics.csv"
	sqliteFile       = "aptdex.db"
	catalogParquetFn = "seoul_apartments_enriched.parquet"
)

type reconcileOptions struct {
	metadata  string
	trades    string
	out       string
	formats   []string
	threshold float64
}

func createReconcileCmd(a *app) *cobra.Command {
	var opts reconcileOptions
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Enrich metadata with transactions offline and write the catalog",
		Long:  `Reads the metadata and transaction CSV files, reconciles them and writes the enriched catalog and district statistics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.reconcile(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.metadata, "metadata", "", "metadata CSV (default: sources.metadata_path)")
	cmd.Flags().StringVar(&opts.trades, "trades", "", "transaction CSV (default: sources.trades_path)")
	cmd.Flags().StringVar(&opts.out, "out", "", "output directory (default: export.dir)")
	cmd.Flags().StringSliceVar(&opts.formats, "format",
		[]string{formatCSV, formatSQLite, formatParquet}, "output formats: csv, sqlite, parquet")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "match threshold (default: matching.threshold)")
	return cmd
}

func (a *app) reconcile(ctx context.Context, opts reconcileOptions) error {
	if opts.metadata == "" {
		opts.metadata = a.cfg.Sources.MetadataPath
	}
	if opts.trades == "" {
		opts.trades = a.cfg.Sources.TradesPath
	}
	if opts.out == "" {
		opts.out = a.cfg.Export.Dir
	}
	if opts.threshold == 0 {
		opts.threshold = a.cfg.Matching.Threshold
	}
	for _, f := range opts.formats {
		if !slices.Contains([]string{formatCSV, formatSQLite, formatParquet}, strings.ToLower(f)) {
			return fmt.Errorf("unknown format %q", f)
		}
	}

	mapper, err := a.mapper()
	if err != nil {
		return err
	}
	rec, err := reconcile.New(opts.threshold)
	if err != nil {
		return fmt.Errorf("create reconciler: %w", err)
	}

	// Offline runs read files only; the snapshot store is not consulted.
	src := source.New(nil, opts.metadata, opts.trades)
	cat, err := catalog.New(src, rec, mapper).Catalog(ctx)
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}
	if cat.Len() == 0 {
		return domain.NewDataUnavailable(source.DatasetMetadata, fmt.Errorf("no rows in %s", opts.metadata))
	}

	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	districts := stats.GroupByDistrict(cat.Rows)

	for _, f := range opts.formats {
		switch strings.ToLower(f) {
		case formatCSV:
			if err := writeFile(filepath.Join(opts.out, catalogCSVFile), func(w io.Writer) error {
				return export.CatalogCSV(w, cat.Rows)
			}); err != nil {
				return err
			}
			if err := writeFile(filepath.Join(opts.out, districtCSVFile), func(w io.Writer) error {
				return export.DistrictCSV(w, districts)
			}); err != nil {
				return err
			}
		case formatSQLite:
			if err := export.SQLite(ctx, filepath.Join(opts.out, sqliteFile), cat.Rows, districts); err != nil {
				return fmt.Errorf("export sqlite: %w", err)
			}
		case formatParquet:
			if err := writeFile(filepath.Join(opts.out, catalogParquetFn), func(w io.Writer) error {
				return export.Parquet(w, cat.Rows)
			}); err != nil {
				return err
			}
		}
	}

	r := cat.Report
	a.logger.Info("Reconcile finished",
		zap.String("out", opts.out),
		zap.Strings("formats", opts.formats),
		zap.Int("rows", cat.Len()),
		zap.Int("transactions", r.Transactions),
		zap.Int("matched", r.Matched),
		zap.Int("enriched", r.Enriched),
		zap.Int("below_threshold", r.BelowThreshold),
		zap.Int("no_candidates", r.NoCandidates),
		zap.Int("districts", len(districts)),
	)
	return nil
}

// writeFile creates path and passes it to write, closing it afterwards.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
