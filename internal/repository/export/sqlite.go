package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/kailas-cloud/aptdex/internal/domain/apartment"
	"github.com/kailas-cloud/aptdex/internal/usecase/stats"
)

// Table names written by SQLite.
const (
	TableCatalog       = "catalog"
	TableDistrictStats = "district_stats"
)

var districtSQLColumns = []struct {
	name  string
	value func(d *stats.DistrictStats) any
}{
	{"district", func(d *stats.DistrictStats) any { return d.District }},
	{"complexes", func(d *stats.DistrictStats) any { return int64(d.Complexes) }},
	{"avg_construction_year", func(d *stats.DistrictStats) any { return mean(d.ConstructionYear) }},
	{"avg_units", func(d *stats.DistrictStats) any { return mean(d.Units) }},
	{"avg_pyeong_per_unit", func(d *stats.DistrictStats) any { return mean(d.PyeongPerUnit) }},
	{"avg_parking", func(d *stats.DistrictStats) any { return mean(d.Parking) }},
	{"avg_parking_per_unit", func(d *stats.DistrictStats) any { return mean(d.ParkingPerUnit) }},
	{"avg_subway_distance_km", func(d *stats.DistrictStats) any { return mean(d.SubwayDistanceKM) }},
	{"avg_unit_size_pyeong", func(d *stats.DistrictStats) any { return mean(d.UnitSizePyeong) }},
}

func mean(m stats.Metric) any {
	if !m.Available() {
		return nil
	}
	return m.Mean
}

// SQLite replaces the database file at path with a catalog table and a
// district_stats table. Missing values are stored as NULL.
func SQLite(ctx context.Context, path string, rows []apartment.Enriched, districts []stats.DistrictStats) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := writeCatalogTable(ctx, tx, rows); err != nil {
		return err
	}
	if err := writeDistrictTable(ctx, tx, districts); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func writeCatalogTable(ctx context.Context, tx *sql.Tx, rows []apartment.Enriched) error {
	defs := make([]string, 0, len(catalogColumns)+1)
	names := make([]string, 0, len(catalogColumns)+1)
	for _, c := range catalogColumns {
		defs = append(defs, fmt.Sprintf("%q %s", c.sqlName, c.sqlType))
		names = append(names, fmt.Sprintf("%q", c.sqlName))
	}
	defs = append(defs, `"match_score" REAL`)
	names = append(names, `"match_score"`)

	stmt, err := createTable(ctx, tx, TableCatalog, defs, names)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, len(names))
	for i := range rows {
		r := &rows[i]
		for j, c := range catalogColumns {
			args[j] = c.value(r)
		}
		args[len(catalogColumns)] = nil
		if r.Deal != nil {
			args[len(catalogColumns)] = r.Deal.Score
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", TableCatalog, i, err)
		}
	}

	for _, idx := range []string{
		`CREATE INDEX idx_catalog_district ON catalog(district, neighborhood)`,
		`CREATE INDEX idx_catalog_station ON catalog(nearest_station)`,
	} {
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

func writeDistrictTable(ctx context.Context, tx *sql.Tx, districts []stats.DistrictStats) error {
	defs := make([]string, 0, len(districtSQLColumns))
	names := make([]string, 0, len(districtSQLColumns))
	for i, c := range districtSQLColumns {
		typ := "REAL"
		switch i {
		case 0:
			typ = "TEXT PRIMARY KEY"
		case 1:
			typ = "INTEGER"
		}
		defs = append(defs, fmt.Sprintf("%q %s", c.name, typ))
		names = append(names, fmt.Sprintf("%q", c.name))
	}

	stmt, err := createTable(ctx, tx, TableDistrictStats, defs, names)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, len(names))
	for i := range districts {
		for j, c := range districtSQLColumns {
			args[j] = c.value(&districts[i])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", TableDistrictStats, i, err)
		}
	}
	return nil
}

func createTable(ctx context.Context, tx *sql.Tx, table string, defs, names []string) (*sql.Stmt, error) {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %q (%s)", table, strings.Join(defs, ","))); err != nil {
		return nil, fmt.Errorf("create %s: %w", table, err)
	}
	ph := strings.TrimRight(strings.Repeat("?,", len(names)), ",")
	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)", table, strings.Join(names, ","), ph))
	if err != nil {
		return nil, fmt.Errorf("prepare %s insert: %w", table, err)
	}
	return stmt, nil
}
