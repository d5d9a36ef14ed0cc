package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/aptdex/internal/config"
	"github.com/kailas-cloud/aptdex/internal/db"
	dbMemory "github.com/kailas-cloud/aptdex/internal/db/memory"
	dbValkey "github.com/kailas-cloud/aptdex/internal/db/valkey"
	"github.com/kailas-cloud/aptdex/internal/domain/geo"
	"github.com/kailas-cloud/aptdex/internal/ingest"
	logpkg "github.com/kailas-cloud/aptdex/internal/logger"
	"github.com/kailas-cloud/aptdex/internal/metrics"
	"github.com/kailas-cloud/aptdex/internal/transport/seoulapi"
)

// app carries what every subcommand needs.
type app struct {
	configPath string
	env        string
	cfg        config.Config
	logger     *zap.Logger
	store      db.Store
}

func (a *app) init(cmd *cobra.Command) error {
	a.env = config.GetEnv()

	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load(a.env)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a.logger, err = logpkg.NewLogger(a.env, a.cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	cmd.SetContext(logpkg.ContextWithLogger(cmd.Context(), a.logger))

	metrics.RegisterCatalogMetrics()
	return nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// openStore connects the snapshot store named by database.driver.
func (a *app) openStore(ctx context.Context) (db.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	var store db.Store
	switch a.cfg.Database.Driver {
	case config.DriverMemory:
		store = dbMemory.NewStore()
	case config.DriverValkey:
		vs, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    a.cfg.Database.Addrs,
			Username: a.cfg.Database.Username,
			Password: a.cfg.Database.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create valkey store: %w", err)
		}
		store = vs
	default:
		return nil, fmt.Errorf("unknown database driver %q", a.cfg.Database.Driver)
	}

	timeout := time.Duration(a.cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	a.logger.Info("Connected to database", zap.String("driver", a.cfg.Database.Driver))
	a.store = store
	return store, nil
}

// stations returns the configured station table, or the built-in Seoul table.
func (a *app) stations() (geo.Stations, error) {
	if a.cfg.Sources.StationsPath == "" {
		return geo.SeoulStations, nil
	}
	st, err := geo.LoadStations(a.cfg.Sources.StationsPath)
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}
	return st, nil
}

func (a *app) mapper() (*ingest.Mapper, error) {
	st, err := a.stations()
	if err != nil {
		return nil, err
	}
	return ingest.NewMapper(st, a.logger), nil
}

// seoulClient builds the open-data client. It fails without an API key.
func (a *app) seoulClient() (*seoulapi.Client, error) {
	api := a.cfg.SeoulAPI
	retry := seoulapi.DefaultRetryConfig()
	retry.MaxRetries = api.MaxRetries

	client, err := seoulapi.New(seoulapi.Config{
		BaseURL:    api.BaseURL,
		APIKey:     api.APIKey,
		Service:    api.Service,
		PageSize:   api.PageSize,
		MaxRecords: api.MaxRecords,
		Timeout:    api.Timeout(),
		Retry:      retry,
		Logger:     a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create seoul api client: %w", err)
	}
	return client, nil
}
