package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/aptdex/internal/repository/snapshot"
	"github.com/kailas-cloud/aptdex/internal/repository/source"
	chiTransport "github.com/kailas-cloud/aptdex/internal/transport/chi"
	"github.com/kailas-cloud/aptdex/internal/usecase/catalog"
	facetuc "github.com/kailas-cloud/aptdex/internal/usecase/facet"
	healthuc "github.com/kailas-cloud/aptdex/internal/usecase/health"
	"github.com/kailas-cloud/aptdex/internal/usecase/reconcile"
	"github.com/kailas-cloud/aptdex/internal/version"
)

func createServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	logger := a.logger

	logger.Info("Starting aptdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("metadata", cfg.Sources.MetadataPath),
		zap.String("trades", cfg.Sources.TradesPath),
	)

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	mapper, err := a.mapper()
	if err != nil {
		return err
	}
	rec, err := reconcile.New(cfg.Matching.Threshold)
	if err != nil {
		return fmt.Errorf("create reconciler: %w", err)
	}

	snaps := snapshot.New(store, cfg.Sources.SnapshotPrefix)
	src := source.New(snaps, cfg.Sources.MetadataPath, cfg.Sources.TradesPath)

	var opts []catalog.Option
	if cfg.SeoulAPI.APIKey != "" {
		client, err := a.seoulClient()
		if err != nil {
			return err
		}
		opts = append(opts, catalog.WithRefresh(client, snaps, cfg.Refresh.Password))
	} else {
		logger.Warn("seoul_api.api_key not set, refresh is disabled")
	}
	if cfg.Refresh.Password == "" {
		logger.Warn("refresh.password not set, every refresh will be rejected")
	}
	catalogSvc := catalog.New(src, rec, mapper, opts...)

	// Build the first catalog before taking traffic; empty sources are not fatal.
	if cat, err := catalogSvc.Catalog(ctx); err != nil {
		logger.Warn("Initial catalog build failed", zap.Error(err))
	} else {
		logger.Info("Initial catalog ready", zap.Int("rows", cat.Len()))
	}

	healthSvc := healthuc.New(store, catalogSvc)
	server := chiTransport.NewServer(catalogSvc, facetuc.New(), healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-sigCtx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
