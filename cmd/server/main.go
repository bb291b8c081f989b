// Package main is the entry point for the ledgerio API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledgerio/internal/app"
	"ledgerio/internal/config"
	"ledgerio/internal/infrastructure/cache"
	v1 "ledgerio/internal/infrastructure/http/v1"
	"ledgerio/pkg/logger"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to ledgerio.yaml (defaults to $LEDGER_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting ledgerio server", "env", cfg.Env, "version", version)

	pg, err := app.OpenPostgres(ctx, cfg, cfg.Server.AutoMigrate)
	if err != nil {
		log.Fatalw("failed to open database", "error", err)
	}
	defer pg.Close()
	log.Info("database connection established")

	svc := app.NewServices(pg.Stores, app.OptionsFrom(cfg))

	charts := cache.NewChartCache(pg.Pool.Pool, svc.Accounts)
	charts.Start(ctx)
	defer charts.Stop()

	routerCfg := v1.RouterConfig{
		Services: v1.Services{
			Ledgers:  svc.Ledgers,
			Accounts: svc.Accounts,
			Journal:  svc.Journal,
			Digest:   svc.Digest,
			Closing:  svc.Closing,
			Ingest:   svc.Ingest,
		},
		Charts:           charts,
		Logger:           log,
		DB:               pg.Pool,
		DigestPostedOnly: cfg.Digest.PostedOnly,
		Version:          version,
		Debug:            !cfg.IsProduction(),
	}
	if cfg.Server.IdempotencyTTL > 0 {
		routerCfg.Idempotency = pg.Idempotency
	}
	router := v1.NewRouter(routerCfg)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}
	log.Info("server stopped")
}
