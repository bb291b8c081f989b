// Package main is the entry point for the ledgerio background worker. It
// expires idempotency keys and reports pool usage.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ledgerio/internal/app"
	"ledgerio/internal/config"
	"ledgerio/internal/infrastructure/storage/postgres"
	"ledgerio/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to ledgerio.yaml (defaults to $LEDGER_CONFIG)")
	cleanupEvery := flag.Duration("cleanup-interval", time.Hour, "how often expired idempotency keys are removed")
	statsEvery := flag.Duration("stats-interval", 5*time.Minute, "how often pool statistics are logged")
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

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Info("starting ledgerio worker")

	pg, err := app.OpenPostgres(ctx, cfg, false)
	if err != nil {
		log.Fatalw("failed to open database", "error", err)
	}
	defer pg.Close()

	w := &Worker{
		pool:         pg.Pool,
		keys:         pg.Idempotency,
		log:          log.WithComponent("worker"),
		cleanupEvery: *cleanupEvery,
		statsEvery:   *statsEvery,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs periodic maintenance against the ledger database.
type Worker struct {
	pool         *postgres.Pool
	keys         *postgres.IdempotencyStore
	log          *logger.Logger
	cleanupEvery time.Duration
	statsEvery   time.Duration
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	cleanupTicker := time.NewTicker(w.cleanupEvery)
	defer cleanupTicker.Stop()
	statsTicker := time.NewTicker(w.statsEvery)
	defer statsTicker.Stop()

	w.cleanupIdempotency(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-cleanupTicker.C:
			w.cleanupIdempotency(ctx)
		case <-statsTicker.C:
			w.pool.LogStats(ctx)
		}
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	n, err := w.keys.CleanupExpired(ctx)
	if err != nil {
		w.log.Errorw("failed to cleanup idempotency keys", "error", err)
		return
	}
	if n > 0 {
		w.log.Infow("cleaned up expired idempotency keys", "count", n)
	}
}
