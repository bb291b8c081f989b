// Package app wires the ledger services over a storage backend. The
// binaries build their Services here so the HTTP server, the worker and
// ledgerctl share one composition.
package app

import (
	"context"
	"fmt"
	"time"

	"ledgerio/internal/config"
	"ledgerio/internal/core/numerator"
	"ledgerio/internal/core/tx"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/audit"
	"ledgerio/internal/domain/closing"
	"ledgerio/internal/domain/digest"
	"ledgerio/internal/domain/ingest"
	"ledgerio/internal/domain/journal"
	"ledgerio/internal/domain/ledger"
	pgnumerator "ledgerio/internal/infrastructure/numerator"
	"ledgerio/internal/infrastructure/storage/memory"
	"ledgerio/internal/infrastructure/storage/postgres"
	"ledgerio/internal/infrastructure/storage/postgres/account_repo"
	"ledgerio/internal/infrastructure/storage/postgres/closing_repo"
	"ledgerio/internal/infrastructure/storage/postgres/journal_repo"
	"ledgerio/internal/infrastructure/storage/postgres/ledger_repo"
	"ledgerio/pkg/logger"
)

// Stores are the storage ports the services run on.
type Stores struct {
	Ledgers   ledger.Repository
	Accounts  accounts.Repository
	Journal   journal.Repository
	Source    digest.Source
	Closing   closing.Repository
	Numerator numerator.Generator
	TxManager tx.ReadOnlyManager
	Audit     audit.Recorder
}

// Services are the wired ledger services.
type Services struct {
	Ledgers  *ledger.Service
	Accounts *accounts.Service
	Journal  *journal.Service
	Digest   *digest.Service
	Closing  *closing.Service
	Ingest   *ingest.Service
}

// Options tune NewServices.
type Options struct {
	Numbering   numerator.Config
	Transaction ingest.Config
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Seed fixes the rounding drift correction source.
	Seed int64
}

// OptionsFrom takes the service options from cfg.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		Numbering:   cfg.Journal,
		Transaction: cfg.Transaction,
	}
}

// NewServices wires the services over st. The closing service is the
// closing boundary of both the journal and the commit path.
func NewServices(st Stores, opts Options) *Services {
	s := &Services{}
	s.Ledgers = ledger.NewService(st.Ledgers, st.TxManager, st.Audit)
	s.Accounts = accounts.NewService(st.Accounts, st.TxManager)
	s.Journal = journal.NewService(journal.ServiceConfig{
		Repo:      st.Journal,
		Ledgers:   st.Ledgers,
		Accounts:  st.Accounts,
		Numerator: st.Numerator,
		Numbering: opts.Numbering,
		TxManager: st.TxManager,
		Audit:     st.Audit,
		Clock:     opts.Clock,
	})
	s.Digest = digest.NewService(st.Source, st.TxManager)
	s.Closing = closing.NewService(closing.ServiceConfig{
		Repo:      st.Closing,
		Ledgers:   st.Ledgers,
		Journal:   st.Journal,
		Digester:  s.Digest,
		TxManager: st.TxManager,
		Audit:     st.Audit,
		Clock:     opts.Clock,
	})
	s.Journal.SetBoundary(s.Closing)
	s.Ingest = ingest.NewService(ingest.ServiceConfig{
		Journal:   s.Journal,
		Ledgers:   st.Ledgers,
		Boundary:  s.Closing,
		TxManager: st.TxManager,
		Config:    opts.Transaction,
		Seed:      opts.Seed,
	})
	return s
}

// MemoryStores serves the services from an in-process store.
func MemoryStores(store *memory.Store, recorder audit.Recorder) Stores {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	var joined []memory.Savepoint
	if sp, ok := recorder.(memory.Savepoint); ok {
		joined = append(joined, sp)
	}
	return Stores{
		Ledgers:   store.Ledgers(),
		Accounts:  store.Accounts(),
		Journal:   store.Journal(),
		Source:    store.Journal(),
		Closing:   store.Closing(),
		Numerator: &numerator.MockGenerator{},
		TxManager: memory.NewTxManager(store, joined...),
		Audit:     recorder,
	}
}

// Postgres is an open database backend.
type Postgres struct {
	Pool        *postgres.Pool
	TxManager   *postgres.TxManager
	Audit       *postgres.AuditRecorder
	Idempotency *postgres.IdempotencyStore
	Stores      Stores
}

// OpenPostgres connects to the database in cfg, migrates the schema when
// migrate is set and builds the repositories.
func OpenPostgres(ctx context.Context, cfg *config.Config, migrate bool) (*Postgres, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info(ctx, "database schema applied")
	}

	txm := postgres.NewTxManager(pool)
	recorder, err := postgres.NewAuditRecorder(txm)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create audit recorder: %w", err)
	}

	return &Postgres{
		Pool:        pool,
		TxManager:   txm,
		Audit:       recorder,
		Idempotency: postgres.NewIdempotencyStore(txm, cfg.Server.IdempotencyTTL),
		Stores: Stores{
			Ledgers:  ledger_repo.New(txm),
			Accounts: account_repo.New(txm),
			Journal:  journal_repo.New(txm),
			Source:   journal_repo.NewDigestSource(txm),
			Closing:  closing_repo.New(txm),
			Numerator: pgnumerator.NewWithResolver(func(ctx context.Context) pgnumerator.Querier {
				return txm.GetQuerier(ctx)
			}),
			TxManager: txm,
			Audit:     recorder,
		},
	}, nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.Pool.Close()
}
