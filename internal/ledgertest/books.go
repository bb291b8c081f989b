// Package ledgertest wires the ledger services over the in-memory store
// for tests.
package ledgertest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ledgerio/internal/app"
	"ledgerio/internal/core/id"
	"ledgerio/internal/core/numerator"
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/audit"
	"ledgerio/internal/domain/closing"
	"ledgerio/internal/domain/digest"
	"ledgerio/internal/domain/ingest"
	"ledgerio/internal/domain/journal"
	"ledgerio/internal/domain/ledger"
	"ledgerio/internal/infrastructure/storage/memory"
)

// Now is the fixed clock of every Books.
var Now = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

// Books is one entity with a posted ledger and the default chart.
type Books struct {
	t testing.TB

	Store     *memory.Store
	Audit     *audit.Memory
	Numerator *numerator.MockGenerator

	Ledgers  *ledger.Service
	Accounts *accounts.Service
	Journal  *journal.Service
	Digest   *digest.Service
	Closing  *closing.Service
	Ingest   *ingest.Service

	Entity *ledger.Entity
	Ledger *ledger.Ledger
	Chart  *accounts.Chart
}

// New creates the books.
func New(t testing.TB) *Books {
	t.Helper()
	ctx := context.Background()
	clock := func() time.Time { return Now }

	b := &Books{
		t:         t,
		Store:     memory.New(),
		Audit:     &audit.Memory{},
		Numerator: &numerator.MockGenerator{},
	}
	stores := app.MemoryStores(b.Store, b.Audit)
	stores.Numerator = b.Numerator
	svc := app.NewServices(stores, app.Options{
		Numbering:   numerator.DefaultConfig(),
		Transaction: ingest.DefaultConfig(),
		Clock:       clock,
		Seed:        42,
	})
	b.Ledgers = svc.Ledgers
	b.Accounts = svc.Accounts
	b.Journal = svc.Journal
	b.Digest = svc.Digest
	b.Closing = svc.Closing
	b.Ingest = svc.Ingest

	var err error
	b.Entity, err = b.Ledgers.CreateEntity(ctx, "Acme", "acme", 1)
	require.NoError(t, err)
	b.Chart, err = b.Accounts.SeedDefault(ctx, b.Entity.ID, "Default")
	require.NoError(t, err)
	b.Ledger, err = b.Ledgers.CreateLedger(ctx, b.Entity.ID, "General")
	require.NoError(t, err)
	b.Ledger, err = b.Ledgers.Post(ctx, b.Ledger.ID)
	require.NoError(t, err)
	return b
}

// Account returns the account with code from the default chart.
func (b *Books) Account(code string) *accounts.Account {
	b.t.Helper()
	a, ok := b.Chart.ByCode(code)
	require.True(b.t, ok, "account %s", code)
	return a
}

// Leg is one side of a test entry.
type Leg struct {
	Code   string
	TxType accounts.BalanceType
	Amount string
}

// Dr debits the account with code.
func Dr(code, amount string) Leg { return Leg{code, accounts.Debit, amount} }

// Cr credits the account with code.
func Cr(code, amount string) Leg { return Leg{code, accounts.Credit, amount} }

// Lines converts legs into transaction lines without an entry.
func (b *Books) Lines(legs ...Leg) []journal.Transaction {
	b.t.Helper()
	out := make([]journal.Transaction, 0, len(legs))
	for _, l := range legs {
		out = append(out, journal.Transaction{
			AccountID: b.Account(l.Code).ID,
			TxType:    l.TxType,
			Amount:    types.MustMoney(l.Amount),
		})
	}
	return out
}

// Draft creates an unposted entry in the books' ledger with the given legs.
func (b *Books) Draft(ts time.Time, unitID *id.ID, legs ...Leg) *journal.JournalEntry {
	b.t.Helper()
	ctx := context.Background()
	je := journal.NewJournalEntry(b.Ledger.ID, b.Entity.ID, unitID, ts, "test entry")
	require.NoError(b.t, b.Journal.Create(ctx, je))
	if len(legs) > 0 {
		_, err := b.Journal.AddTransactions(ctx, je.ID, b.Lines(legs...))
		require.NoError(b.t, err)
	}
	return je
}

// Posted creates an entry, verifies and posts it.
func (b *Books) Posted(ts time.Time, legs ...Leg) *journal.JournalEntry {
	b.t.Helper()
	je := b.Draft(ts, nil, legs...)
	require.NoError(b.t, b.Journal.Save(context.Background(), je, journal.SaveOptions{Verify: true, PostOnVerify: true}))
	return je
}

// Day returns noon UTC of the given date.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}
