package journal

import (
	"context"
	"time"

	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/ledger"
)

// Repository persists journal entries and their lines. Transaction reads
// join the account so the snapshot fields are populated.
type Repository interface {
	Create(ctx context.Context, je *JournalEntry) error
	Get(ctx context.Context, jeID id.ID) (*JournalEntry, error)
	// GetForUpdate loads the entry with a row lock held until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, jeID id.ID) (*JournalEntry, error)
	Update(ctx context.Context, je *JournalEntry) error
	Delete(ctx context.Context, jeID id.ID) error
	ListByLedger(ctx context.Context, ledgerID id.ID) ([]*JournalEntry, error)
	// DeleteByLedger removes every entry of a ledger with its lines,
	// regardless of state. Used to retract closing entries.
	DeleteByLedger(ctx context.Context, ledgerID id.ID) (int64, error)

	ListTransactions(ctx context.Context, jeID id.ID) ([]Transaction, error)
	GetTransaction(ctx context.Context, txID id.ID) (*Transaction, error)
	CreateTransactions(ctx context.Context, lines []Transaction) error
	UpdateTransaction(ctx context.Context, line *Transaction) error
	DeleteTransaction(ctx context.Context, txID id.ID) error
}

// Ledgers is the read access to ledgers, entities and units the journal
// needs for its gates and numbering. ledger.Repository satisfies it.
type Ledgers interface {
	GetLedger(ctx context.Context, ledgerID id.ID) (*ledger.Ledger, error)
	GetEntity(ctx context.Context, entityID id.ID) (*ledger.Entity, error)
	GetUnit(ctx context.Context, unitID id.ID) (*ledger.Unit, error)
}

// AccountReader resolves the accounts referenced by transaction lines.
type AccountReader interface {
	GetAccounts(ctx context.Context, ids []id.ID) ([]*accounts.Account, error)
}

// ClosingBoundary reports the latest posted closing date of an entity.
// Entries dated on or before it are frozen.
type ClosingBoundary interface {
	LastClosingDate(ctx context.Context, entityID id.ID) (*time.Time, error)
}

// NoBoundary is a ClosingBoundary for entities that never close.
type NoBoundary struct{}

func (NoBoundary) LastClosingDate(context.Context, id.ID) (*time.Time, error) { return nil, nil }
