package ledger

import (
	"context"

	"ledgerio/internal/core/id"
)

// Repository persists entities, units and ledgers.
type Repository interface {
	CreateEntity(ctx context.Context, e *Entity) error
	GetEntity(ctx context.Context, entityID id.ID) (*Entity, error)

	CreateUnit(ctx context.Context, u *Unit) error
	GetUnit(ctx context.Context, unitID id.ID) (*Unit, error)

	CreateLedger(ctx context.Context, l *Ledger) error
	GetLedger(ctx context.Context, ledgerID id.ID) (*Ledger, error)
	// GetLedgerForUpdate loads the ledger with a row lock.
	GetLedgerForUpdate(ctx context.Context, ledgerID id.ID) (*Ledger, error)
	UpdateLedger(ctx context.Context, l *Ledger) error
	DeleteLedger(ctx context.Context, ledgerID id.ID) error
	ListLedgers(ctx context.Context, entityID id.ID, includeHidden bool) ([]*Ledger, error)
}
