// Package ledger_repo provides the PostgreSQL implementation of
// ledger.Repository over the entities, entity_units and ledgers tables.
package ledger_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/ledger"
	"ledgerio/internal/infrastructure/storage/postgres"
)

// Repo implements ledger.Repository.
type Repo struct {
	entities *postgres.Table[ledger.Entity]
	units    *postgres.Table[ledger.Unit]
	ledgers  *postgres.Table[ledger.Ledger]
}

var _ ledger.Repository = (*Repo)(nil)

// New creates the repository.
func New(txm *postgres.TxManager) *Repo {
	return &Repo{
		entities: postgres.NewTable[ledger.Entity](txm, "entities"),
		units:    postgres.NewTable[ledger.Unit](txm, "entity_units"),
		ledgers:  postgres.NewTable[ledger.Ledger](txm, "ledgers"),
	}
}

func (r *Repo) CreateEntity(ctx context.Context, e *ledger.Entity) error {
	return r.entities.Insert(ctx, e)
}

func (r *Repo) GetEntity(ctx context.Context, entityID id.ID) (*ledger.Entity, error) {
	return r.entities.GetByID(ctx, entityID, false)
}

func (r *Repo) CreateUnit(ctx context.Context, u *ledger.Unit) error {
	return r.units.Insert(ctx, u)
}

func (r *Repo) GetUnit(ctx context.Context, unitID id.ID) (*ledger.Unit, error) {
	return r.units.GetByID(ctx, unitID, false)
}

func (r *Repo) CreateLedger(ctx context.Context, l *ledger.Ledger) error {
	return r.ledgers.Insert(ctx, l)
}

func (r *Repo) GetLedger(ctx context.Context, ledgerID id.ID) (*ledger.Ledger, error) {
	return r.ledgers.GetByID(ctx, ledgerID, false)
}

func (r *Repo) GetLedgerForUpdate(ctx context.Context, ledgerID id.ID) (*ledger.Ledger, error) {
	return r.ledgers.GetByID(ctx, ledgerID, true)
}

func (r *Repo) UpdateLedger(ctx context.Context, l *ledger.Ledger) error {
	return r.ledgers.Update(ctx, l)
}

func (r *Repo) DeleteLedger(ctx context.Context, ledgerID id.ID) error {
	return r.ledgers.Delete(ctx, ledgerID)
}

func (r *Repo) ListLedgers(ctx context.Context, entityID id.ID, includeHidden bool) ([]*ledger.Ledger, error) {
	q := r.ledgers.Select().
		Where(squirrel.Eq{"entity_id": entityID}).
		OrderBy("created_at", "name")
	if !includeHidden {
		q = q.Where(squirrel.Eq{"hidden": false})
	}
	return r.ledgers.List(ctx, q)
}
