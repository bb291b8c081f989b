package memory

import (
	"context"
	"sort"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/ledger"
)

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	s *Store
}

var _ ledger.Repository = (*LedgerRepo)(nil)

func (r *LedgerRepo) CreateEntity(_ context.Context, e *ledger.Entity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.entities {
		if e.Slug != "" && existing.Slug == e.Slug {
			return apperror.NewDuplicate("entity", "slug", e.Slug)
		}
	}
	r.s.entities[e.ID] = *e
	return nil
}

func (r *LedgerRepo) GetEntity(_ context.Context, entityID id.ID) (*ledger.Entity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.entities[entityID]
	if !ok {
		return nil, apperror.NewNotFound("entity", entityID)
	}
	return &e, nil
}

func (r *LedgerRepo) CreateUnit(_ context.Context, u *ledger.Unit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.units[u.ID] = *u
	return nil
}

func (r *LedgerRepo) GetUnit(_ context.Context, unitID id.ID) (*ledger.Unit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.units[unitID]
	if !ok {
		return nil, apperror.NewNotFound("entity_unit", unitID)
	}
	return &u, nil
}

func (r *LedgerRepo) CreateLedger(_ context.Context, l *ledger.Ledger) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.entities[l.EntityID]; !ok {
		return apperror.NewNotFound("entity", l.EntityID)
	}
	r.s.ledgers[l.ID] = *l
	return nil
}

func (r *LedgerRepo) GetLedger(_ context.Context, ledgerID id.ID) (*ledger.Ledger, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.ledgers[ledgerID]
	if !ok {
		return nil, apperror.NewNotFound("ledger", ledgerID)
	}
	return &l, nil
}

func (r *LedgerRepo) GetLedgerForUpdate(ctx context.Context, ledgerID id.ID) (*ledger.Ledger, error) {
	return r.GetLedger(ctx, ledgerID)
}

func (r *LedgerRepo) UpdateLedger(_ context.Context, l *ledger.Ledger) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ledgers[l.ID]; !ok {
		return apperror.NewNotFound("ledger", l.ID)
	}
	r.s.ledgers[l.ID] = *l
	return nil
}

func (r *LedgerRepo) DeleteLedger(_ context.Context, ledgerID id.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.ledgers, ledgerID)
	return nil
}

func (r *LedgerRepo) ListLedgers(_ context.Context, entityID id.ID, includeHidden bool) ([]*ledger.Ledger, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*ledger.Ledger
	for _, l := range r.s.ledgers {
		if l.EntityID != entityID || (l.Hidden && !includeHidden) {
			continue
		}
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
