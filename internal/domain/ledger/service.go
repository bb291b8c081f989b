package ledger

import (
	"context"
	"fmt"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/core/tx"
	"ledgerio/internal/domain/audit"
	"ledgerio/pkg/logger"
)

const auditLedger = "ledger"

// Service manages entities, units and ledger lifecycle.
type Service struct {
	repo      Repository
	txManager tx.Manager
	audit     audit.Recorder
}

// NewService creates a ledger service.
func NewService(repo Repository, txManager tx.Manager, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{repo: repo, txManager: txManager, audit: recorder}
}

// CreateEntity registers a new entity.
func (s *Service) CreateEntity(ctx context.Context, name, slug string, fyStartMonth int) (*Entity, error) {
	e := NewEntity(name, slug, fyStartMonth)
	if err := e.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.CreateEntity(ctx, e); err != nil {
		return nil, fmt.Errorf("create entity: %w", err)
	}
	logger.Info(ctx, "entity created", "entity_id", e.ID, "slug", e.Slug)
	return e, nil
}

// GetEntity loads an entity.
func (s *Service) GetEntity(ctx context.Context, entityID id.ID) (*Entity, error) {
	return s.repo.GetEntity(ctx, entityID)
}

// CreateUnit adds a unit to an entity.
func (s *Service) CreateUnit(ctx context.Context, entityID id.ID, name, slug, prefix string) (*Unit, error) {
	if _, err := s.repo.GetEntity(ctx, entityID); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apperror.NewValidation("unit name is required")
	}
	u := NewUnit(entityID, name, slug, prefix)
	if err := s.repo.CreateUnit(ctx, u); err != nil {
		return nil, fmt.Errorf("create unit: %w", err)
	}
	logger.Info(ctx, "entity unit created", "entity_id", entityID, "unit_id", u.ID)
	return u, nil
}

// GetUnit loads a unit.
func (s *Service) GetUnit(ctx context.Context, unitID id.ID) (*Unit, error) {
	return s.repo.GetUnit(ctx, unitID)
}

// CreateLedger opens a new ledger for an entity.
func (s *Service) CreateLedger(ctx context.Context, entityID id.ID, name string) (*Ledger, error) {
	l := NewLedger(entityID, name)
	if err := l.Validate(ctx); err != nil {
		return nil, err
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetEntity(ctx, entityID); err != nil {
			return err
		}
		if err := s.repo.CreateLedger(ctx, l); err != nil {
			return fmt.Errorf("create ledger: %w", err)
		}
		return s.audit.Record(ctx, auditLedger, l.ID, audit.ActionCreate, map[string]any{"name": name})
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "ledger created", "ledger_id", l.ID, "entity_id", entityID)
	return l, nil
}

// GetLedger loads a ledger.
func (s *Service) GetLedger(ctx context.Context, ledgerID id.ID) (*Ledger, error) {
	return s.repo.GetLedger(ctx, ledgerID)
}

// Post marks a ledger as posted so its entries count in posted-only digests.
func (s *Service) Post(ctx context.Context, ledgerID id.ID) (*Ledger, error) {
	return s.transition(ctx, ledgerID, audit.ActionPost, (*Ledger).Post)
}

// Unpost removes the ledger from posted-only digests.
func (s *Service) Unpost(ctx context.Context, ledgerID id.ID) (*Ledger, error) {
	return s.transition(ctx, ledgerID, audit.ActionUnpost, (*Ledger).Unpost)
}

// Lock blocks creation and lifecycle changes of the ledger's entries.
func (s *Service) Lock(ctx context.Context, ledgerID id.ID) (*Ledger, error) {
	return s.transition(ctx, ledgerID, audit.ActionLock, (*Ledger).Lock)
}

// Unlock reverses Lock.
func (s *Service) Unlock(ctx context.Context, ledgerID id.ID) (*Ledger, error) {
	return s.transition(ctx, ledgerID, audit.ActionUnlock, (*Ledger).Unlock)
}

func (s *Service) transition(ctx context.Context, ledgerID id.ID, action audit.Action, fn func(*Ledger) error) (*Ledger, error) {
	var out *Ledger
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		l, err := s.repo.GetLedgerForUpdate(ctx, ledgerID)
		if err != nil {
			return err
		}
		if err := fn(l); err != nil {
			return err
		}
		if err := s.repo.UpdateLedger(ctx, l); err != nil {
			return fmt.Errorf("update ledger: %w", err)
		}
		out = l
		return s.audit.Record(ctx, auditLedger, l.ID, action, map[string]any{
			"posted": l.Posted,
			"locked": l.Locked,
		})
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "ledger "+string(action), "ledger_id", ledgerID)
	return out, nil
}
