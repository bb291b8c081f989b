package accounts

import (
	"context"
	"fmt"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/core/tx"
	"ledgerio/pkg/logger"
)

// Service manages charts of accounts.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a chart of accounts service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// SeedDefault creates the entity's chart from DefaultChart.
func (s *Service) SeedDefault(ctx context.Context, entityID id.ID, name string) (*Chart, error) {
	return s.Seed(ctx, entityID, name, DefaultChart())
}

// Seed creates the entity's chart from seeds.
func (s *Service) Seed(ctx context.Context, entityID id.ID, name string, seeds []Seed) (*Chart, error) {
	if existing, err := s.repo.GetChartByEntity(ctx, entityID); err == nil && existing != nil {
		return nil, apperror.NewDuplicate("chart of accounts", "entity", entityID.String())
	} else if err != nil && !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("check existing chart: %w", err)
	}

	chart, err := BuildChart(ctx, entityID, name, seeds)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.CreateChart(ctx, chart)
	})
	if err != nil {
		return nil, fmt.Errorf("create chart: %w", err)
	}

	logger.Info(ctx, "chart of accounts seeded",
		"entity_id", entityID,
		"chart_id", chart.ID,
		"accounts", len(chart.Accounts))
	return chart, nil
}

// GetChart loads the entity's chart.
func (s *Service) GetChart(ctx context.Context, entityID id.ID) (*Chart, error) {
	return s.repo.GetChartByEntity(ctx, entityID)
}

// Deactivate hides an account from new postings.
func (s *Service) Deactivate(ctx context.Context, accountID id.ID) error {
	return s.update(ctx, accountID, (*Account).Deactivate)
}

// Lock freezes an account.
func (s *Service) Lock(ctx context.Context, accountID id.ID) error {
	return s.update(ctx, accountID, (*Account).Lock)
}

// Unlock releases a frozen account.
func (s *Service) Unlock(ctx context.Context, accountID id.ID) error {
	return s.update(ctx, accountID, (*Account).Unlock)
}

// Delete removes an account that has never been used.
func (s *Service) Delete(ctx context.Context, accountID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		acc, err := s.repo.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}
		used, err := s.repo.HasTransactions(ctx, accountID)
		if err != nil {
			return fmt.Errorf("check account usage: %w", err)
		}
		if !acc.CanDelete(used) {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"account has transactions or is a root node, deactivate it instead").
				WithDetail("code", acc.Code)
		}
		return s.repo.DeleteAccount(ctx, accountID)
	})
}

func (s *Service) update(ctx context.Context, accountID id.ID, fn func(*Account)) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		acc, err := s.repo.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}
		fn(acc)
		return s.repo.UpdateAccount(ctx, acc)
	})
}
