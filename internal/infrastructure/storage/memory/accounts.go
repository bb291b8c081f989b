package memory

import (
	"context"
	"sort"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/accounts"
)

// AccountRepo implements accounts.Repository.
type AccountRepo struct {
	s *Store
}

var _ accounts.Repository = (*AccountRepo)(nil)

func (r *AccountRepo) CreateChart(_ context.Context, chart *accounts.Chart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.charts {
		if c.EntityID == chart.EntityID {
			return apperror.NewDuplicate("chart_of_accounts", "entity_id", chart.EntityID.String())
		}
	}
	stored := *chart
	stored.Accounts = nil
	r.s.charts[chart.ID] = stored
	for _, a := range chart.Accounts {
		r.s.accounts[a.ID] = *a
	}
	return nil
}

func (r *AccountRepo) GetChartByEntity(_ context.Context, entityID id.ID) (*accounts.Chart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.charts {
		if c.EntityID != entityID {
			continue
		}
		chart := c
		for _, a := range r.s.accounts {
			if a.ChartID == chart.ID {
				a := a
				chart.Accounts = append(chart.Accounts, &a)
			}
		}
		sort.Slice(chart.Accounts, func(i, j int) bool { return chart.Accounts[i].Code < chart.Accounts[j].Code })
		return &chart, nil
	}
	return nil, apperror.NewNotFound("chart_of_accounts", entityID)
}

func (r *AccountRepo) GetAccount(_ context.Context, accountID id.ID) (*accounts.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[accountID]
	if !ok {
		return nil, apperror.NewNotFound("account", accountID)
	}
	return &a, nil
}

// GetAccounts returns the accounts that exist; unknown ids are skipped.
func (r *AccountRepo) GetAccounts(_ context.Context, ids []id.ID) ([]*accounts.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seen := make(map[id.ID]bool, len(ids))
	var out []*accounts.Account
	for _, accountID := range ids {
		if seen[accountID] {
			continue
		}
		seen[accountID] = true
		if a, ok := r.s.accounts[accountID]; ok {
			out = append(out, &a)
		}
	}
	return out, nil
}

func (r *AccountRepo) GetAccountsByCode(_ context.Context, chartID id.ID, codes []string) ([]*accounts.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	var out []*accounts.Account
	for _, a := range r.s.accounts {
		if a.ChartID == chartID && want[a.Code] {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *AccountRepo) UpdateAccount(_ context.Context, a *accounts.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[a.ID]; !ok {
		return apperror.NewNotFound("account", a.ID)
	}
	r.s.accounts[a.ID] = *a
	return nil
}

func (r *AccountRepo) DeleteAccount(_ context.Context, accountID id.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.accounts, accountID)
	return nil
}

func (r *AccountRepo) HasTransactions(_ context.Context, accountID id.ID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, l := range r.s.lines {
		if l.AccountID == accountID {
			return true, nil
		}
	}
	return false, nil
}
