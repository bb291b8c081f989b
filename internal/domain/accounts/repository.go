package accounts

import (
	"context"

	"ledgerio/internal/core/id"
)

// Repository persists charts and accounts.
type Repository interface {
	// CreateChart inserts the chart and all of its accounts.
	CreateChart(ctx context.Context, chart *Chart) error

	// GetChartByEntity loads the entity's chart with its accounts.
	GetChartByEntity(ctx context.Context, entityID id.ID) (*Chart, error)

	GetAccount(ctx context.Context, accountID id.ID) (*Account, error)
	GetAccounts(ctx context.Context, ids []id.ID) ([]*Account, error)
	GetAccountsByCode(ctx context.Context, chartID id.ID, codes []string) ([]*Account, error)
	UpdateAccount(ctx context.Context, a *Account) error
	DeleteAccount(ctx context.Context, accountID id.ID) error

	// HasTransactions reports whether any transaction line references the account.
	HasTransactions(ctx context.Context, accountID id.ID) (bool, error)
}
