// Package account_repo provides the PostgreSQL implementation of
// accounts.Repository.
package account_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/infrastructure/storage/postgres"
)

// Repo implements accounts.Repository.
type Repo struct {
	charts   *postgres.Table[accounts.Chart]
	accounts *postgres.Table[accounts.Account]
	batch    *postgres.BatchInserter
}

var _ accounts.Repository = (*Repo)(nil)

// New creates the repository.
func New(txm *postgres.TxManager) *Repo {
	return &Repo{
		charts:   postgres.NewTable[accounts.Chart](txm, "charts"),
		accounts: postgres.NewTable[accounts.Account](txm, "accounts"),
		batch:    postgres.NewBatchInserter(txm),
	}
}

// CreateChart inserts the chart and its accounts in one batch. Parent links
// are checked at commit, so the account order does not matter.
func (r *Repo) CreateChart(ctx context.Context, chart *accounts.Chart) error {
	queries := make([]postgres.BatchQuery, 0, len(chart.Accounts)+1)

	sql, args, err := postgres.Builder().
		Insert(r.charts.Name()).
		SetMap(postgres.StructToMap(chart)).
		ToSql()
	if err != nil {
		return err
	}
	queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})

	for _, a := range chart.Accounts {
		sql, args, err := postgres.Builder().
			Insert(r.accounts.Name()).
			SetMap(postgres.StructToMap(a)).
			ToSql()
		if err != nil {
			return err
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}

	return r.batch.ExecuteBatch(ctx, r.accounts.Name(), queries)
}

func (r *Repo) GetChartByEntity(ctx context.Context, entityID id.ID) (*accounts.Chart, error) {
	chart, err := r.charts.Get(ctx,
		r.charts.Select().Where(squirrel.Eq{"entity_id": entityID}),
		entityID)
	if err != nil {
		return nil, err
	}
	chart.Accounts, err = r.accounts.List(ctx,
		r.accounts.Select().Where(squirrel.Eq{"chart_id": chart.ID}).OrderBy("code"))
	if err != nil {
		return nil, err
	}
	return chart, nil
}

func (r *Repo) GetAccount(ctx context.Context, accountID id.ID) (*accounts.Account, error) {
	return r.accounts.GetByID(ctx, accountID, false)
}

func (r *Repo) GetAccounts(ctx context.Context, ids []id.ID) ([]*accounts.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.accounts.List(ctx, r.accounts.Select().Where(squirrel.Eq{"id": ids}))
}

func (r *Repo) GetAccountsByCode(ctx context.Context, chartID id.ID, codes []string) ([]*accounts.Account, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	return r.accounts.List(ctx, r.accounts.Select().
		Where(squirrel.Eq{"chart_id": chartID, "code": codes}).
		OrderBy("code"))
}

func (r *Repo) UpdateAccount(ctx context.Context, a *accounts.Account) error {
	return r.accounts.Update(ctx, a)
}

func (r *Repo) DeleteAccount(ctx context.Context, accountID id.ID) error {
	return r.accounts.Delete(ctx, accountID)
}

func (r *Repo) HasTransactions(ctx context.Context, accountID id.ID) (bool, error) {
	return r.accounts.Exists(ctx, postgres.Builder().
		Select("1").
		From("transactions").
		Where(squirrel.Eq{"account_id": accountID}))
}
