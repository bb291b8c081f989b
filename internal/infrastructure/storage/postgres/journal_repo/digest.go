package journal_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ledgerio/internal/domain/balances"
	"ledgerio/internal/domain/digest"
	"ledgerio/internal/infrastructure/storage/postgres"
)

// DigestSource aggregates transaction lines in SQL. Its WHERE clause is the
// SQL form of digest.Query.Matches.
type DigestSource struct {
	txm *postgres.TxManager
}

var _ digest.Source = (*DigestSource)(nil)

// NewDigestSource creates the source.
func NewDigestSource(txm *postgres.TxManager) *DigestSource {
	return &DigestSource{txm: txm}
}

// BalanceRows implements digest.Source.
func (s *DigestSource) BalanceRows(ctx context.Context, q digest.Query) ([]balances.Row, error) {
	sql, args, err := BalanceQuery(q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build balance query: %w", err)
	}
	var rows []balances.Row
	if err := pgxscan.Select(ctx, s.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("query balances: %w", err)
	}
	return rows, nil
}

// BalanceQuery builds the aggregate over transactions for q.
func BalanceQuery(q digest.Query) squirrel.SelectBuilder {
	cols := []string{
		"t.account_id",
		"a.code AS account_code",
		"a.name AS account_name",
		"a.role AS account_role",
		"a.balance_type",
		"t.tx_type",
	}
	group := []string{"t.account_id", "a.code", "a.name", "a.role", "a.balance_type", "t.tx_type"}

	if q.Keying.ByUnit {
		cols = append(cols, "je.entity_unit_id AS unit_id", "COALESCE(u.name, '') AS unit_name")
		group = append(group, "je.entity_unit_id", "u.name")
	}
	if q.Keying.ByActivity {
		cols = append(cols, "je.activity")
		group = append(group, "je.activity")
	}
	if q.Keying.ByPeriod {
		cols = append(cols,
			"EXTRACT(YEAR FROM je.timestamp)::int AS period_year",
			"EXTRACT(MONTH FROM je.timestamp)::int AS period_month")
		group = append(group, "period_year", "period_month")
	}
	cols = append(cols, "SUM(t.amount) AS amount")

	sb := postgres.Builder().
		Select(cols...).
		From(linesTable + " t").
		Join(entriesTable + " je ON je.id = t.journal_entry_id").
		Join("ledgers l ON l.id = je.ledger_id").
		Join("accounts a ON a.id = t.account_id").
		Where(squirrel.Eq{"je.entity_id": q.EntityID}).
		Where("NOT je.is_closing_entry")

	if q.Keying.ByUnit {
		sb = sb.LeftJoin("entity_units u ON u.id = je.entity_unit_id")
	}
	if q.LedgerID != nil {
		sb = sb.Where(squirrel.Eq{"je.ledger_id": *q.LedgerID})
	}
	if q.UnitID != nil {
		sb = sb.Where(squirrel.Eq{"je.entity_unit_id": *q.UnitID})
	}
	if q.PostedOnly {
		sb = sb.Where("je.posted AND l.posted")
	}
	if q.ExcludeZero {
		sb = sb.Where("t.amount <> 0")
	}
	if q.FromDate != nil {
		sb = sb.Where(squirrel.GtOrEq{"je.timestamp": *q.FromDate})
	}
	if q.ToDate != nil {
		sb = sb.Where(squirrel.Lt{"je.timestamp": *q.ToDate})
	}
	if len(q.Activities) > 0 {
		sb = sb.Where(squirrel.Eq{"je.activity": q.Activities})
	}
	if len(q.Roles) > 0 {
		sb = sb.Where(squirrel.Eq{"a.role": q.Roles})
	}
	if len(q.AccountCodes) > 0 {
		sb = sb.Where(squirrel.Eq{"a.code": q.AccountCodes})
	}

	return sb.GroupBy(group...).OrderBy("a.code", "t.tx_type")
}
