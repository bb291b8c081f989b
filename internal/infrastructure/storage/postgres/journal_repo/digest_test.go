package journal_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/balances"
	"ledgerio/internal/domain/digest"
	"ledgerio/internal/domain/journal"
	"ledgerio/internal/domain/roles"
)

func TestBalanceQuery_Plain(t *testing.T) {
	sql, args, err := BalanceQuery(digest.Query{EntityID: id.New()}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM transactions t JOIN journal_entries je ON je.id = t.journal_entry_id")
	assert.Contains(t, sql, "WHERE je.entity_id = $1 AND NOT je.is_closing_entry")
	assert.Contains(t, sql, "SUM(t.amount) AS amount")
	assert.Contains(t, sql, "GROUP BY t.account_id, a.code, a.name, a.role, a.balance_type, t.tx_type ORDER BY")
	assert.NotContains(t, sql, "entity_units")
	assert.NotContains(t, sql, "period_year")
	assert.Len(t, args, 1)
}

func TestBalanceQuery_FiltersAndKeying(t *testing.T) {
	to := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	unit := id.New()
	q := digest.Query{
		EntityID:    id.New(),
		UnitID:      &unit,
		ToDate:      &to,
		Activities:  []journal.Activity{journal.ActivityOperating, journal.ActivityFinancingEquity},
		Roles:       []roles.Role{roles.AssetCACash},
		PostedOnly:  true,
		ExcludeZero: true,
		Keying:      balances.Keying{ByUnit: true, ByActivity: true, ByPeriod: true},
	}

	sql, args, err := BalanceQuery(q).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "LEFT JOIN entity_units u ON u.id = je.entity_unit_id")
	assert.Contains(t, sql, "je.entity_unit_id = $2")
	assert.Contains(t, sql, "je.posted AND l.posted")
	assert.Contains(t, sql, "t.amount <> 0")
	assert.Contains(t, sql, "je.timestamp < $3")
	assert.Contains(t, sql, "je.activity IN ($4,$5)")
	assert.Contains(t, sql, "a.role IN ($6)")
	assert.Contains(t, sql, "je.entity_unit_id, u.name, je.activity, period_year, period_month")
	assert.Len(t, args, 6)
}
