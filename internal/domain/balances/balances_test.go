package balances

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerio/internal/core/id"
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/journal"
	"ledgerio/internal/domain/roles"
)

var (
	cashID  = id.New()
	salesID = id.New()
	apID    = id.New()
	unitA   = id.New()
	unitB   = id.New()
)

func row(accountID id.ID, code string, role roles.Role, bt, tx accounts.BalanceType, amount string) Row {
	return Row{
		AccountID:   accountID,
		Code:        code,
		Name:        code,
		Role:        role,
		BalanceType: bt,
		TxType:      tx,
		Amount:      types.MustMoney(amount),
	}
}

func TestFlatten_SignNormalization(t *testing.T) {
	rows := []Row{
		row(cashID, "1010", roles.AssetCACash, accounts.Debit, accounts.Debit, "500"),
		row(cashID, "1010", roles.AssetCACash, accounts.Debit, accounts.Credit, "200"),
		row(salesID, "4010", roles.IncomeOperational, accounts.Credit, accounts.Credit, "500"),
	}

	flat := Flatten(rows, Keying{})
	require.Len(t, flat, 2)

	assert.Equal(t, "1010", flat[0].Code)
	assert.True(t, types.MustMoney("300").Equal(flat[0].Balance))
	assert.Equal(t, roles.BSAssets, flat[0].RoleBS)
	assert.True(t, types.MustMoney("500").Equal(flat[1].Balance))
	assert.Empty(t, flat[0].TxType)
}

func TestFlatten_Keying(t *testing.T) {
	op := journal.ActivityOperating
	fin := journal.ActivityFinancingEquity

	r1 := row(cashID, "1010", roles.AssetCACash, accounts.Debit, accounts.Debit, "100")
	r1.UnitID, r1.UnitName, r1.Activity, r1.PeriodYear, r1.PeriodMonth = &unitA, "A", &op, 2024, 1
	r2 := row(cashID, "1010", roles.AssetCACash, accounts.Debit, accounts.Debit, "50")
	r2.UnitID, r2.UnitName, r2.Activity, r2.PeriodYear, r2.PeriodMonth = &unitB, "B", &fin, 2024, 2
	r3 := row(cashID, "1010", roles.AssetCACash, accounts.Debit, accounts.Credit, "30")
	r3.UnitID, r3.UnitName, r3.Activity, r3.PeriodYear, r3.PeriodMonth = &unitA, "A", &op, 2024, 1
	rows := []Row{r1, r2, r3}

	assert.Len(t, Flatten(rows, Keying{}), 1)
	assert.Len(t, Flatten(rows, Keying{ByUnit: true}), 2)
	assert.Len(t, Flatten(rows, Keying{ByActivity: true}), 2)
	assert.Len(t, Flatten(rows, Keying{ByPeriod: true}), 2)
	assert.Len(t, Flatten(rows, Keying{ByTxType: true}), 2)
	assert.Len(t, Flatten(rows, Keying{ByUnit: true, ByTxType: true}), 3)

	byTx := Flatten(rows, Keying{ByTxType: true})
	for _, b := range byTx {
		if b.TxType == accounts.Credit {
			assert.True(t, types.MustMoney("-30").Equal(b.Balance))
			assert.True(t, types.MustMoney("30").Equal(b.BalanceAbs))
		}
	}

	byUnit := Flatten(rows, Keying{ByUnit: true})
	total := Total(byUnit)
	assert.True(t, types.MustMoney("120").Equal(total))
}

func TestFlatten_Deterministic(t *testing.T) {
	rows := []Row{
		row(salesID, "4010", roles.IncomeOperational, accounts.Credit, accounts.Credit, "500"),
		row(cashID, "1010", roles.AssetCACash, accounts.Debit, accounts.Debit, "500"),
	}
	first := Flatten(rows, Keying{})
	second := Flatten([]Row{rows[1], rows[0]}, Keying{})
	assert.Equal(t, first, second)
}

func TestApplySigns(t *testing.T) {
	flat := Flatten([]Row{
		row(id.New(), "1511", roles.AssetPPEEquipmentAccumDepr, accounts.Credit, accounts.Credit, "40"),
		row(id.New(), "3030", roles.EquityDividends, accounts.Debit, accounts.Debit, "10"),
		row(id.New(), "6010", roles.ExpenseOperational, accounts.Debit, accounts.Debit, "25"),
		row(apID, "2010", roles.LiabilityCLAccPayable, accounts.Credit, accounts.Credit, "15"),
	}, Keying{})

	signed := ApplySigns(flat)

	got := make(map[string]types.Money)
	for _, b := range signed {
		got[b.Code] = b.Balance
	}
	assert.True(t, types.MustMoney("-40").Equal(got["1511"]))
	assert.True(t, types.MustMoney("-10").Equal(got["3030"]))
	assert.True(t, types.MustMoney("-25").Equal(got["6010"]))
	assert.True(t, types.MustMoney("15").Equal(got["2010"]))

	// input untouched
	for _, b := range flat {
		assert.True(t, b.Balance.IsPositive())
	}
}

func TestRollupRoles(t *testing.T) {
	r1 := row(cashID, "1010", roles.AssetCACash, accounts.Debit, accounts.Debit, "100")
	r1.UnitID, r1.PeriodYear, r1.PeriodMonth = &unitA, 2024, 1
	r2 := row(cashID, "1010", roles.AssetCACash, accounts.Debit, accounts.Debit, "40")
	r2.UnitID, r2.PeriodYear, r2.PeriodMonth = &unitB, 2024, 3
	flat := Flatten([]Row{r1, r2}, Keying{ByUnit: true, ByPeriod: true})

	rr := RollupRoles(flat, RollupOptions{ByPeriod: true, ByUnit: true})

	assert.Len(t, rr.Balances, len(roles.All()))
	assert.True(t, types.MustMoney("140").Equal(rr.Balance(roles.AssetCACash)))
	assert.True(t, rr.Balance(roles.COGS).IsZero())
	assert.Len(t, rr.Accounts[roles.AssetCACash], 2)
	assert.True(t, types.MustMoney("100").Equal(rr.PeriodBalance(Period{2024, 1}, roles.AssetCACash)))
	assert.True(t, types.MustMoney("40").Equal(rr.UnitBalance(unitB, roles.AssetCACash)))
	assert.True(t, rr.UnitBalance(id.New(), roles.AssetCACash).IsZero())
}

func TestRollupGroups(t *testing.T) {
	flat := ApplySigns(Flatten([]Row{
		row(id.New(), "1510", roles.AssetPPEEquipment, accounts.Debit, accounts.Debit, "300"),
		row(cashID, "1010", roles.AssetCACash, accounts.Debit, accounts.Debit, "200"),
		row(salesID, "4010", roles.IncomeOperational, accounts.Credit, accounts.Credit, "500"),
	}, Keying{}))

	g := RollupGroups(flat, RollupOptions{})

	assert.True(t, types.MustMoney("500").Equal(g.Balance(roles.GroupAssets)))
	assert.True(t, types.MustMoney("200").Equal(g.Balance(roles.GroupCurrentAssets)))
	assert.True(t, types.MustMoney("500").Equal(g.Balance(roles.GroupEarnings)))
	assert.True(t, types.MustMoney("500").Equal(g.Balance(roles.GroupLiabilitiesEquity)))

	assets := g.Accounts[roles.GroupAssets]
	require.Len(t, assets, 2)
	assert.Equal(t, roles.AssetCACash, assets[0].Role)
	assert.Equal(t, roles.AssetPPEEquipment, assets[1].Role)
}

func TestRollupActivities(t *testing.T) {
	op := journal.ActivityOperating
	r1 := row(cashID, "1010", roles.AssetCACash, accounts.Debit, accounts.Debit, "100")
	r1.Activity = &op
	r2 := row(salesID, "4010", roles.IncomeOperational, accounts.Credit, accounts.Credit, "100")
	flat := Flatten([]Row{r1, r2}, Keying{ByActivity: true})

	ra := RollupActivities(flat, RollupOptions{})
	assert.True(t, types.MustMoney("100").Equal(ra.Balance(journal.ActivityOperating)))
	assert.True(t, ra.Balance(journal.ActivityFinancingEquity).IsZero())
	assert.Len(t, ra.Accounts[journal.ActivityOperating], 1)
}

func TestWithoutZero(t *testing.T) {
	flat := Flatten([]Row{
		row(cashID, "1010", roles.AssetCACash, accounts.Debit, accounts.Debit, "100"),
		row(cashID, "1010", roles.AssetCACash, accounts.Debit, accounts.Credit, "100"),
		row(salesID, "4010", roles.IncomeOperational, accounts.Credit, accounts.Credit, "5"),
	}, Keying{})
	require.Len(t, flat, 2)
	assert.Len(t, WithoutZero(flat), 1)
}

func TestPeriod_MarshalText(t *testing.T) {
	b, err := Period{Year: 2024, Month: 3}.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2024-03", string(b))
}
