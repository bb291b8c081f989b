package statements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/balances"
	"ledgerio/internal/domain/journal"
	"ledgerio/internal/domain/roles"
)

type book struct {
	accountIDs map[string]id.ID
	rows       []balances.Row
}

func newBook() *book {
	return &book{accountIDs: make(map[string]id.ID)}
}

func (b *book) line(code string, role roles.Role, bt, tx accounts.BalanceType, amount string, activity *journal.Activity) {
	accountID, ok := b.accountIDs[code]
	if !ok {
		accountID = id.New()
		b.accountIDs[code] = accountID
	}
	b.rows = append(b.rows, balances.Row{
		AccountID:   accountID,
		Code:        code,
		Name:        code,
		Role:        role,
		BalanceType: bt,
		TxType:      tx,
		Activity:    activity,
		Amount:      types.MustMoney(amount),
	})
}

func act(a journal.Activity) *journal.Activity { return &a }

func (b *book) digest() ([]balances.AccountBalance, *balances.Rollup[roles.Group]) {
	flat := balances.ApplySigns(balances.Flatten(b.rows, balances.Keying{ByActivity: true}))
	return flat, balances.RollupGroups(flat, balances.RollupOptions{})
}

// startup: owners put in 1000 cash, the business sells for 500 cash and
// buys equipment for 300 cash.
func startup() *book {
	b := newBook()
	fin := act(journal.ActivityFinancingEquity)
	b.line("1010", roles.AssetCACash, accounts.Debit, accounts.Debit, "1000", fin)
	b.line("3010", roles.EquityCommonStock, accounts.Credit, accounts.Credit, "1000", fin)

	op := act(journal.ActivityOperating)
	b.line("1010", roles.AssetCACash, accounts.Debit, accounts.Debit, "500", op)
	b.line("4010", roles.IncomeOperational, accounts.Credit, accounts.Credit, "500", op)

	ppe := act(journal.ActivityInvestingPPE)
	b.line("1510", roles.AssetPPEEquipment, accounts.Debit, accounts.Debit, "300", ppe)
	b.line("1010", roles.AssetCACash, accounts.Debit, accounts.Credit, "300", ppe)
	return b
}

func TestBalanceSheet_Identity(t *testing.T) {
	flat, groups := startup().digest()
	bs := BuildBalanceSheet(flat, groups)

	assert.True(t, types.MustMoney("1500").Equal(bs.Assets.TotalBalance), bs.Assets.TotalBalance.String())
	assert.True(t, bs.Liabilities.TotalBalance.IsZero())
	assert.True(t, types.MustMoney("1500").Equal(bs.Equity.TotalBalance))
	assert.True(t, bs.Assets.TotalBalance.Equal(bs.Liabilities.TotalBalance.Add(bs.Equity.TotalBalance)))
	assert.True(t, bs.LiabilitiesEquityBalance.Equal(bs.Assets.TotalBalance))
	assert.True(t, types.MustMoney("500").Equal(bs.RetainedEarningsBalance))

	require.NotEmpty(t, bs.Assets.Roles)
	assert.Equal(t, roles.AssetCACash, bs.Assets.Roles[0].Role)
	assert.True(t, types.MustMoney("1200").Equal(bs.Assets.Roles[0].TotalBalance))
}

func TestBalanceSheet_ContraAssetIsNegative(t *testing.T) {
	b := newBook()
	b.line("6070", roles.ExpenseDepreciation, accounts.Debit, accounts.Debit, "50", nil)
	b.line("1511", roles.AssetPPEEquipmentAccumDepr, accounts.Credit, accounts.Credit, "50", nil)
	flat, groups := b.digest()

	bs := BuildBalanceSheet(flat, groups)
	assert.True(t, types.MustMoney("-50").Equal(bs.Assets.TotalBalance))
	assert.True(t, types.MustMoney("-50").Equal(bs.Equity.TotalBalance))
}

func TestBalanceSheet_Empty(t *testing.T) {
	bs := BuildBalanceSheet(nil, balances.RollupGroups(nil, balances.RollupOptions{}))
	assert.True(t, bs.Assets.TotalBalance.IsZero())
	assert.True(t, bs.EquityBalance.IsZero())
	assert.Empty(t, bs.Assets.Roles)
}

func TestIncomeStatement(t *testing.T) {
	b := newBook()
	b.line("4010", roles.IncomeOperational, accounts.Credit, accounts.Credit, "1000", nil)
	b.line("1010", roles.AssetCACash, accounts.Debit, accounts.Debit, "1000", nil)
	b.line("5010", roles.COGS, accounts.Debit, accounts.Debit, "400", nil)
	b.line("1200", roles.AssetCAInventory, accounts.Debit, accounts.Credit, "400", nil)
	b.line("6010", roles.ExpenseOperational, accounts.Debit, accounts.Debit, "150", nil)
	b.line("4030", roles.IncomeInterest, accounts.Credit, accounts.Credit, "20", nil)
	b.line("6020", roles.ExpenseInterest, accounts.Debit, accounts.Debit, "70", nil)
	b.line("1010", roles.AssetCACash, accounts.Debit, accounts.Credit, "200", nil)
	_, groups := b.digest()

	is := BuildIncomeStatement(groups)

	assert.True(t, types.MustMoney("1000").Equal(is.Operating.NetOperatingRevenue))
	assert.True(t, types.MustMoney("-400").Equal(is.Operating.NetCOGS))
	assert.True(t, types.MustMoney("600").Equal(is.Operating.GrossProfit))
	assert.True(t, types.MustMoney("450").Equal(is.Operating.NetOperatingIncome))
	assert.True(t, types.MustMoney("-50").Equal(is.Other.NetOtherIncome))
	assert.True(t, types.MustMoney("400").Equal(is.NetIncome))
	assert.Len(t, is.Operating.Revenues, 1)
}

func TestCashFlow_ReconcilesToCash(t *testing.T) {
	flat, groups := startup().digest()

	cfs, err := BuildCashFlowStatement(flat, groups)
	require.NoError(t, err)

	assert.True(t, types.MustMoney("500").Equal(cfs.NetIncome))
	assert.True(t, types.MustMoney("500").Equal(cfs.NetCashByActivity.Operating))
	assert.True(t, types.MustMoney("1000").Equal(cfs.Financing.IssuingEquity))
	assert.True(t, types.MustMoney("1000").Equal(cfs.NetCashByActivity.Financing))
	assert.True(t, types.MustMoney("-300").Equal(cfs.Investing.PPE))
	assert.True(t, types.MustMoney("-300").Equal(cfs.NetCashByActivity.Investing))
	assert.True(t, types.MustMoney("1200").Equal(cfs.NetCash))

	cash := balances.RollupRoles(flat, balances.RollupOptions{}).Balance(roles.AssetCACash)
	assert.True(t, cash.Equal(cfs.NetCash))
}

func TestCashFlow_OperatingAdjustmentSigns(t *testing.T) {
	b := newBook()
	// credit sale, partly collected
	b.line("1100", roles.AssetCAReceivables, accounts.Debit, accounts.Debit, "200", nil)
	b.line("4010", roles.IncomeOperational, accounts.Credit, accounts.Credit, "200", nil)
	op := act(journal.ActivityOperating)
	b.line("1010", roles.AssetCACash, accounts.Debit, accounts.Debit, "150", op)
	b.line("1100", roles.AssetCAReceivables, accounts.Debit, accounts.Credit, "150", op)
	// depreciation
	b.line("6070", roles.ExpenseDepreciation, accounts.Debit, accounts.Debit, "50", nil)
	b.line("1511", roles.AssetPPEEquipmentAccumDepr, accounts.Credit, accounts.Credit, "50", nil)
	// expense on account
	b.line("6010", roles.ExpenseOperational, accounts.Debit, accounts.Debit, "80", nil)
	b.line("2010", roles.LiabilityCLAccPayable, accounts.Credit, accounts.Credit, "80", nil)
	flat, groups := b.digest()

	cfs, err := BuildCashFlowStatement(flat, groups)
	require.NoError(t, err)

	lines := make(map[roles.Group]types.Money)
	for _, l := range cfs.Operating {
		lines[l.Group] = l.Balance
	}
	assert.True(t, types.MustMoney("70").Equal(lines[roles.GroupCFSNetIncome]))
	assert.True(t, types.MustMoney("50").Equal(lines[roles.GroupCFSOpDepreciationAmortization]))
	assert.True(t, types.MustMoney("-50").Equal(lines[roles.GroupCFSOpAccountsReceivable]))
	assert.True(t, types.MustMoney("80").Equal(lines[roles.GroupCFSOpAccountsPayable]))

	assert.True(t, types.MustMoney("150").Equal(cfs.NetCash))
	assert.Equal(t, "Depreciation & Amortization of Assets", cfs.Operating[1].Description)
}

func TestCashFlow_RequiresGroups(t *testing.T) {
	_, err := BuildCashFlowStatement(nil, nil)
	assert.True(t, apperror.IsValidation(err))
}
