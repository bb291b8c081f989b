package digest

import (
	"context"
	"testing"
	"time"

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

type fixture struct {
	entityID id.ID
	ledgerID id.ID
	unitID   id.ID
	accounts map[string]id.ID
	lines    SliceSource
}

func newFixture() *fixture {
	return &fixture{
		entityID: id.New(),
		ledgerID: id.New(),
		unitID:   id.New(),
		accounts: make(map[string]id.ID),
	}
}

type acct struct {
	code string
	role roles.Role
	bt   accounts.BalanceType
}

var (
	cash   = acct{"1010", roles.AssetCACash, accounts.Debit}
	stock  = acct{"3010", roles.EquityCommonStock, accounts.Credit}
	sales  = acct{"4010", roles.IncomeOperational, accounts.Credit}
	equip  = acct{"1510", roles.AssetPPEEquipment, accounts.Debit}
	rent   = acct{"6010", roles.ExpenseOperational, accounts.Debit}
	payable = acct{"2010", roles.LiabilityCLAccPayable, accounts.Credit}
)

type entryOpts struct {
	posted   bool
	closing  bool
	unit     bool
	activity journal.Activity
}

func (f *fixture) entry(ts time.Time, o entryOpts, legs ...leg) {
	jeID := id.New()
	var activity *journal.Activity
	if o.activity != "" {
		a := o.activity
		activity = &a
	}
	var unitID *id.ID
	if o.unit {
		unitID = id.Ptr(f.unitID)
	}
	for _, l := range legs {
		accountID, ok := f.accounts[l.a.code]
		if !ok {
			accountID = id.New()
			f.accounts[l.a.code] = accountID
		}
		f.lines = append(f.lines, Line{
			EntityID:       f.entityID,
			LedgerID:       f.ledgerID,
			LedgerPosted:   true,
			JournalEntryID: jeID,
			Posted:         o.posted,
			IsClosingEntry: o.closing,
			UnitID:         unitID,
			UnitName:       "Store",
			Timestamp:      ts,
			Activity:       activity,
			AccountID:      accountID,
			Code:           l.a.code,
			Name:           l.a.code,
			Role:           l.a.role,
			BalanceType:    l.a.bt,
			TxType:         l.tx,
			Amount:         types.MustMoney(l.amount),
		})
	}
}

type leg struct {
	a      acct
	tx     accounts.BalanceType
	amount string
}

func dr(a acct, amount string) leg { return leg{a, accounts.Debit, amount} }
func cr(a acct, amount string) leg { return leg{a, accounts.Credit, amount} }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

// seeded books equity, a cash sale, an equipment purchase and an unposted
// draft in January 2024.
func seeded() *fixture {
	f := newFixture()
	f.entry(day(2024, 1, 1), entryOpts{posted: true, activity: journal.ActivityFinancingEquity},
		dr(cash, "1000"), cr(stock, "1000"))
	f.entry(day(2024, 1, 1), entryOpts{posted: true, unit: true, activity: journal.ActivityOperating},
		dr(cash, "500"), cr(sales, "500"))
	f.entry(day(2024, 1, 15), entryOpts{posted: true, activity: journal.ActivityInvestingPPE},
		dr(equip, "300"), cr(cash, "300"))
	f.entry(day(2024, 1, 20), entryOpts{posted: false, activity: journal.ActivityOperating},
		dr(rent, "999"), cr(cash, "999"))
	return f
}

type countingSource struct {
	Source
	calls int
}

func (c *countingSource) BalanceRows(ctx context.Context, q Query) ([]balances.Row, error) {
	c.calls++
	return c.Source.BalanceRows(ctx, q)
}

func fullRequest(entityID id.ID) Request {
	req := NewRequest(entityID)
	req.ProcessRoles = true
	req.ProcessGroups = true
	req.ProcessRatios = true
	req.ProcessActivity = true
	req.BalanceSheet = true
	req.IncomeStatement = true
	req.CashFlowStatement = true
	return req
}

func TestDigest_Idempotent(t *testing.T) {
	f := seeded()
	svc := NewService(f.lines, nil)
	req := fullRequest(f.entityID)

	first, err := svc.Digest(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Digest(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDigest_NetIncomeForSale(t *testing.T) {
	f := newFixture()
	f.entry(day(2024, 1, 1), entryOpts{posted: true, activity: journal.ActivityOperating},
		dr(cash, "500"), cr(sales, "500"))

	req := NewRequest(f.entityID)
	req.FromDate = ptr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	req.ToDate = ptr(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	req.IncomeStatement = true

	d, err := NewService(f.lines, nil).Digest(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, d.IncomeStatement)
	assert.True(t, types.MustMoney("500").Equal(d.IncomeStatement.NetIncome))
	assert.Nil(t, d.BalanceSheet)
}

func TestDigest_Statements(t *testing.T) {
	f := seeded()
	d, err := NewService(f.lines, nil).Digest(context.Background(), fullRequest(f.entityID))
	require.NoError(t, err)

	bs := d.BalanceSheet
	assert.True(t, types.MustMoney("1500").Equal(bs.Assets.TotalBalance))
	assert.True(t, bs.Assets.TotalBalance.Equal(bs.Liabilities.TotalBalance.Add(bs.Equity.TotalBalance)))

	cashBalance := d.Roles.Balance(roles.AssetCACash)
	assert.True(t, types.MustMoney("1200").Equal(cashBalance))
	assert.True(t, cashBalance.Equal(d.CashFlowStatement.NetCash))

	assert.True(t, types.MustMoney("1000").Equal(d.Activities.Balance(journal.ActivityOperating)))
	require.NotNil(t, d.Ratios)
}

func TestDigest_PostedOnly(t *testing.T) {
	f := seeded()
	svc := NewService(f.lines, nil)

	req := NewRequest(f.entityID)
	req.ProcessRoles = true
	d, err := svc.Digest(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, d.Roles.Balance(roles.ExpenseOperational).IsZero())

	req.PostedOnly = false
	d, err = svc.Digest(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, types.MustMoney("999").Equal(d.Roles.Balance(roles.ExpenseOperational)))
}

func TestDigest_ExcludesClosingEntries(t *testing.T) {
	f := seeded()
	f.entry(day(2024, 1, 31), entryOpts{posted: true, closing: true},
		dr(cash, "1200"), cr(stock, "1200"))

	req := NewRequest(f.entityID)
	req.ProcessRoles = true
	d, err := NewService(f.lines, nil).Digest(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, types.MustMoney("1200").Equal(d.Roles.Balance(roles.AssetCACash)))
}

func TestDigest_DateRange(t *testing.T) {
	f := seeded()
	req := NewRequest(f.entityID)
	req.ProcessRoles = true
	req.FromDate = ptr(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	req.ToDate = ptr(day(2024, 1, 15))

	d, err := NewService(f.lines, nil).Digest(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, d.Accounts)
	assert.True(t, d.Roles.Balance(roles.AssetCACash).IsZero())

	req.ToDate = ptr(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC))
	d, err = NewService(f.lines, nil).Digest(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, types.MustMoney("-300").Equal(d.Roles.Balance(roles.AssetCACash)))
}

func TestDigest_InvalidFiltersFailBeforeQuery(t *testing.T) {
	f := seeded()
	src := &countingSource{Source: f.lines}
	svc := NewService(src, nil)

	req := NewRequest(f.entityID)
	req.Roles = []roles.Role{"asset_ca_gold"}
	_, err := svc.Digest(context.Background(), req)
	assert.True(t, apperror.IsValidation(err))

	req = NewRequest(f.entityID)
	req.Activities = []journal.Activity{"speculating"}
	_, err = svc.Digest(context.Background(), req)
	assert.True(t, apperror.IsValidation(err))

	req = NewRequest(f.entityID)
	req.FromDate = ptr(day(2024, 2, 1))
	req.ToDate = ptr(day(2024, 1, 1))
	_, err = svc.Digest(context.Background(), req)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Digest(context.Background(), NewRequest(id.Nil()))
	assert.True(t, apperror.IsValidation(err))

	assert.Equal(t, 0, src.calls)
}

func TestDigest_EmptyIsZero(t *testing.T) {
	d, err := NewService(SliceSource{}, nil).Digest(context.Background(), fullRequest(id.New()))
	require.NoError(t, err)
	assert.Empty(t, d.Accounts)
	assert.True(t, d.BalanceSheet.Assets.TotalBalance.IsZero())
	assert.True(t, d.IncomeStatement.NetIncome.IsZero())
	assert.True(t, d.CashFlowStatement.NetCash.IsZero())
}

func TestDigest_Filters(t *testing.T) {
	f := seeded()
	svc := NewService(f.lines, nil)

	req := NewRequest(f.entityID)
	req.AccountCodes = []string{"1010"}
	d, err := svc.Digest(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, d.Accounts, 1)
	assert.Equal(t, "1010", d.Accounts[0].Code)

	req = NewRequest(f.entityID)
	req.Activities = []journal.Activity{journal.ActivityFinancingEquity}
	d, err = svc.Digest(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, d.Accounts, 2)

	req = NewRequest(f.entityID)
	req.UnitID = id.Ptr(f.unitID)
	req.ByUnit = true
	d, err = svc.Digest(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, d.Accounts, 2)
	assert.Equal(t, "Store", d.Accounts[0].UnitName)

	req = NewRequest(f.entityID)
	req.EquityOnly = true
	d, err = svc.Digest(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, d.Accounts, 1)
	assert.Equal(t, roles.IncomeOperational, d.Accounts[0].Role)
}

func TestDigest_UnsignedStillReportsSignedStatements(t *testing.T) {
	f := newFixture()
	f.entry(day(2024, 1, 1), entryOpts{posted: true, activity: journal.ActivityOperating},
		dr(cash, "500"), cr(sales, "500"))
	f.entry(day(2024, 1, 2), entryOpts{posted: true},
		dr(rent, "200"), cr(payable, "200"))

	req := NewRequest(f.entityID)
	req.Signs = false
	req.ProcessGroups = true
	req.IncomeStatement = true

	d, err := NewService(f.lines, nil).Digest(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, types.MustMoney("200").Equal(d.Groups.Balance(roles.GroupExpenses)))
	assert.True(t, types.MustMoney("300").Equal(d.IncomeStatement.NetIncome))
}

func TestDigest_ByPeriod(t *testing.T) {
	f := seeded()
	f.entry(day(2024, 2, 3), entryOpts{posted: true, activity: journal.ActivityOperating},
		dr(cash, "70"), cr(sales, "70"))

	req := NewRequest(f.entityID)
	req.ByPeriod = true
	req.ProcessRoles = true
	d, err := NewService(f.lines, nil).Digest(context.Background(), req)
	require.NoError(t, err)

	jan := balances.Period{Year: 2024, Month: 1}
	feb := balances.Period{Year: 2024, Month: 2}
	assert.True(t, types.MustMoney("1200").Equal(d.Roles.PeriodBalance(jan, roles.AssetCACash)))
	assert.True(t, types.MustMoney("70").Equal(d.Roles.PeriodBalance(feb, roles.AssetCACash)))
}

func TestDigest_CashFlowForcesActivityKeying(t *testing.T) {
	req := NewRequest(id.New())
	req.CashFlowStatement = true
	assert.True(t, req.Query().Keying.ByActivity)
	assert.False(t, NewRequest(id.New()).Query().Keying.ByActivity)
}
