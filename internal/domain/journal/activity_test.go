package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/roles"
)

var day = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func line(role roles.Role, tx accounts.BalanceType, amount string) Transaction {
	return Transaction{
		AccountID:   id.New(),
		AccountRole: role,
		TxType:      tx,
		Amount:      types.MustMoney(amount),
	}
}

func TestInferActivity_Partitions(t *testing.T) {
	tests := []struct {
		name string
		role roles.Role
		want Activity
	}{
		{"sales", roles.IncomeOperational, ActivityOperating},
		{"receivables", roles.AssetCAReceivables, ActivityOperating},
		{"payables", roles.LiabilityCLAccPayable, ActivityOperating},
		{"equipment", roles.AssetPPEEquipment, ActivityInvestingPPE},
		{"buildings", roles.AssetPPEBuildings, ActivityInvestingPPE},
		{"marketable securities", roles.AssetCAMktSecurities, ActivityInvestingSecurities},
		{"long term securities", roles.AssetLTISecurities, ActivityInvestingSecurities},
		{"short term notes", roles.LiabilityCLSTNotesPayable, ActivityFinancingSTD},
		{"mortgage", roles.LiabilityLTLMortgagePayable, ActivityFinancingLTD},
		{"bonds", roles.LiabilityLTLBondsPayable, ActivityFinancingLTD},
		{"long term notes", roles.LiabilityLTLNotesPayable, ActivityFinancingLTD},
		{"common stock", roles.EquityCommonStock, ActivityFinancingEquity},
		{"capital", roles.EquityCapital, ActivityFinancingEquity},
		{"dividends", roles.EquityDividends, ActivityFinancingDividends},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InferActivity([]Transaction{
				line(roles.AssetCACash, accounts.Debit, "100"),
				line(tt.role, accounts.Credit, "100"),
			})
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestInferActivity_NoCash(t *testing.T) {
	got, err := InferActivity([]Transaction{
		line(roles.ExpenseOperational, accounts.Debit, "200"),
		line(roles.LiabilityCLAccPayable, accounts.Credit, "200"),
	})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInferActivity_CashOnly(t *testing.T) {
	got, err := InferActivity([]Transaction{
		line(roles.AssetCACash, accounts.Debit, "50"),
		line(roles.AssetCACash, accounts.Credit, "50"),
	})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInferActivity_PurchaseFinancedByMortgage(t *testing.T) {
	got, err := InferActivity([]Transaction{
		line(roles.AssetPPEBuildings, accounts.Debit, "1000"),
		line(roles.AssetCACash, accounts.Credit, "200"),
		line(roles.LiabilityLTLMortgagePayable, accounts.Credit, "800"),
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ActivityInvestingPPE, *got)
}

func TestInferActivity_MixedCategoriesRaise(t *testing.T) {
	_, err := InferActivity([]Transaction{
		line(roles.AssetCACash, accounts.Debit, "1500"),
		line(roles.IncomeOperational, accounts.Credit, "500"),
		line(roles.EquityCommonStock, accounts.Credit, "1000"),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeJournalEntryInvalid))
}

func TestVerify(t *testing.T) {
	newEntry := func() *JournalEntry {
		return NewJournalEntry(id.New(), id.New(), nil, day, "")
	}
	own := func(je *JournalEntry, lines ...Transaction) []Transaction {
		chartID := id.New()
		for i := range lines {
			lines[i].JournalEntryID = je.ID
			lines[i].ChartID = chartID
		}
		return lines
	}

	t.Run("balanced lines verify", func(t *testing.T) {
		je := newEntry()
		ok, err := je.Verify(own(je,
			line(roles.AssetCACash, accounts.Debit, "1000"),
			line(roles.EquityCommonStock, accounts.Credit, "1000"),
		), VerifyOptions{RaiseException: true})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, je.IsVerified())
		require.NotNil(t, je.Activity)
		assert.Equal(t, ActivityFinancingEquity, *je.Activity)
	})

	t.Run("unbalanced lines raise", func(t *testing.T) {
		je := newEntry()
		_, err := je.Verify(own(je,
			line(roles.AssetCACash, accounts.Debit, "500"),
			line(roles.IncomeOperational, accounts.Credit, "400"),
		), VerifyOptions{RaiseException: true})
		assert.True(t, apperror.HasCode(err, apperror.CodeJournalEntryInvalid))
		assert.False(t, je.IsVerified())
	})

	t.Run("unbalanced lines without raise", func(t *testing.T) {
		je := newEntry()
		ok, err := je.Verify(own(je,
			line(roles.AssetCACash, accounts.Debit, "500"),
			line(roles.IncomeOperational, accounts.Credit, "400"),
		), VerifyOptions{})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("single line", func(t *testing.T) {
		je := newEntry()
		_, err := je.Verify(own(je, line(roles.AssetCACash, accounts.Debit, "0")), VerifyOptions{RaiseException: true})
		assert.True(t, apperror.HasCode(err, apperror.CodeJournalEntryInvalid))
	})

	t.Run("foreign line", func(t *testing.T) {
		je := newEntry()
		lines := own(je,
			line(roles.AssetCACash, accounts.Debit, "10"),
			line(roles.IncomeOperational, accounts.Credit, "10"),
		)
		lines[1].JournalEntryID = id.New()
		_, err := je.Verify(lines, VerifyOptions{RaiseException: true})
		assert.True(t, apperror.HasCode(err, apperror.CodeJournalEntryInvalid))
	})

	t.Run("two charts", func(t *testing.T) {
		je := newEntry()
		lines := own(je,
			line(roles.AssetCACash, accounts.Debit, "10"),
			line(roles.IncomeOperational, accounts.Credit, "10"),
		)
		lines[1].ChartID = id.New()
		_, err := je.Verify(lines, VerifyOptions{RaiseException: true})
		assert.True(t, apperror.HasCode(err, apperror.CodeJournalEntryInvalid))
	})

	t.Run("closing entry keeps its activity", func(t *testing.T) {
		je := newEntry()
		je.IsClosingEntry = true
		a := ActivityOperating
		je.Activity = &a
		ok, err := je.Verify(own(je,
			line(roles.AssetCACash, accounts.Debit, "1500"),
			line(roles.IncomeOperational, accounts.Credit, "500"),
			line(roles.EquityCommonStock, accounts.Credit, "1000"),
		), VerifyOptions{RaiseException: true})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, ActivityOperating, *je.Activity)
	})
}

func TestGates(t *testing.T) {
	je := NewJournalEntry(id.New(), id.New(), nil, day, "")
	je.verified = true
	now := day.AddDate(0, 1, 0)

	assert.True(t, je.CanPost(Gates{Now: now}))
	assert.False(t, je.CanPost(Gates{Now: now, LedgerLocked: true}))
	assert.False(t, je.CanPost(Gates{Now: day.AddDate(0, 0, -1)}), "future entries do not post")

	closed := day
	assert.False(t, je.CanPost(Gates{Now: now, LastClosingDate: &closed}), "closing on the entry date freezes it")
	before := day.AddDate(0, 0, -1)
	assert.True(t, je.CanPost(Gates{Now: now, LastClosingDate: &before}))

	je.Posted = true
	assert.False(t, je.CanEdit(Gates{}))
	assert.True(t, je.CanUnpost(Gates{}))
	je.Locked = true
	assert.False(t, je.CanUnpost(Gates{}))
	assert.True(t, je.CanUnlock(Gates{}))
	assert.False(t, je.CanLock(Gates{}))
}
