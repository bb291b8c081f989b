package ingest

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/accounts"
)

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func dr(amount string) Line {
	return Line{AccountID: id.New(), TxType: accounts.Debit, Amount: types.MustMoney(amount)}
}

func cr(amount string) Line {
	return Line{AccountID: id.New(), TxType: accounts.Credit, Amount: types.MustMoney(amount)}
}

func correction(enabled bool) Correction {
	return Correction{
		Enabled:   enabled,
		Step:      types.MustMoney("0.01"),
		Tolerance: types.MustMoney("0.02"),
		Rand:      rand.New(rand.NewSource(7)),
	}
}

func TestDiffTxData(t *testing.T) {
	d := DiffTxData([]Line{dr("100.00"), cr("60.00"), cr("40.01")}, types.MustMoney("0.02"))
	assert.True(t, types.MustMoney("100.01").Equal(d.Credits))
	assert.True(t, types.MustMoney("100.00").Equal(d.Debits))
	assert.True(t, types.MustMoney("0.01").Equal(d.Diff))
	assert.False(t, d.Balanced)
	assert.False(t, d.ExceedsTolerance)

	d = DiffTxData([]Line{dr("100"), cr("99")}, types.MustMoney("0.02"))
	assert.True(t, types.MustMoney("-1").Equal(d.Diff))
	assert.True(t, d.ExceedsTolerance)

	d = DiffTxData([]Line{dr("5"), cr("5")}, types.Zero())
	assert.True(t, d.Balanced)
}

func TestReconcileRoundingDrift_Balanced(t *testing.T) {
	lines := []Line{dr("10"), cr("10")}
	ok, err := ReconcileRoundingDrift(lines, correction(false))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReconcileRoundingDrift_DisabledLeavesLines(t *testing.T) {
	lines := []Line{dr("10.00"), cr("10.01")}
	ok, err := ReconcileRoundingDrift(lines, correction(false))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, types.MustMoney("10.01").Equal(lines[1].Amount))
}

func TestReconcileRoundingDrift_CorrectsWithinTolerance(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		lines := []Line{dr("33.33"), dr("33.33"), dr("33.33"), cr("100.00")}
		c := correction(true)
		c.Rand = rand.New(rand.NewSource(seed))

		ok, err := ReconcileRoundingDrift(lines, c)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, DiffTxData(lines, c.Tolerance).Balanced, "seed %d", seed)
	}
}

func TestReconcileRoundingDrift_ClampsLastNudge(t *testing.T) {
	lines := []Line{dr("1.000"), cr("1.015")}
	c := correction(true)
	ok, err := ReconcileRoundingDrift(lines, c)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, DiffTxData(lines, c.Tolerance).Balanced)
}

func TestReconcileRoundingDrift_RejectsLargeDrift(t *testing.T) {
	lines := []Line{dr("10"), cr("11")}
	_, err := ReconcileRoundingDrift(lines, correction(true))
	assert.True(t, apperror.HasCode(err, apperror.CodeNotInBalance))
	assert.True(t, types.MustMoney("11").Equal(lines[1].Amount))
}

func TestCommitRequest_Validate(t *testing.T) {
	assert.Error(t, CommitRequest{}.Validate())

	req := CommitRequest{LedgerID: id.New(), Lines: []Line{dr("1")}}
	assert.True(t, apperror.IsValidation(req.Validate()))

	req.Date = day
	assert.NoError(t, req.Validate())

	req.Lines = []Line{{AccountID: id.New(), TxType: "sideways", Amount: types.MustMoney("1")}}
	assert.True(t, apperror.IsValidation(req.Validate()))

	req.Lines = []Line{dr("-1")}
	assert.True(t, apperror.IsValidation(req.Validate()))
}
