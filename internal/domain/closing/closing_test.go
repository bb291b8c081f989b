package closing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/closing"
	"ledgerio/internal/domain/digest"
	"ledgerio/internal/domain/journal"
	lt "ledgerio/internal/ledgertest"
)

var jan31 = lt.Day(2024, time.January, 31)

func seed(b *lt.Books) {
	b.Posted(lt.Day(2024, time.January, 1), lt.Dr("1010", "1000"), lt.Cr("3110", "1000"))
	b.Posted(lt.Day(2024, time.January, 5), lt.Dr("1010", "500"), lt.Cr("4010", "500"))
	b.Posted(lt.Day(2024, time.January, 20), lt.Dr("6240", "200"), lt.Cr("1010", "200"))
	// after the closing date
	b.Posted(lt.Day(2024, time.February, 2), lt.Dr("1010", "70"), lt.Cr("4010", "70"))
	// never posted
	b.Draft(lt.Day(2024, time.January, 7), nil, lt.Dr("1010", "999"), lt.Cr("4010", "999"))
}

func lineFor(t *testing.T, lines []closing.Line, code string) closing.Line {
	t.Helper()
	for _, l := range lines {
		if l.AccountCode == code {
			return l
		}
	}
	t.Fatalf("no closing line for %s", code)
	return closing.Line{}
}

func TestClosing_SnapshotLines(t *testing.T) {
	b := lt.New(t)
	seed(b)

	ce, err := b.Closing.Create(context.Background(), b.Entity.ID, jan31)
	require.NoError(t, err)
	assert.False(t, ce.Posted)
	assert.Equal(t, "2024-01-31", ce.String())

	cashLines := 0
	for _, l := range ce.Lines {
		if l.AccountCode == "1010" {
			cashLines++
		}
	}
	assert.Equal(t, 2, cashLines, "cash splits by activity")

	sales := lineFor(t, ce.Lines, "4010")
	assert.Equal(t, accounts.Credit, sales.TxType)
	assert.True(t, types.MustMoney("500").Equal(sales.Balance))

	rent := lineFor(t, ce.Lines, "6240")
	assert.Equal(t, accounts.Debit, rent.TxType)
	assert.True(t, types.MustMoney("200").Equal(rent.Balance))

	debits, credits := closing.Totals(ce.Lines)
	assert.True(t, debits.Equal(credits))

	l, err := b.Ledgers.GetLedger(context.Background(), ce.LedgerID)
	require.NoError(t, err)
	assert.True(t, l.Hidden)
	assert.True(t, l.Posted)
	assert.True(t, l.Locked)
}

func TestClosing_NegativeBalanceFlipsSide(t *testing.T) {
	b := lt.New(t)
	b.Posted(lt.Day(2024, time.January, 3), lt.Dr("6240", "300"), lt.Cr("1010", "300"))

	ce, err := b.Closing.Create(context.Background(), b.Entity.ID, jan31)
	require.NoError(t, err)

	cash := lineFor(t, ce.Lines, "1010")
	assert.Equal(t, accounts.Credit, cash.TxType)
	assert.True(t, types.MustMoney("300").Equal(cash.Balance))
}

func TestClosing_PostAndUnpost(t *testing.T) {
	b := lt.New(t)
	ctx := context.Background()
	seed(b)

	ce, err := b.Closing.Create(ctx, b.Entity.ID, jan31)
	require.NoError(t, err)

	before, err := b.Digest.Digest(ctx, rolesRequest(b))
	require.NoError(t, err)

	ce, err = b.Closing.Post(ctx, ce.ID)
	require.NoError(t, err)
	assert.True(t, ce.Posted)

	entries, err := b.Store.Journal().ListByLedger(ctx, ce.LedgerID)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, je := range entries {
		assert.True(t, je.IsClosingEntry)
		assert.True(t, je.Posted)
		assert.True(t, je.Locked)
		assert.Equal(t, closing.Origin, je.Origin)
		assert.Equal(t, ce.Timestamp(), je.Timestamp)
	}

	last, err := b.Closing.LastClosingDate(ctx, b.Entity.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, closing.DateOf(jan31).Equal(*last))

	after, err := b.Digest.Digest(ctx, rolesRequest(b))
	require.NoError(t, err)
	assert.Equal(t, before.Accounts, after.Accounts, "closing entries never count twice")

	_, err = b.Closing.Post(ctx, ce.ID)
	assert.Error(t, err)
	err = b.Closing.Delete(ctx, ce.ID)
	assert.Error(t, err)

	ce, err = b.Closing.Unpost(ctx, ce.ID)
	require.NoError(t, err)
	assert.False(t, ce.Posted)
	entries, err = b.Store.Journal().ListByLedger(ctx, ce.LedgerID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	last, err = b.Closing.LastClosingDate(ctx, b.Entity.ID)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func rolesRequest(b *lt.Books) digest.Request {
	req := digest.NewRequest(b.Entity.ID)
	req.ProcessRoles = true
	return req
}

func TestClosing_UniquePerDate(t *testing.T) {
	b := lt.New(t)
	ctx := context.Background()

	_, err := b.Closing.Create(ctx, b.Entity.ID, jan31)
	require.NoError(t, err)
	_, err = b.Closing.Create(ctx, b.Entity.ID, jan31.Add(3*time.Hour))
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
}

func TestClosing_RejectsFutureDate(t *testing.T) {
	b := lt.New(t)
	_, err := b.Closing.Create(context.Background(), b.Entity.ID, lt.Now.AddDate(0, 0, 1))
	assert.True(t, apperror.IsValidation(err))
}

func TestClosing_UpdateTransactions(t *testing.T) {
	b := lt.New(t)
	ctx := context.Background()

	ce, err := b.Closing.Create(ctx, b.Entity.ID, jan31)
	require.NoError(t, err)
	assert.Empty(t, ce.Lines)

	b.Posted(lt.Day(2024, time.January, 9), lt.Dr("1010", "40"), lt.Cr("4010", "40"))
	ce, err = b.Closing.UpdateTransactions(ctx, ce.ID)
	require.NoError(t, err)
	assert.Len(t, ce.Lines, 2)

	loaded, err := b.Closing.Get(ctx, ce.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Lines, 2)

	_, err = b.Closing.Post(ctx, ce.ID)
	require.NoError(t, err)
	_, err = b.Closing.UpdateTransactions(ctx, ce.ID)
	assert.Error(t, err)
}

func TestClosing_Delete(t *testing.T) {
	b := lt.New(t)
	ctx := context.Background()

	ce, err := b.Closing.Create(ctx, b.Entity.ID, jan31)
	require.NoError(t, err)
	require.NoError(t, b.Closing.Delete(ctx, ce.ID))

	_, err = b.Closing.Get(ctx, ce.ID)
	assert.True(t, apperror.IsNotFound(err))
	_, err = b.Ledgers.GetLedger(ctx, ce.LedgerID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestClosing_FreezesEarlierEntries(t *testing.T) {
	b := lt.New(t)
	ctx := context.Background()

	draft := b.Draft(lt.Day(2024, time.January, 7), nil, lt.Dr("1010", "10"), lt.Cr("4010", "10"))
	ce, err := b.Closing.Create(ctx, b.Entity.ID, jan31)
	require.NoError(t, err)
	_, err = b.Closing.Post(ctx, ce.ID)
	require.NoError(t, err)

	err = b.Journal.Save(ctx, draft, journal.SaveOptions{Verify: true, PostOnVerify: true})
	assert.True(t, apperror.HasCode(err, apperror.CodeJournalEntryInvalid))
	_, err = b.Journal.AddTransactions(ctx, draft.ID, b.Lines(lt.Dr("1010", "1"), lt.Cr("4010", "1")))
	assert.True(t, apperror.HasCode(err, apperror.CodeJournalEntryLocked))
}

func TestCheckBalanced(t *testing.T) {
	lines := []closing.Line{
		{TxType: accounts.Debit, Balance: types.MustMoney("10")},
		{TxType: accounts.Credit, Balance: types.MustMoney("9")},
	}
	assert.True(t, apperror.HasCode(closing.CheckBalanced(lines), apperror.CodeNotInBalance))

	lines[1].Balance = types.MustMoney("10")
	assert.NoError(t, closing.CheckBalanced(lines))
}
