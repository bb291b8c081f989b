// Package closing snapshots an entity's balances at a closing date and
// materializes them as closing journal entries. The latest posted closing
// date freezes every earlier entry.
package closing

import (
	"context"
	"fmt"
	"time"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/entity"
	"ledgerio/internal/core/id"
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/journal"
)

// Origin tags the journal entries created by a closing entry.
const Origin = "closing_entry"

// ClosingEntry is a balance snapshot of an entity at the end of a day.
type ClosingEntry struct {
	entity.Base

	EntityID    id.ID     `db:"entity_id" json:"entityId"`
	LedgerID    id.ID     `db:"ledger_id" json:"ledgerId"`
	ClosingDate time.Time `db:"closing_date" json:"closingDate"`
	Posted      bool      `db:"posted" json:"posted"`

	Lines []Line `db:"-" json:"lines,omitempty"`
}

// NewClosingEntry creates an unposted closing entry. The date is truncated
// to midnight UTC.
func NewClosingEntry(entityID, ledgerID id.ID, closingDate time.Time) *ClosingEntry {
	return &ClosingEntry{
		Base:        entity.NewBase(),
		EntityID:    entityID,
		LedgerID:    ledgerID,
		ClosingDate: DateOf(closingDate),
	}
}

// DateOf strips the time of day.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Validate implements entity.Validatable.
func (c *ClosingEntry) Validate(_ context.Context) error {
	if id.IsNil(c.EntityID) {
		return apperror.NewValidation("closing entry must belong to an entity")
	}
	if c.ClosingDate.IsZero() {
		return apperror.NewValidation("closing date is required")
	}
	return nil
}

// Timestamp is the last instant of the closing date; closing journal
// entries carry it.
func (c *ClosingEntry) Timestamp() time.Time {
	return c.ClosingDate.Add(24*time.Hour - time.Nanosecond)
}

func (c *ClosingEntry) String() string {
	return c.ClosingDate.Format(time.DateOnly)
}

func (c *ClosingEntry) CanPost() bool   { return !c.Posted }
func (c *ClosingEntry) CanUnpost() bool { return c.Posted }
func (c *ClosingEntry) CanUpdate() bool { return !c.Posted }
func (c *ClosingEntry) CanDelete() bool { return !c.Posted }

// Line is one account balance of the snapshot.
type Line struct {
	ClosingEntryID id.ID                `db:"closing_entry_id" json:"closingEntryId"`
	AccountID      id.ID                `db:"account_id" json:"accountId"`
	AccountCode    string               `db:"account_code" json:"accountCode,omitempty"`
	UnitID         *id.ID               `db:"unit_id" json:"unitId,omitempty"`
	Activity       *journal.Activity    `db:"activity" json:"activity,omitempty"`
	TxType         accounts.BalanceType `db:"tx_type" json:"txType"`
	Balance        types.Money          `db:"balance" json:"balance"`
}

// Normalize turns a negative balance into a positive one on the opposite
// side.
func (l *Line) Normalize() {
	if l.Balance.IsNegative() {
		l.TxType = l.TxType.Opposite()
		l.Balance = l.Balance.Abs()
	}
}

type groupKey struct {
	unit     id.ID
	activity journal.Activity
}

func (l Line) key() groupKey {
	k := groupKey{}
	if l.UnitID != nil {
		k.unit = *l.UnitID
	}
	if l.Activity != nil {
		k.activity = *l.Activity
	}
	return k
}

// Totals sums the snapshot per side.
func Totals(lines []Line) (debits, credits types.Money) {
	debits, credits = types.Zero(), types.Zero()
	for _, l := range lines {
		if l.TxType == accounts.Debit {
			debits = debits.Add(l.Balance)
		} else {
			credits = credits.Add(l.Balance)
		}
	}
	return debits, credits
}

// CheckBalanced fails when the snapshot debits differ from its credits.
func CheckBalanced(lines []Line) error {
	debits, credits := Totals(lines)
	if !debits.Equal(credits) {
		return apperror.NewBusinessRule(apperror.CodeNotInBalance,
			fmt.Sprintf("closing entry credits %s do not equal debits %s", credits, debits)).
			WithDetail("debits", debits.String()).
			WithDetail("credits", credits.String())
	}
	return nil
}
