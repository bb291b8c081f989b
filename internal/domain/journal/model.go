// Package journal implements journal entries, their transaction lines and
// the verify/post/lock state machine.
package journal

import (
	"context"
	"fmt"
	"time"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/entity"
	"ledgerio/internal/core/id"
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/roles"
)

// Transaction is one debit or credit line of a journal entry.
//
// The Account* fields and ChartID are a read-side snapshot of the account
// the line points to; they are filled by the repository (or Describe) and
// are what verification runs on.
type Transaction struct {
	entity.Base

	JournalEntryID id.ID                `db:"journal_entry_id" json:"journalEntryId"`
	AccountID      id.ID                `db:"account_id" json:"accountId"`
	TxType         accounts.BalanceType `db:"tx_type" json:"txType"`
	Amount         types.Money          `db:"amount" json:"amount"`
	Description    string               `db:"description" json:"description,omitempty"`

	AccountCode        string               `db:"account_code" json:"accountCode,omitempty"`
	AccountName        string               `db:"account_name" json:"accountName,omitempty"`
	AccountRole        roles.Role           `db:"account_role" json:"accountRole,omitempty"`
	AccountBalanceType accounts.BalanceType `db:"account_balance_type" json:"accountBalanceType,omitempty"`
	ChartID            id.ID                `db:"chart_id" json:"chartId"`
}

// NewTransaction creates a line for the given entry and account.
func NewTransaction(jeID, accountID id.ID, txType accounts.BalanceType, amount types.Money, desc string) Transaction {
	return Transaction{
		Base:           entity.NewBase(),
		JournalEntryID: jeID,
		AccountID:      accountID,
		TxType:         txType,
		Amount:         amount,
		Description:    desc,
	}
}

// Validate checks the line on its own: a known direction and a
// non-negative amount.
func (t *Transaction) Validate(_ context.Context) error {
	if !t.TxType.IsValid() {
		return apperror.NewValidation(fmt.Sprintf("invalid transaction type %q", t.TxType)).
			WithDetail("account_id", t.AccountID)
	}
	if t.Amount.IsNegative() {
		return apperror.NewValidation("transaction amount must not be negative").
			WithDetail("account_id", t.AccountID).
			WithDetail("amount", t.Amount.String())
	}
	if id.IsNil(t.AccountID) {
		return apperror.NewValidation("transaction must reference an account")
	}
	return nil
}

// IsDebit reports whether the line is on the debit side.
func (t *Transaction) IsDebit() bool { return t.TxType == accounts.Debit }

// SignedAmount is the contribution of the line to its account balance:
// positive when the line is on the account's natural side.
func (t *Transaction) SignedAmount() types.Money {
	if t.TxType == t.AccountBalanceType {
		return t.Amount
	}
	return t.Amount.Neg()
}

// Describe copies the account snapshot onto the line.
func (t *Transaction) Describe(a *accounts.Account) {
	t.AccountCode = a.Code
	t.AccountName = a.Name
	t.AccountRole = a.Role
	t.AccountBalanceType = a.BalanceType
	t.ChartID = a.ChartID
}

// JournalEntry groups balanced transaction lines posted together.
type JournalEntry struct {
	entity.Base

	LedgerID       id.ID     `db:"ledger_id" json:"ledgerId"`
	EntityID       id.ID     `db:"entity_id" json:"entityId"`
	EntityUnitID   *id.ID    `db:"entity_unit_id" json:"entityUnitId,omitempty"`
	Number         string    `db:"je_number" json:"number"`
	Timestamp      time.Time `db:"timestamp" json:"timestamp"`
	Description    string    `db:"description" json:"description,omitempty"`
	Origin         string    `db:"origin" json:"origin,omitempty"`
	Activity       *Activity `db:"activity" json:"activity,omitempty"`
	Posted         bool      `db:"posted" json:"posted"`
	Locked         bool      `db:"locked" json:"locked"`
	IsClosingEntry bool      `db:"is_closing_entry" json:"isClosingEntry"`

	// verified lives only in memory and is recomputed by Verify.
	verified bool
}

// NewJournalEntry creates an unposted, unlocked entry.
func NewJournalEntry(ledgerID, entityID id.ID, unitID *id.ID, ts time.Time, desc string) *JournalEntry {
	return &JournalEntry{
		Base:         entity.NewBase(),
		LedgerID:     ledgerID,
		EntityID:     entityID,
		EntityUnitID: unitID,
		Timestamp:    ts,
		Description:  desc,
	}
}

// Validate implements entity.Validatable.
func (je *JournalEntry) Validate(_ context.Context) error {
	if id.IsNil(je.LedgerID) {
		return apperror.NewValidation("journal entry must belong to a ledger")
	}
	if je.Timestamp.IsZero() {
		return apperror.NewValidation("journal entry timestamp is required")
	}
	if je.Activity != nil {
		if err := ValidateActivity(*je.Activity); err != nil {
			return err
		}
	}
	return nil
}

// IsVerified reports whether Verify succeeded on this instance.
func (je *JournalEntry) IsVerified() bool { return je.verified }

// Unverify drops the verified flag so the next Verify recomputes it.
func (je *JournalEntry) Unverify() { je.verified = false }

// VerifyOptions controls Verify.
type VerifyOptions struct {
	// Force re-verifies an entry that is already verified.
	Force bool
	// RaiseException returns the validation error instead of (false, nil).
	RaiseException bool
}

// Verify checks the lines of the entry and infers its activity. The
// verified flag is set only on success.
func (je *JournalEntry) Verify(lines []Transaction, opts VerifyOptions) (bool, error) {
	if je.verified && !opts.Force {
		return true, nil
	}
	je.verified = false

	if err := je.verify(lines); err != nil {
		if opts.RaiseException {
			return false, err
		}
		return false, nil
	}
	je.verified = true
	return true, nil
}

func (je *JournalEntry) verify(lines []Transaction) error {
	if len(lines) == 0 {
		return apperror.NewJournalEntryInvalid("journal entry has no transactions").
			WithDetail("journal_entry_id", je.ID)
	}
	if len(lines) < 2 {
		return apperror.NewJournalEntryInvalid("at least two transactions required").
			WithDetail("journal_entry_id", je.ID)
	}
	for i := range lines {
		if lines[i].JournalEntryID != je.ID {
			return apperror.NewJournalEntryInvalid("transaction does not belong to journal entry").
				WithDetail("journal_entry_id", je.ID).
				WithDetail("transaction_id", lines[i].ID)
		}
		if err := lines[i].Validate(context.Background()); err != nil {
			return apperror.NewJournalEntryInvalid(err.Error()).WithCause(err)
		}
	}
	if !IsCOAValid(lines) {
		return apperror.NewJournalEntryInvalid("transactions span more than one chart of accounts").
			WithDetail("journal_entry_id", je.ID)
	}
	if !IsBalanceValid(lines) {
		debits, credits := Totals(lines)
		return apperror.NewJournalEntryInvalid("transaction balances are not valid").
			WithDetail("journal_entry_id", je.ID).
			WithDetail("debits", debits.String()).
			WithDetail("credits", credits.String())
	}

	activity, err := InferActivity(lines)
	if err != nil {
		if je.IsClosingEntry {
			// Closing snapshots carry their activity from the source entries.
			return nil
		}
		return err
	}
	if !je.IsClosingEntry {
		je.Activity = activity
	}
	return nil
}

// Totals returns the sums of debit and credit amounts.
func Totals(lines []Transaction) (debits, credits types.Money) {
	debits, credits = types.Zero(), types.Zero()
	for i := range lines {
		if lines[i].IsDebit() {
			debits = debits.Add(lines[i].Amount)
		} else {
			credits = credits.Add(lines[i].Amount)
		}
	}
	return debits, credits
}

// IsBalanceValid reports exact equality of debits and credits.
func IsBalanceValid(lines []Transaction) bool {
	debits, credits := Totals(lines)
	return debits.Equal(credits)
}

// IsCOAValid reports whether all lines use accounts of one chart.
func IsCOAValid(lines []Transaction) bool {
	for i := 1; i < len(lines); i++ {
		if lines[i].ChartID != lines[0].ChartID {
			return false
		}
	}
	return true
}

// IsCashInvolved reports whether any line hits a cash account.
func IsCashInvolved(lines []Transaction) bool {
	for i := range lines {
		if lines[i].AccountRole == roles.AssetCACash {
			return true
		}
	}
	return false
}

// Roles returns the distinct roles touched by lines in first-seen order.
func Roles(lines []Transaction, excludeCash bool) []roles.Role {
	seen := make(map[roles.Role]struct{}, len(lines))
	var out []roles.Role
	for i := range lines {
		r := lines[i].AccountRole
		if excludeCash && r == roles.AssetCACash {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// InferActivity classifies lines by the roles they touch. Entries without
// a cash line, or moving cash between cash accounts only, have no activity.
func InferActivity(lines []Transaction) (*Activity, error) {
	if !IsCashInvolved(lines) {
		return nil, nil
	}
	return activityFromRoles(Roles(lines, true))
}

// Gates carries the outside state the lifecycle checks depend on.
type Gates struct {
	LedgerLocked    bool
	LastClosingDate *time.Time
	Now             time.Time
}

// IsInLockedPeriod reports whether a closing entry covers the entry date.
func (je *JournalEntry) IsInLockedPeriod(lastClosing *time.Time) bool {
	return isDateClosed(je.Timestamp, lastClosing)
}

func isDateClosed(ts time.Time, lastClosing *time.Time) bool {
	if lastClosing == nil {
		return false
	}
	return !dateOf(*lastClosing).Before(dateOf(ts))
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (je *JournalEntry) CanPost(g Gates) bool {
	return !je.Locked &&
		!je.Posted &&
		je.verified &&
		!g.LedgerLocked &&
		!je.IsInLockedPeriod(g.LastClosingDate) &&
		!je.isFuture(g.Now)
}

func (je *JournalEntry) CanUnpost(g Gates) bool {
	return je.Posted &&
		!je.Locked &&
		!g.LedgerLocked &&
		!je.IsInLockedPeriod(g.LastClosingDate)
}

func (je *JournalEntry) CanLock(g Gates) bool {
	return !je.Locked &&
		!g.LedgerLocked &&
		!je.IsInLockedPeriod(g.LastClosingDate)
}

func (je *JournalEntry) CanUnlock(g Gates) bool {
	return je.Locked &&
		!g.LedgerLocked &&
		!je.IsInLockedPeriod(g.LastClosingDate)
}

// CanEdit reports whether transaction lines may be added, changed or removed.
func (je *JournalEntry) CanEdit(g Gates) bool {
	return !je.Posted &&
		!je.Locked &&
		!g.LedgerLocked &&
		!je.IsInLockedPeriod(g.LastClosingDate)
}

func (je *JournalEntry) CanDelete(g Gates) bool {
	return je.CanEdit(g)
}

func (je *JournalEntry) isFuture(now time.Time) bool {
	if now.IsZero() {
		return false
	}
	return je.Timestamp.After(now)
}
