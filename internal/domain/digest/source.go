package digest

import (
	"context"
	"time"

	"ledgerio/internal/core/id"
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/balances"
	"ledgerio/internal/domain/journal"
	"ledgerio/internal/domain/roles"
)

// Source returns balance rows aggregated by account and direction, split
// further by the dimensions of q.Keying. Lines of closing entries are
// never returned.
type Source interface {
	BalanceRows(ctx context.Context, q Query) ([]balances.Row, error)
}

// Line is a transaction line with the entry and ledger context the digest
// filters on.
type Line struct {
	EntityID       id.ID
	LedgerID       id.ID
	LedgerPosted   bool
	JournalEntryID id.ID
	Posted         bool
	IsClosingEntry bool
	UnitID         *id.ID
	UnitName       string
	Timestamp      time.Time
	Activity       *journal.Activity

	AccountID   id.ID
	Code        string
	Name        string
	Role        roles.Role
	BalanceType accounts.BalanceType
	TxType      accounts.BalanceType
	Amount      types.Money
}

// SliceSource aggregates in-memory lines.
type SliceSource []Line

type sliceKey struct {
	account  id.ID
	txType   accounts.BalanceType
	unit     id.ID
	activity journal.Activity
	year     int
	month    int
}

// BalanceRows implements Source.
func (s SliceSource) BalanceRows(_ context.Context, q Query) ([]balances.Row, error) {
	index := make(map[sliceKey]int)
	var out []balances.Row

	for _, l := range s {
		if !q.Matches(l) {
			continue
		}
		key := sliceKey{account: l.AccountID, txType: l.TxType}
		row := balances.Row{
			AccountID:   l.AccountID,
			Code:        l.Code,
			Name:        l.Name,
			Role:        l.Role,
			BalanceType: l.BalanceType,
			TxType:      l.TxType,
		}
		if q.Keying.ByUnit && l.UnitID != nil {
			key.unit = *l.UnitID
			row.UnitID = id.Ptr(*l.UnitID)
			row.UnitName = l.UnitName
		}
		if q.Keying.ByActivity && l.Activity != nil {
			key.activity = *l.Activity
			a := *l.Activity
			row.Activity = &a
		}
		if q.Keying.ByPeriod {
			key.year, key.month = l.Timestamp.Year(), int(l.Timestamp.Month())
			row.PeriodYear, row.PeriodMonth = key.year, key.month
		}

		if i, ok := index[key]; ok {
			out[i].Amount = out[i].Amount.Add(l.Amount)
			continue
		}
		row.Amount = l.Amount
		index[key] = len(out)
		out = append(out, row)
	}
	return out, nil
}

// Matches reports whether a line passes the query filters. SQL sources
// implement the same predicate in their WHERE clause.
func (q Query) Matches(l Line) bool {
	if l.IsClosingEntry || l.EntityID != q.EntityID {
		return false
	}
	if q.LedgerID != nil && l.LedgerID != *q.LedgerID {
		return false
	}
	if q.UnitID != nil && !id.Equal(l.UnitID, q.UnitID) {
		return false
	}
	if q.PostedOnly && !(l.Posted && l.LedgerPosted) {
		return false
	}
	if q.ExcludeZero && l.Amount.IsZero() {
		return false
	}
	if q.FromDate != nil && l.Timestamp.Before(*q.FromDate) {
		return false
	}
	if q.ToDate != nil && !l.Timestamp.Before(*q.ToDate) {
		return false
	}
	if len(q.Activities) > 0 && (l.Activity == nil || !containsActivity(q.Activities, *l.Activity)) {
		return false
	}
	if len(q.Roles) > 0 && !containsRole(q.Roles, l.Role) {
		return false
	}
	if len(q.AccountCodes) > 0 && !containsString(q.AccountCodes, l.Code) {
		return false
	}
	return true
}

func containsActivity(as []journal.Activity, a journal.Activity) bool {
	for _, v := range as {
		if v == a {
			return true
		}
	}
	return false
}

func containsRole(rs []roles.Role, r roles.Role) bool {
	for _, v := range rs {
		if v == r {
			return true
		}
	}
	return false
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
