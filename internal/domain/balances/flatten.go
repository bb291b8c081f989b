// Package balances turns aggregated transaction rows into signed
// per-account balances and rolls them up by role, group and activity.
//
// Every function here is pure: it returns new values and never mutates its
// input, so each stage can be re-derived from the previous one.
package balances

import (
	"sort"

	"ledgerio/internal/core/id"
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/journal"
	"ledgerio/internal/domain/roles"
)

// Row is one pre-aggregated source row: the sum of line amounts of one
// account and direction, optionally split by unit, month and activity.
type Row struct {
	AccountID   id.ID                `db:"account_id"`
	Code        string               `db:"account_code"`
	Name        string               `db:"account_name"`
	Role        roles.Role           `db:"account_role"`
	BalanceType accounts.BalanceType `db:"balance_type"`
	TxType      accounts.BalanceType `db:"tx_type"`

	UnitID      *id.ID            `db:"unit_id"`
	UnitName    string            `db:"unit_name"`
	Activity    *journal.Activity `db:"activity"`
	PeriodYear  int               `db:"period_year"`
	PeriodMonth int               `db:"period_month"`

	Amount types.Money `db:"amount"`
}

// Keying selects the dimensions that split one account into several
// balances.
type Keying struct {
	ByUnit     bool
	ByPeriod   bool
	ByActivity bool
	ByTxType   bool
}

// AccountBalance is one entry of the flat balance list.
type AccountBalance struct {
	AccountID   id.ID                `json:"accountId"`
	UnitID      *id.ID               `json:"unitId,omitempty"`
	UnitName    string               `json:"unitName,omitempty"`
	Activity    *journal.Activity    `json:"activity,omitempty"`
	PeriodYear  int                  `json:"periodYear,omitempty"`
	PeriodMonth int                  `json:"periodMonth,omitempty"`
	RoleBS      roles.BSRole         `json:"roleBs"`
	Role        roles.Role           `json:"role"`
	Code        string               `json:"code"`
	Name        string               `json:"name"`
	BalanceType accounts.BalanceType `json:"balanceType"`
	TxType      accounts.BalanceType `json:"txType,omitempty"`
	Balance     types.Money          `json:"balance"`
	BalanceAbs  types.Money          `json:"balanceAbs"`
}

// Period returns the reporting month of the balance.
func (b AccountBalance) Period() Period {
	return Period{Year: b.PeriodYear, Month: b.PeriodMonth}
}

// Unit returns the unit id, or the nil id for entries without a unit.
func (b AccountBalance) Unit() id.ID {
	if b.UnitID == nil {
		return id.Nil()
	}
	return *b.UnitID
}

type flatKey struct {
	account  id.ID
	unit     id.ID
	activity journal.Activity
	year     int
	month    int
	txType   accounts.BalanceType
}

// Flatten sign-normalizes rows and merges them into one balance per key.
// A row counts positive when its direction matches the account's natural
// side and negative otherwise. Dimensions not selected by k are summed
// away. The result is sorted by code and then by the key dimensions.
func Flatten(rows []Row, k Keying) []AccountBalance {
	index := make(map[flatKey]int, len(rows))
	var out []AccountBalance

	for _, r := range rows {
		key := flatKey{account: r.AccountID}
		var entry AccountBalance
		entry.AccountID = r.AccountID
		entry.Code = r.Code
		entry.Name = r.Name
		entry.Role = r.Role
		entry.RoleBS = roles.BSRoleOf(r.Role)
		entry.BalanceType = r.BalanceType

		if k.ByUnit && r.UnitID != nil {
			key.unit = *r.UnitID
			entry.UnitID = id.Ptr(*r.UnitID)
			entry.UnitName = r.UnitName
		}
		if k.ByActivity && r.Activity != nil {
			key.activity = *r.Activity
			a := *r.Activity
			entry.Activity = &a
		}
		if k.ByPeriod {
			key.year, key.month = r.PeriodYear, r.PeriodMonth
			entry.PeriodYear, entry.PeriodMonth = r.PeriodYear, r.PeriodMonth
		}
		if k.ByTxType {
			key.txType = r.TxType
			entry.TxType = r.TxType
		}

		amount := r.Amount
		if r.TxType != r.BalanceType {
			amount = amount.Neg()
		}

		if i, ok := index[key]; ok {
			out[i].Balance = out[i].Balance.Add(amount)
			continue
		}
		entry.Balance = amount
		index[key] = len(out)
		out = append(out, entry)
	}

	for i := range out {
		out[i].BalanceAbs = out[i].Balance.Abs()
	}
	sortFlat(out)
	return out
}

func sortFlat(out []AccountBalance) {
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		if ua, ub := a.Unit().String(), b.Unit().String(); ua != ub {
			return ua < ub
		}
		if a.PeriodYear != b.PeriodYear {
			return a.PeriodYear < b.PeriodYear
		}
		if a.PeriodMonth != b.PeriodMonth {
			return a.PeriodMonth < b.PeriodMonth
		}
		if aa, ab := activityOf(a), activityOf(b); aa != ab {
			return aa < ab
		}
		return a.TxType < b.TxType
	})
}

func activityOf(b AccountBalance) journal.Activity {
	if b.Activity == nil {
		return ""
	}
	return *b.Activity
}

// ApplySigns flips balances into "normal is positive" presentation: asset
// accounts with a credit nature and liability or equity accounts with a
// debit nature are negated.
func ApplySigns(flat []AccountBalance) []AccountBalance {
	out := make([]AccountBalance, len(flat))
	copy(out, flat)
	for i := range out {
		if needsFlip(out[i]) {
			out[i].Balance = out[i].Balance.Neg()
		}
	}
	return out
}

func needsFlip(b AccountBalance) bool {
	switch b.RoleBS {
	case roles.BSAssets:
		return b.BalanceType == accounts.Credit
	case roles.BSLiabilities, roles.BSEquity:
		return b.BalanceType == accounts.Debit
	}
	return false
}

// WithoutZero drops entries whose balance is zero.
func WithoutZero(flat []AccountBalance) []AccountBalance {
	out := make([]AccountBalance, 0, len(flat))
	for _, b := range flat {
		if !b.Balance.IsZero() {
			out = append(out, b)
		}
	}
	return out
}
