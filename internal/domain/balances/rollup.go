package balances

import (
	"fmt"
	"sort"

	"ledgerio/internal/core/id"
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/journal"
	"ledgerio/internal/domain/roles"
)

// Period is a reporting month.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// MarshalText lets periods key JSON objects.
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// RollupOptions adds per-period and per-unit buckets to a rollup.
type RollupOptions struct {
	ByPeriod bool
	ByUnit   bool
}

// Rollup sums flat balances under a classification key.
type Rollup[K comparable] struct {
	Balances map[K]types.Money            `json:"balances"`
	Accounts map[K][]AccountBalance       `json:"accounts"`
	ByPeriod map[Period]map[K]types.Money `json:"byPeriod,omitempty"`
	ByUnit   map[id.ID]map[K]types.Money  `json:"byUnit,omitempty"`
}

// Balance returns the total under k, zero when absent.
func (r *Rollup[K]) Balance(k K) types.Money {
	if r == nil {
		return types.Zero()
	}
	if v, ok := r.Balances[k]; ok {
		return v
	}
	return types.Zero()
}

// PeriodBalance returns the total under k for one period.
func (r *Rollup[K]) PeriodBalance(p Period, k K) types.Money {
	if r == nil || r.ByPeriod == nil {
		return types.Zero()
	}
	return r.ByPeriod[p][k]
}

// UnitBalance returns the total under k for one unit.
func (r *Rollup[K]) UnitBalance(unitID id.ID, k K) types.Money {
	if r == nil || r.ByUnit == nil {
		return types.Zero()
	}
	return r.ByUnit[unitID][k]
}

func newRollup[K comparable](keys []K, opts RollupOptions) *Rollup[K] {
	r := &Rollup[K]{
		Balances: make(map[K]types.Money, len(keys)),
		Accounts: make(map[K][]AccountBalance, len(keys)),
	}
	for _, k := range keys {
		r.Balances[k] = types.Zero()
	}
	if opts.ByPeriod {
		r.ByPeriod = make(map[Period]map[K]types.Money)
	}
	if opts.ByUnit {
		r.ByUnit = make(map[id.ID]map[K]types.Money)
	}
	return r
}

func (r *Rollup[K]) add(k K, b AccountBalance) {
	r.Balances[k] = r.Balance(k).Add(b.Balance)
	r.Accounts[k] = append(r.Accounts[k], b)
	if r.ByPeriod != nil {
		p := b.Period()
		if r.ByPeriod[p] == nil {
			r.ByPeriod[p] = make(map[K]types.Money)
		}
		r.ByPeriod[p][k] = r.ByPeriod[p][k].Add(b.Balance)
	}
	if r.ByUnit != nil {
		u := b.Unit()
		if r.ByUnit[u] == nil {
			r.ByUnit[u] = make(map[K]types.Money)
		}
		r.ByUnit[u][k] = r.ByUnit[u][k].Add(b.Balance)
	}
}

// RollupRoles sums flat balances per role. Every role of the taxonomy is
// present in Balances.
func RollupRoles(flat []AccountBalance, opts RollupOptions) *Rollup[roles.Role] {
	r := newRollup(roles.All(), opts)
	for _, b := range flat {
		r.add(b.Role, b)
	}
	return r
}

// RollupGroups sums flat balances per group; a balance counts in every
// group its role belongs to. Account lists of the balance-sheet sections
// follow the canonical role order.
func RollupGroups(flat []AccountBalance, opts RollupOptions) *Rollup[roles.Group] {
	r := newRollup(roles.Groups(), opts)
	for _, b := range flat {
		for _, g := range roles.RoleGroups(b.Role) {
			r.add(g, b)
		}
	}
	for _, g := range []roles.Group{roles.GroupAssets, roles.GroupLiabilities, roles.GroupCapital} {
		SortByRole(r.Accounts[g])
	}
	return r
}

// RollupActivities sums flat balances per journal entry activity. Entries
// without an activity are skipped.
func RollupActivities(flat []AccountBalance, opts RollupOptions) *Rollup[journal.Activity] {
	r := newRollup(journal.Activities(), opts)
	for _, b := range flat {
		if b.Activity == nil {
			continue
		}
		r.add(*b.Activity, b)
	}
	return r
}

// SortByRole orders balances by canonical role order, then by code.
func SortByRole(bs []AccountBalance) {
	sort.SliceStable(bs, func(i, j int) bool {
		oi, oj := roles.Order(bs[i].Role), roles.Order(bs[j].Role)
		if oi != oj {
			return oi < oj
		}
		return bs[i].Code < bs[j].Code
	})
}

// Total sums the balances of bs.
func Total(bs []AccountBalance) types.Money {
	total := types.Zero()
	for _, b := range bs {
		total = total.Add(b.Balance)
	}
	return total
}
