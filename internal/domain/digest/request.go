// Package digest is the read entry point of the ledger: it queries
// aggregated balances for a scope and classifies them into roles, groups,
// activities, ratios and financial statements.
package digest

import (
	"time"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/balances"
	"ledgerio/internal/domain/journal"
	"ledgerio/internal/domain/roles"
)

// Request describes one digest. Use NewRequest for the defaults.
type Request struct {
	EntityID id.ID  `json:"entityId"`
	LedgerID *id.ID `json:"ledgerId,omitempty"`
	UnitID   *id.ID `json:"unitId,omitempty"`

	// FromDate is inclusive, ToDate exclusive.
	FromDate *time.Time `json:"fromDate,omitempty"`
	ToDate   *time.Time `json:"toDate,omitempty"`

	Activities   []journal.Activity `json:"activities,omitempty"`
	Roles        []roles.Role       `json:"roles,omitempty"`
	AccountCodes []string           `json:"accountCodes,omitempty"`

	// PostedOnly counts posted entries of posted ledgers only.
	PostedOnly  bool `json:"postedOnly"`
	ExcludeZero bool `json:"excludeZero"`

	ByPeriod   bool `json:"byPeriod"`
	ByUnit     bool `json:"byUnit"`
	ByActivity bool `json:"byActivity"`
	ByTxType   bool `json:"byTxType"`

	ProcessRoles    bool `json:"processRoles"`
	ProcessGroups   bool `json:"processGroups"`
	ProcessRatios   bool `json:"processRatios"`
	ProcessActivity bool `json:"processActivity"`

	BalanceSheet      bool `json:"balanceSheet"`
	IncomeStatement   bool `json:"incomeStatement"`
	CashFlowStatement bool `json:"cashFlowStatement"`

	// Signs applies the presentation sign flip to the returned balances.
	Signs bool `json:"signs"`
	// EquityOnly restricts the digest to income, cost and expense roles.
	EquityOnly bool `json:"equityOnly"`
}

// NewRequest returns a request for entityID with posted-only, zero
// exclusion and presentation signs enabled.
func NewRequest(entityID id.ID) Request {
	return Request{
		EntityID:    entityID,
		PostedOnly:  true,
		ExcludeZero: true,
		Signs:       true,
	}
}

// Validate rejects bad filters before anything is queried.
func (r Request) Validate() error {
	if id.IsNil(r.EntityID) {
		return apperror.NewValidation("digest requires an entity")
	}
	if err := roles.Validate(r.Roles...); err != nil {
		return err
	}
	for _, a := range r.Activities {
		if err := journal.ValidateActivity(a); err != nil {
			return err
		}
	}
	if r.FromDate != nil && r.ToDate != nil && r.FromDate.After(*r.ToDate) {
		return apperror.NewValidation("from date must not be after to date").
			WithDetail("from_date", r.FromDate.Format(time.DateOnly)).
			WithDetail("to_date", r.ToDate.Format(time.DateOnly))
	}
	return nil
}

func (r Request) needsGroups() bool {
	return r.ProcessGroups || r.ProcessRatios || r.BalanceSheet || r.IncomeStatement || r.CashFlowStatement
}

func (r Request) keying() balances.Keying {
	return balances.Keying{
		ByUnit:     r.ByUnit,
		ByPeriod:   r.ByPeriod,
		ByActivity: r.ByActivity || r.ProcessActivity || r.CashFlowStatement,
		ByTxType:   r.ByTxType,
	}
}

func (r Request) rollupOptions() balances.RollupOptions {
	return balances.RollupOptions{ByPeriod: r.ByPeriod, ByUnit: r.ByUnit}
}

// Query is what a Source filters and groups by.
type Query struct {
	EntityID     id.ID
	LedgerID     *id.ID
	UnitID       *id.ID
	FromDate     *time.Time
	ToDate       *time.Time
	Activities   []journal.Activity
	Roles        []roles.Role
	AccountCodes []string
	PostedOnly   bool
	ExcludeZero  bool
	Keying       balances.Keying
}

// Query derives the source query.
func (r Request) Query() Query {
	rs := r.Roles
	if r.EquityOnly {
		rs = roles.GroupRoles(roles.GroupEarnings)
	}
	return Query{
		EntityID:     r.EntityID,
		LedgerID:     r.LedgerID,
		UnitID:       r.UnitID,
		FromDate:     r.FromDate,
		ToDate:       r.ToDate,
		Activities:   r.Activities,
		Roles:        rs,
		AccountCodes: r.AccountCodes,
		PostedOnly:   r.PostedOnly,
		ExcludeZero:  r.ExcludeZero,
		Keying:       r.keying(),
	}
}
