package dto

import (
	"strings"

	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/digest"
	"ledgerio/internal/domain/journal"
	"ledgerio/internal/domain/roles"
)

// DigestQuery is the query string of GET /entities/:entityID/digest.
// List parameters may be repeated or comma separated.
type DigestQuery struct {
	LedgerID string `form:"ledgerId"`
	UnitID   string `form:"unitId"`
	FromDate string `form:"fromDate"`
	ToDate   string `form:"toDate"`

	Activities   []string `form:"activity"`
	Roles        []string `form:"role"`
	AccountCodes []string `form:"accountCode"`

	// Nil leaves the server default in place.
	PostedOnly  *bool `form:"postedOnly"`
	ExcludeZero *bool `form:"excludeZero"`
	Signs       *bool `form:"signs"`

	ByPeriod   bool `form:"byPeriod"`
	ByUnit     bool `form:"byUnit"`
	ByActivity bool `form:"byActivity"`
	ByTxType   bool `form:"byTxType"`

	ProcessRoles    bool `form:"processRoles"`
	ProcessGroups   bool `form:"processGroups"`
	ProcessRatios   bool `form:"processRatios"`
	ProcessActivity bool `form:"processActivity"`

	BalanceSheet      bool `form:"balanceSheet"`
	IncomeStatement   bool `form:"incomeStatement"`
	CashFlowStatement bool `form:"cashFlowStatement"`
	EquityOnly        bool `form:"equityOnly"`
}

// ToRequest builds the digest request. postedOnly is used when the query
// does not say.
func (q DigestQuery) ToRequest(entityID id.ID, postedOnly bool) (digest.Request, error) {
	req := digest.NewRequest(entityID)
	req.PostedOnly = postedOnly

	var err error
	if req.LedgerID, err = parseOptionalID("ledgerId", q.LedgerID); err != nil {
		return req, err
	}
	if req.UnitID, err = parseOptionalID("unitId", q.UnitID); err != nil {
		return req, err
	}
	if req.FromDate, err = parseOptionalDate("fromDate", q.FromDate); err != nil {
		return req, err
	}
	if req.ToDate, err = parseOptionalDate("toDate", q.ToDate); err != nil {
		return req, err
	}

	for _, a := range splitList(q.Activities) {
		req.Activities = append(req.Activities, journal.Activity(a))
	}
	for _, r := range splitList(q.Roles) {
		req.Roles = append(req.Roles, roles.Role(r))
	}
	req.AccountCodes = splitList(q.AccountCodes)

	if q.PostedOnly != nil {
		req.PostedOnly = *q.PostedOnly
	}
	if q.ExcludeZero != nil {
		req.ExcludeZero = *q.ExcludeZero
	}
	if q.Signs != nil {
		req.Signs = *q.Signs
	}

	req.ByPeriod = q.ByPeriod
	req.ByUnit = q.ByUnit
	req.ByActivity = q.ByActivity
	req.ByTxType = q.ByTxType
	req.ProcessRoles = q.ProcessRoles
	req.ProcessGroups = q.ProcessGroups
	req.ProcessRatios = q.ProcessRatios
	req.ProcessActivity = q.ProcessActivity
	req.BalanceSheet = q.BalanceSheet
	req.IncomeStatement = q.IncomeStatement
	req.CashFlowStatement = q.CashFlowStatement
	req.EquityOnly = q.EquityOnly

	return req, req.Validate()
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
