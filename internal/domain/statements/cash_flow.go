package statements

import (
	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/balances"
	"ledgerio/internal/domain/journal"
	"ledgerio/internal/domain/roles"
)

// CashFlowLine is one adjustment of the operating section.
type CashFlowLine struct {
	Group       roles.Group `json:"group"`
	Description string      `json:"description"`
	Balance     types.Money `json:"balance"`
}

// Financing is the financing section, read from cash movements.
type Financing struct {
	IssuingEquity types.Money `json:"issuingEquity"`
	Dividends     types.Money `json:"dividends"`
	STDebt        types.Money `json:"stDebtPayments"`
	LTDebt        types.Money `json:"ltDebtPayments"`
	Other         types.Money `json:"other"`
}

// Investing is the investing section, read from cash movements.
type Investing struct {
	Securities types.Money `json:"securities"`
	PPE        types.Money `json:"ppe"`
	Other      types.Money `json:"other"`
}

// NetCashByActivity holds the section totals.
type NetCashByActivity struct {
	Operating types.Money `json:"operating"`
	Financing types.Money `json:"financing"`
	Investing types.Money `json:"investing"`
}

// CashFlowStatement reconciles net income to the change in cash.
type CashFlowStatement struct {
	Operating         []CashFlowLine    `json:"operating"`
	Financing         Financing         `json:"financing"`
	Investing         Investing         `json:"investing"`
	NetCashByActivity NetCashByActivity `json:"netCashByActivity"`
	NetCash           types.Money       `json:"netCash"`
	NetIncome         types.Money       `json:"netIncome"`
}

type operatingAdjustment struct {
	group       roles.Group
	description string
	negate      bool
}

// operatingAdjustments is the operating section in presentation order. An
// increase of a current asset consumes cash, so those balances are
// negated, as is the depreciation expense being added back.
var operatingAdjustments = []operatingAdjustment{
	{roles.GroupCFSNetIncome, "Net Income", false},
	{roles.GroupCFSOpDepreciationAmortization, "Depreciation & Amortization of Assets", true},
	{roles.GroupCFSOpInvestmentGains, "Gain/Loss Sale of Assets", false},
	{roles.GroupCFSOpAccountsReceivable, "Accounts Receivable", true},
	{roles.GroupCFSOpInventory, "Inventories", true},
	{roles.GroupCFSOpAccountsPayable, "Accounts Payable", false},
	{roles.GroupCFSOpOtherCurrentAssets, "Other Current Assets", true},
	{roles.GroupCFSOpOtherCurrentLiabilities, "Other Current Liabilities", false},
}

// BuildCashFlowStatement needs the signed flat list keyed by activity and
// the group rollup. The operating section adjusts net income with group
// balances; financing and investing sum cash-account balances by the
// activity of their journal entries.
func BuildCashFlowStatement(flat []balances.AccountBalance, groups *balances.Rollup[roles.Group]) (*CashFlowStatement, error) {
	if groups == nil {
		return nil, apperror.NewValidation("cash flow statement requires group balances")
	}

	cfs := &CashFlowStatement{
		NetIncome: groups.Balance(roles.GroupCFSNetIncome),
	}

	operating := types.Zero()
	for _, adj := range operatingAdjustments {
		v := groups.Balance(adj.group)
		if adj.negate {
			v = v.Neg()
		}
		cfs.Operating = append(cfs.Operating, CashFlowLine{
			Group:       adj.group,
			Description: adj.description,
			Balance:     v,
		})
		operating = operating.Add(v)
	}

	cash := cashByActivity(flat)
	cfs.Financing = Financing{
		IssuingEquity: cash[journal.ActivityFinancingEquity],
		Dividends:     cash[journal.ActivityFinancingDividends],
		STDebt:        cash[journal.ActivityFinancingSTD],
		LTDebt:        cash[journal.ActivityFinancingLTD],
		Other:         cash[journal.ActivityFinancingOther],
	}
	cfs.Investing = Investing{
		Securities: cash[journal.ActivityInvestingSecurities],
		PPE:        cash[journal.ActivityInvestingPPE],
		Other:      cash[journal.ActivityInvestingOther],
	}

	cfs.NetCashByActivity = NetCashByActivity{
		Operating: operating,
		Financing: types.Sum(
			cfs.Financing.IssuingEquity, cfs.Financing.Dividends,
			cfs.Financing.STDebt, cfs.Financing.LTDebt, cfs.Financing.Other,
		),
		Investing: types.Sum(cfs.Investing.Securities, cfs.Investing.PPE, cfs.Investing.Other),
	}
	cfs.NetCash = types.Sum(
		cfs.NetCashByActivity.Operating,
		cfs.NetCashByActivity.Financing,
		cfs.NetCashByActivity.Investing,
	)
	return cfs, nil
}

func cashByActivity(flat []balances.AccountBalance) map[journal.Activity]types.Money {
	out := make(map[journal.Activity]types.Money)
	for _, a := range journal.Activities() {
		out[a] = types.Zero()
	}
	for _, b := range flat {
		if b.Role != roles.AssetCACash || b.Activity == nil {
			continue
		}
		out[*b.Activity] = out[*b.Activity].Add(b.Balance)
	}
	return out
}
