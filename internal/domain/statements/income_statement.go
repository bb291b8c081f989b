package statements

import (
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/balances"
	"ledgerio/internal/domain/roles"
)

// OperatingIncome is the operating part of the income statement.
type OperatingIncome struct {
	Revenues []balances.AccountBalance `json:"revenues"`
	COGS     []balances.AccountBalance `json:"cogs"`
	Expenses []balances.AccountBalance `json:"expenses"`

	NetOperatingRevenue  types.Money `json:"netOperatingRevenue"`
	NetCOGS              types.Money `json:"netCogs"`
	GrossProfit          types.Money `json:"grossProfit"`
	NetOperatingExpenses types.Money `json:"netOperatingExpenses"`
	NetOperatingIncome   types.Money `json:"netOperatingIncome"`
}

// OtherIncome covers non-operating revenues and expenses.
type OtherIncome struct {
	Revenues []balances.AccountBalance `json:"revenues"`
	Expenses []balances.AccountBalance `json:"expenses"`

	NetOtherRevenues types.Money `json:"netOtherRevenues"`
	NetOtherExpenses types.Money `json:"netOtherExpenses"`
	NetOtherIncome   types.Money `json:"netOtherIncome"`
}

// IncomeStatement is the profit and loss statement. Balances are signed:
// revenues positive, costs and expenses negative, so every total is a
// plain sum.
type IncomeStatement struct {
	Operating OperatingIncome `json:"operating"`
	Other     OtherIncome     `json:"other"`
	NetIncome types.Money     `json:"netIncome"`
}

// BuildIncomeStatement reads the income statement groups.
func BuildIncomeStatement(groups *balances.Rollup[roles.Group]) *IncomeStatement {
	accounts := func(g roles.Group) []balances.AccountBalance {
		if groups == nil {
			return nil
		}
		return groups.Accounts[g]
	}

	rev := groups.Balance(roles.GroupICOperatingRevenues)
	cogs := groups.Balance(roles.GroupICOperatingCOGS)
	exp := groups.Balance(roles.GroupICOperatingExpenses)
	otherRev := groups.Balance(roles.GroupICOtherRevenues)
	otherExp := groups.Balance(roles.GroupICOtherExpenses)

	op := OperatingIncome{
		Revenues:             accounts(roles.GroupICOperatingRevenues),
		COGS:                 accounts(roles.GroupICOperatingCOGS),
		Expenses:             accounts(roles.GroupICOperatingExpenses),
		NetOperatingRevenue:  rev,
		NetCOGS:              cogs,
		GrossProfit:          rev.Add(cogs),
		NetOperatingExpenses: exp,
		NetOperatingIncome:   types.Sum(rev, cogs, exp),
	}
	other := OtherIncome{
		Revenues:         accounts(roles.GroupICOtherRevenues),
		Expenses:         accounts(roles.GroupICOtherExpenses),
		NetOtherRevenues: otherRev,
		NetOtherExpenses: otherExp,
		NetOtherIncome:   otherRev.Add(otherExp),
	}
	return &IncomeStatement{
		Operating: op,
		Other:     other,
		NetIncome: op.NetOperatingIncome.Add(other.NetOtherIncome),
	}
}
