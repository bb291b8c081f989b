// Package ratios derives financial ratios from group balances.
package ratios

import (
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/roles"
)

// GroupBalances exposes the total of a group. *balances.Rollup[roles.Group]
// satisfies it.
type GroupBalances interface {
	Balance(g roles.Group) types.Money
}

// Solvency ratios.
type Solvency struct {
	Current types.Money `json:"currentRatio"`
	Quick   types.Money `json:"quickRatio"`
}

// Leverage ratios.
type Leverage struct {
	DebtToEquity   types.Money `json:"debtToEquity"`
	ReturnOnEquity types.Money `json:"returnOnEquity"`
	ReturnOnAssets types.Money `json:"returnOnAssets"`
}

// Profitability ratios.
type Profitability struct {
	NetProfitMargin   types.Money `json:"netProfitMargin"`
	GrossProfitMargin types.Money `json:"grossProfitMargin"`
}

// Ratios groups every computed ratio. A ratio whose denominator is zero is
// reported as zero.
type Ratios struct {
	Solvency      Solvency      `json:"solvency"`
	Leverage      Leverage      `json:"leverage"`
	Profitability Profitability `json:"profitability"`
}

// Compute derives the ratios from signed group balances.
func Compute(g GroupBalances) Ratios {
	var (
		currentAssets      = g.Balance(roles.GroupCurrentAssets)
		quickAssets        = g.Balance(roles.GroupQuickAssets)
		currentLiabilities = g.Balance(roles.GroupCurrentLiabilities)
		assets             = g.Balance(roles.GroupAssets)
		liabilities        = g.Balance(roles.GroupLiabilities)
		capital            = g.Balance(roles.GroupCapital)
		earnings           = g.Balance(roles.GroupEarnings)
		netProfit          = g.Balance(roles.GroupNetProfit)
		grossProfit        = g.Balance(roles.GroupGrossProfit)
		netSales           = g.Balance(roles.GroupNetSales)
	)

	r := Ratios{
		Solvency: Solvency{
			Current: types.SafeDiv(currentAssets, currentLiabilities),
			Quick:   types.SafeDiv(quickAssets, currentLiabilities),
		},
		Leverage: Leverage{
			DebtToEquity:   types.SafeDiv(liabilities, capital),
			ReturnOnEquity: types.SafeDiv(earnings, capital),
			ReturnOnAssets: types.SafeDiv(earnings, assets),
		},
		Profitability: Profitability{
			NetProfitMargin: types.SafeDiv(netProfit, netSales),
		},
	}
	if !grossProfit.IsZero() {
		r.Profitability.GrossProfitMargin = types.SafeDiv(grossProfit, netSales)
	}
	return r
}
