// Package statements builds the balance sheet, income statement and cash
// flow statement from signed digest balances.
package statements

import (
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/balances"
	"ledgerio/internal/domain/roles"
)

// RoleSection lists the accounts of one role.
type RoleSection struct {
	Role         roles.Role                `json:"role"`
	RoleName     string                    `json:"roleName"`
	Accounts     []balances.AccountBalance `json:"accounts"`
	TotalBalance types.Money               `json:"totalBalance"`
}

// Section is one side of the balance sheet.
type Section struct {
	BSRole       roles.BSRole  `json:"bsRole"`
	Roles        []RoleSection `json:"roles"`
	TotalBalance types.Money   `json:"totalBalance"`
}

// BalanceSheet is the statement of financial position.
//
// Assets == Liabilities + Equity holds whenever every underlying journal
// entry balances; the builder does not enforce it.
type BalanceSheet struct {
	Assets      Section `json:"assets"`
	Liabilities Section `json:"liabilities"`
	Equity      Section `json:"equity"`

	EquityBalance            types.Money `json:"equityBalance"`
	RetainedEarningsBalance  types.Money `json:"retainedEarningsBalance"`
	LiabilitiesEquityBalance types.Money `json:"liabilitiesEquityBalance"`
}

// BuildBalanceSheet partitions signed flat balances into the three
// balance-sheet sections and reads the summary lines from the groups.
func BuildBalanceSheet(flat []balances.AccountBalance, groups *balances.Rollup[roles.Group]) *BalanceSheet {
	byRole := make(map[roles.Role][]balances.AccountBalance)
	for _, b := range flat {
		byRole[b.Role] = append(byRole[b.Role], b)
	}

	section := func(bs roles.BSRole) Section {
		s := Section{BSRole: bs, TotalBalance: types.Zero()}
		for _, r := range roles.RolesOf(bs) {
			accts := byRole[r]
			if len(accts) == 0 {
				continue
			}
			total := balances.Total(accts)
			s.Roles = append(s.Roles, RoleSection{
				Role:         r,
				RoleName:     roles.Verbose(r),
				Accounts:     accts,
				TotalBalance: total,
			})
			s.TotalBalance = s.TotalBalance.Add(total)
		}
		return s
	}

	return &BalanceSheet{
		Assets:                   section(roles.BSAssets),
		Liabilities:              section(roles.BSLiabilities),
		Equity:                   section(roles.BSEquity),
		EquityBalance:            groups.Balance(roles.GroupEquity),
		RetainedEarningsBalance:  groups.Balance(roles.GroupEarnings),
		LiabilitiesEquityBalance: groups.Balance(roles.GroupLiabilitiesEquity),
	}
}
