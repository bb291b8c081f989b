// Package roles is the static account role and role-group taxonomy.
//
// Every account carries exactly one Role. A role belongs to one Category
// (asset, liability, equity, income, cogs, expense or root) and one
// balance-sheet bucket (BSRole), and is a member of any number of Groups.
// All tables are declared literally and indexed once at package init;
// nothing here is mutable after that.
package roles

import (
	"fmt"
	"sort"
	"strings"

	"ledgerio/internal/core/apperror"
)

// Role is the finest-grained account classification.
type Role string

// Category is the top-level classification implied by a role.
type Category string

// BSRole is the balance-sheet bucket of a role. Income, COGS and expense
// roles fall under equity.
type BSRole string

const (
	CategoryAsset     Category = "asset"
	CategoryLiability Category = "liability"
	CategoryEquity    Category = "equity"
	CategoryIncome    Category = "income"
	CategoryCOGS      Category = "cogs"
	CategoryExpense   Category = "expense"
	CategoryRoot      Category = "root"
)

const (
	BSAssets      BSRole = "assets"
	BSLiabilities BSRole = "liabilities"
	BSEquity      BSRole = "equity"
	BSRoot        BSRole = "root"
)

// Asset roles
const (
	AssetCACash          Role = "asset_ca_cash"
	AssetCAMktSecurities Role = "asset_ca_mkt_sec"
	AssetCAReceivables   Role = "asset_ca_recv"
	AssetCAInventory     Role = "asset_ca_inv"
	AssetCAUncollectible Role = "asset_ca_uncoll"
	AssetCAPrepaid       Role = "asset_ca_prepaid"
	AssetCAOther         Role = "asset_ca_other"

	AssetLTINotesReceivable Role = "asset_lti_notes"
	AssetLTILand            Role = "asset_lti_land"
	AssetLTISecurities      Role = "asset_lti_sec"

	AssetPPEBuildings          Role = "asset_ppe_build"
	AssetPPEBuildingsAccumDepr Role = "asset_ppe_build_accum_depr"
	AssetPPEEquipment          Role = "asset_ppe_equip"
	AssetPPEEquipmentAccumDepr Role = "asset_ppe_equip_accum_depr"
	AssetPPEPlant              Role = "asset_ppe_plant"
	AssetPPEPlantAccumDepr     Role = "asset_ppe_plant_depr"

	AssetIntangible           Role = "asset_ia"
	AssetIntangibleAccumAmort Role = "asset_ia_accum_amort"
	AssetAdjustment           Role = "asset_adjustment"
)

// Liability roles
const (
	LiabilityCLAccPayable      Role = "lia_cl_acc_payable"
	LiabilityCLWagesPayable    Role = "lia_cl_wages_payable"
	LiabilityCLTaxesPayable    Role = "lia_cl_taxes_payable"
	LiabilityCLInterestPayable Role = "lia_cl_int_payable"
	LiabilityCLSTNotesPayable  Role = "lia_cl_st_notes_payable"
	LiabilityCLLTDMaturities   Role = "lia_cl_ltd_mat"
	LiabilityCLDeferredRevenue Role = "lia_cl_def_rev"
	LiabilityCLOther           Role = "lia_cl_other"

	LiabilityLTLNotesPayable    Role = "lia_ltl_notes"
	LiabilityLTLBondsPayable    Role = "lia_ltl_bonds"
	LiabilityLTLMortgagePayable Role = "lia_ltl_mortgage"
)

// Equity, income, COGS and expense roles
const (
	EquityCapital        Role = "eq_capital"
	EquityAdjustment     Role = "eq_adjustment"
	EquityCommonStock    Role = "eq_stock_common"
	EquityPreferredStock Role = "eq_stock_preferred"
	EquityDividends      Role = "eq_dividends"

	IncomeOperational Role = "in_operational"
	IncomeInvesting   Role = "in_passive"
	IncomeCapitalGain Role = "in_gain_loss"
	IncomeInterest    Role = "in_interest"
	IncomeOther       Role = "in_other"

	COGS Role = "cogs_regular"

	ExpenseOperational  Role = "ex_regular"
	ExpenseCapital      Role = "ex_capital"
	ExpenseDepreciation Role = "ex_depreciation"
	ExpenseAmortization Role = "ex_amortization"
	ExpenseTaxes        Role = "ex_taxes"
	ExpenseInterest     Role = "ex_interest"
	ExpenseOther        Role = "ex_other"
)

// Root roles anchor the chart of accounts tree.
const (
	RootCOA         Role = "root_coa"
	RootAssets      Role = "root_assets"
	RootLiabilities Role = "root_liabilities"
	RootCapital     Role = "root_capital"
	RootIncome      Role = "root_income"
	RootCOGS        Role = "root_cogs"
	RootExpenses    Role = "root_expenses"
)

// Info describes one role.
type Info struct {
	Role     Role
	Category Category
	BS       BSRole
	Verbose  string
}

// RootInfo describes a root node of a chart of accounts.
type RootInfo struct {
	Role        Role
	Code        string
	Title       string
	BalanceType string
}

// roleTable lists every role in presentation order.
var roleTable = []Info{
	{AssetCACash, CategoryAsset, BSAssets, "Current Asset"},
	{AssetCAMktSecurities, CategoryAsset, BSAssets, "Marketable Securities"},
	{AssetCAReceivables, CategoryAsset, BSAssets, "Receivables"},
	{AssetCAInventory, CategoryAsset, BSAssets, "Inventory"},
	{AssetCAUncollectible, CategoryAsset, BSAssets, "Uncollectibles"},
	{AssetCAPrepaid, CategoryAsset, BSAssets, "Prepaid"},
	{AssetCAOther, CategoryAsset, BSAssets, "Other Liquid Assets"},
	{AssetLTINotesReceivable, CategoryAsset, BSAssets, "Notes Receivable"},
	{AssetLTILand, CategoryAsset, BSAssets, "Land"},
	{AssetLTISecurities, CategoryAsset, BSAssets, "Securities"},
	{AssetPPEBuildings, CategoryAsset, BSAssets, "Buildings"},
	{AssetPPEBuildingsAccumDepr, CategoryAsset, BSAssets, "Buildings - Accum. Depreciation"},
	{AssetPPEPlant, CategoryAsset, BSAssets, "Plant"},
	{AssetPPEPlantAccumDepr, CategoryAsset, BSAssets, "Plant - Accum. Depreciation"},
	{AssetPPEEquipment, CategoryAsset, BSAssets, "Equipment"},
	{AssetPPEEquipmentAccumDepr, CategoryAsset, BSAssets, "Equipment - Accum. Depreciation"},
	{AssetIntangible, CategoryAsset, BSAssets, "Intangible Assets"},
	{AssetIntangibleAccumAmort, CategoryAsset, BSAssets, "Intangible Assets - Accum. Amortization"},
	{AssetAdjustment, CategoryAsset, BSAssets, "Other Assets"},

	{LiabilityCLAccPayable, CategoryLiability, BSLiabilities, "Accounts Payable"},
	{LiabilityCLWagesPayable, CategoryLiability, BSLiabilities, "Wages Payable"},
	{LiabilityCLInterestPayable, CategoryLiability, BSLiabilities, "Interest Payable"},
	{LiabilityCLTaxesPayable, CategoryLiability, BSLiabilities, "Taxes Payable"},
	{LiabilityCLSTNotesPayable, CategoryLiability, BSLiabilities, "Short Term Notes Payable"},
	{LiabilityCLLTDMaturities, CategoryLiability, BSLiabilities, "Current Maturities of Long Term Debt"},
	{LiabilityCLDeferredRevenue, CategoryLiability, BSLiabilities, "Deferred Revenue"},
	{LiabilityCLOther, CategoryLiability, BSLiabilities, "Other Liabilities"},
	{LiabilityLTLNotesPayable, CategoryLiability, BSLiabilities, "Long Term Notes Payable"},
	{LiabilityLTLBondsPayable, CategoryLiability, BSLiabilities, "Bonds Payable"},
	{LiabilityLTLMortgagePayable, CategoryLiability, BSLiabilities, "Mortgage Payable"},

	{EquityCapital, CategoryEquity, BSEquity, "Capital"},
	{EquityCommonStock, CategoryEquity, BSEquity, "Common Stock"},
	{EquityPreferredStock, CategoryEquity, BSEquity, "Preferred Stock"},
	{EquityAdjustment, CategoryEquity, BSEquity, "Other Equity Adjustments"},
	{EquityDividends, CategoryEquity, BSEquity, "Dividends & Distributions to Shareholders"},

	{IncomeOperational, CategoryIncome, BSEquity, "Operational Income"},
	{IncomeInvesting, CategoryIncome, BSEquity, "Investing/Passive Income"},
	{IncomeInterest, CategoryIncome, BSEquity, "Interest Income"},
	{IncomeCapitalGain, CategoryIncome, BSEquity, "Capital Gain/Loss Income"},
	{IncomeOther, CategoryIncome, BSEquity, "Other Income"},

	{COGS, CategoryCOGS, BSEquity, "Cost of Goods Sold"},

	{ExpenseOperational, CategoryExpense, BSEquity, "Regular Expense"},
	{ExpenseInterest, CategoryExpense, BSEquity, "Interest Expense"},
	{ExpenseTaxes, CategoryExpense, BSEquity, "Tax Expense"},
	{ExpenseCapital, CategoryExpense, BSEquity, "Capital Expense"},
	{ExpenseDepreciation, CategoryExpense, BSEquity, "Depreciation Expense"},
	{ExpenseAmortization, CategoryExpense, BSEquity, "Amortization Expense"},
	{ExpenseOther, CategoryExpense, BSEquity, "Other Expense"},

	{RootCOA, CategoryRoot, BSRoot, "CoA Root Account"},
	{RootAssets, CategoryRoot, BSRoot, "Assets Root Account"},
	{RootLiabilities, CategoryRoot, BSRoot, "Liabilities Root Account"},
	{RootCapital, CategoryRoot, BSRoot, "Capital Root Account"},
	{RootIncome, CategoryRoot, BSRoot, "Income Root Account"},
	{RootCOGS, CategoryRoot, BSRoot, "COGS Root Account"},
	{RootExpenses, CategoryRoot, BSRoot, "Expenses Root Account"},
}

var rootTable = []RootInfo{
	{RootCOA, "00000", "CoA Root Node", "debit"},
	{RootAssets, "01000", "Asset Accounts Root Node", "debit"},
	{RootLiabilities, "02000", "Liability Accounts Root Node", "credit"},
	{RootCapital, "03000", "Capital Accounts Root Node", "credit"},
	{RootIncome, "04000", "Income Accounts Root Node", "credit"},
	{RootCOGS, "05000", "COGS Accounts Root Node", "debit"},
	{RootExpenses, "06000", "Expense Accounts Root Node", "debit"},
}

var (
	roleIndex map[Role]Info
	roleOrder map[Role]int
)

func init() {
	roleIndex = make(map[Role]Info, len(roleTable))
	roleOrder = make(map[Role]int, len(roleTable))
	for i, info := range roleTable {
		roleIndex[info.Role] = info
		roleOrder[info.Role] = i
	}
	buildGroupIndex()
}

// All returns every role in presentation order.
func All() []Role {
	out := make([]Role, len(roleTable))
	for i, info := range roleTable {
		out[i] = info.Role
	}
	return out
}

// Lookup returns the description of r.
func Lookup(r Role) (Info, bool) {
	info, ok := roleIndex[r]
	return info, ok
}

// IsValid reports whether r is part of the taxonomy.
func IsValid(r Role) bool {
	_, ok := roleIndex[r]
	return ok
}

// IsRoot reports whether r is one of the chart-of-accounts root roles.
func IsRoot(r Role) bool {
	return roleIndex[r].Category == CategoryRoot
}

// CategoryOf returns the category of r, or "" for unknown roles.
func CategoryOf(r Role) Category {
	return roleIndex[r].Category
}

// BSRoleOf returns the balance-sheet bucket of r.
func BSRoleOf(r Role) BSRole {
	return roleIndex[r].BS
}

// Verbose returns the display name of r.
func Verbose(r Role) string {
	if info, ok := roleIndex[r]; ok {
		return info.Verbose
	}
	return string(r)
}

// Roots returns the chart-of-accounts root nodes, COA root first.
func Roots() []RootInfo {
	out := make([]RootInfo, len(rootTable))
	copy(out, rootTable)
	return out
}

// RolesOf returns the roles of a balance-sheet bucket in presentation order.
func RolesOf(bs BSRole) []Role {
	var out []Role
	for _, info := range roleTable {
		if info.BS == bs {
			out = append(out, info.Role)
		}
	}
	return out
}

// SortByRoleOrder sorts roles into presentation order. Unknown roles go last.
func SortByRoleOrder(rs []Role) {
	sort.SliceStable(rs, func(i, j int) bool {
		return order(rs[i]) < order(rs[j])
	})
}

// Order returns the presentation position of r.
func Order(r Role) int {
	return order(r)
}

func order(r Role) int {
	if o, ok := roleOrder[r]; ok {
		return o
	}
	return len(roleTable)
}

// Validate fails with a validation error naming the first role that is not
// part of the taxonomy.
func Validate(rs ...Role) error {
	for _, r := range rs {
		if !IsValid(r) {
			return apperror.NewValidation(fmt.Sprintf("invalid role %q", r)).
				WithDetail("role", string(r)).
				WithDetail("choices", strings.Join(validChoices(), ", "))
		}
	}
	return nil
}

// ParseRoles converts and validates raw role strings.
func ParseRoles(raw []string) ([]Role, error) {
	out := make([]Role, 0, len(raw))
	for _, s := range raw {
		r := Role(strings.TrimSpace(s))
		if err := Validate(r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func validChoices() []string {
	out := make([]string, len(roleTable))
	for i, info := range roleTable {
		out[i] = string(info.Role)
	}
	return out
}
