package roles

// Group is a named set of roles used for statement sections, ratios and
// cash-flow categories.
type Group string

const (
	GroupQuickAssets        Group = "GROUP_QUICK_ASSETS"
	GroupCurrentAssets      Group = "GROUP_CURRENT_ASSETS"
	GroupNonCurrentAssets   Group = "GROUP_NON_CURRENT_ASSETS"
	GroupAssets             Group = "GROUP_ASSETS"
	GroupCurrentLiabilities Group = "GROUP_CURRENT_LIABILITIES"
	GroupLTLiabilities      Group = "GROUP_LT_LIABILITIES"
	GroupLiabilities        Group = "GROUP_LIABILITIES"
	GroupCapital            Group = "GROUP_CAPITAL"
	GroupIncome             Group = "GROUP_INCOME"
	GroupCOGS               Group = "GROUP_COGS"
	GroupExpenses           Group = "GROUP_EXPENSES"
	GroupNetProfit          Group = "GROUP_NET_PROFIT"
	GroupGrossProfit        Group = "GROUP_GROSS_PROFIT"
	GroupNetSales           Group = "GROUP_NET_SALES"
	GroupPPEAccumDepr       Group = "GROUP_PPE_ACCUM_DEPRECIATION"
	GroupExpenseDepAndAmt   Group = "GROUP_EXPENSE_DEP_AND_AMT"
	GroupEarnings           Group = "GROUP_EARNINGS"
	GroupEquity             Group = "GROUP_EQUITY"
	GroupLiabilitiesEquity  Group = "GROUP_LIABILITIES_EQUITY"
	GroupInvoice            Group = "GROUP_INVOICE"
	GroupBill               Group = "GROUP_BILL"

	GroupICOperatingRevenues Group = "GROUP_IC_OPERATING_REVENUES"
	GroupICOperatingCOGS     Group = "GROUP_IC_OPERATING_COGS"
	GroupICOperatingExpenses Group = "GROUP_IC_OPERATING_EXPENSES"
	GroupICOtherRevenues     Group = "GROUP_IC_OTHER_REVENUES"
	GroupICOtherExpenses     Group = "GROUP_IC_OTHER_EXPENSES"

	GroupCFSNetIncome                  Group = "GROUP_CFS_NET_INCOME"
	GroupCFSOpDepreciationAmortization Group = "GROUP_CFS_OP_DEPRECIATION_AMORTIZATION"
	GroupCFSOpInvestmentGains          Group = "GROUP_CFS_OP_INVESTMENT_GAINS"
	GroupCFSOpAccountsReceivable       Group = "GROUP_CFS_OP_ACCOUNTS_RECEIVABLE"
	GroupCFSOpInventory                Group = "GROUP_CFS_OP_INVENTORY"
	GroupCFSOpAccountsPayable          Group = "GROUP_CFS_OP_ACCOUNTS_PAYABLE"
	GroupCFSOpOtherCurrentAssets       Group = "GROUP_CFS_OP_OTHER_CURRENT_ASSETS_ADJUSTMENT"
	GroupCFSOpOtherCurrentLiabilities  Group = "GROUP_CFS_OP_OTHER_CURRENT_LIABILITIES_ADJUSTMENT"
	GroupCFSOperating                  Group = "GROUP_CFS_OPERATING"
	GroupCFSFinIssuingEquity           Group = "GROUP_CFS_FIN_ISSUING_EQUITY"
	GroupCFSFinDividends               Group = "GROUP_CFS_FIN_DIVIDENDS"
	GroupCFSFinSTDebtPayments          Group = "GROUP_CFS_FIN_ST_DEBT_PAYMENTS"
	GroupCFSFinLTDebtPayments          Group = "GROUP_CFS_FIN_LT_DEBT_PAYMENTS"
	GroupCFSFinancing                  Group = "GROUP_CFS_FINANCING"
	GroupCFSInvPurchaseOrSaleOfPPE     Group = "GROUP_CFS_INV_PURCHASE_OR_SALE_OF_PPE"
	GroupCFSInvLTDOfPPE                Group = "GROUP_CFS_INV_LTD_OF_PPE"
	GroupCFSInvestingPPE               Group = "GROUP_CFS_INVESTING_PPE"
	GroupCFSInvPurchaseOfSecurities    Group = "GROUP_CFS_INV_PURCHASE_OF_SECURITIES"
	GroupCFSInvLTDOfSecurities         Group = "GROUP_CFS_INV_LTD_OF_SECURITIES"
	GroupCFSInvestingSecurities        Group = "GROUP_CFS_INVESTING_SECURITIES"
	GroupCFSInvesting                  Group = "GROUP_CFS_INVESTING"
	GroupCFSInvestingAndFinancing      Group = "GROUP_CFS_INVESTING_AND_FINANCING"
)

var (
	currentAssets = []Role{
		AssetCACash, AssetCAMktSecurities, AssetCAInventory, AssetCAReceivables,
		AssetCAPrepaid, AssetCAUncollectible, AssetCAOther,
	}
	nonCurrentAssets = []Role{
		AssetLTINotesReceivable, AssetLTILand, AssetLTISecurities,
		AssetPPEBuildings, AssetPPEBuildingsAccumDepr,
		AssetPPEEquipment, AssetPPEEquipmentAccumDepr,
		AssetPPEPlant, AssetPPEPlantAccumDepr,
		AssetIntangible, AssetIntangibleAccumAmort, AssetAdjustment,
	}
	currentLiabilities = []Role{
		LiabilityCLAccPayable, LiabilityCLDeferredRevenue, LiabilityCLInterestPayable,
		LiabilityCLLTDMaturities, LiabilityCLOther, LiabilityCLSTNotesPayable,
		LiabilityCLWagesPayable, LiabilityCLTaxesPayable,
	}
	ltLiabilities = []Role{
		LiabilityLTLNotesPayable, LiabilityLTLBondsPayable, LiabilityLTLMortgagePayable,
	}
	capital = []Role{
		EquityCapital, EquityCommonStock, EquityPreferredStock, EquityDividends, EquityAdjustment,
	}
	income = []Role{
		IncomeOperational, IncomeInvesting, IncomeInterest, IncomeCapitalGain, IncomeOther,
	}
	cogs     = []Role{COGS}
	expenses = []Role{
		ExpenseOperational, ExpenseInterest, ExpenseTaxes, ExpenseCapital,
		ExpenseDepreciation, ExpenseAmortization, ExpenseOther,
	}
	earnings = concat(income, cogs, expenses)

	cfsOpDepAmort        = []Role{ExpenseDepreciation, ExpenseAmortization}
	cfsOpInvestmentGains = []Role{IncomeCapitalGain}
	cfsOpReceivables     = []Role{AssetCAReceivables}
	cfsOpInventory       = []Role{AssetCAInventory}
	cfsOpPayables        = []Role{LiabilityCLAccPayable}
	cfsOpOtherCA         = []Role{AssetCAPrepaid, AssetCAUncollectible, AssetCAOther}
	cfsOpOtherCL         = []Role{
		LiabilityCLWagesPayable, LiabilityCLInterestPayable, LiabilityCLTaxesPayable,
		LiabilityCLLTDMaturities, LiabilityCLDeferredRevenue, LiabilityCLOther,
	}

	cfsFinEquity    = []Role{EquityCapital, EquityCommonStock, EquityPreferredStock}
	cfsFinDividends = []Role{EquityDividends}
	cfsFinSTD       = []Role{LiabilityCLSTNotesPayable}
	cfsFinLTD       = []Role{LiabilityLTLNotesPayable, LiabilityLTLBondsPayable, LiabilityLTLMortgagePayable}

	cfsInvPPE       = []Role{AssetPPEBuildings, AssetPPEPlant, AssetPPEEquipment}
	cfsInvLTDOfPPE  = []Role{LiabilityLTLNotesPayable, LiabilityLTLMortgagePayable, LiabilityLTLBondsPayable}
	cfsInvSec       = []Role{AssetCAMktSecurities, AssetLTISecurities}
	cfsInvLTDOfSec  = []Role{LiabilityLTLNotesPayable, LiabilityLTLBondsPayable}
	cfsInvestingPPE = concat(cfsInvPPE, cfsInvLTDOfPPE)
	cfsInvestingSec = concat(cfsInvSec, cfsInvLTDOfSec)
	cfsFinancing    = concat(cfsFinEquity, cfsFinDividends, cfsFinSTD, cfsFinLTD)
	cfsInvesting    = concat(cfsInvestingPPE, cfsInvestingSec)
)

type groupDef struct {
	group Group
	roles []Role
}

// groupTable is the declaration-ordered list of groups.
var groupTable = []groupDef{
	{GroupQuickAssets, []Role{AssetCACash, AssetCAMktSecurities}},
	{GroupCurrentAssets, currentAssets},
	{GroupNonCurrentAssets, nonCurrentAssets},
	{GroupAssets, concat(currentAssets, nonCurrentAssets)},
	{GroupCurrentLiabilities, currentLiabilities},
	{GroupLTLiabilities, ltLiabilities},
	{GroupLiabilities, concat(currentLiabilities, ltLiabilities)},
	{GroupCapital, capital},
	{GroupIncome, income},
	{GroupCOGS, cogs},
	{GroupExpenses, expenses},
	{GroupNetProfit, concat(income, cogs)},
	{GroupGrossProfit, []Role{IncomeOperational, COGS}},
	{GroupNetSales, []Role{IncomeOperational, IncomeInvesting}},
	{GroupPPEAccumDepr, []Role{AssetPPEBuildingsAccumDepr, AssetPPEEquipmentAccumDepr, AssetPPEPlantAccumDepr}},
	{GroupExpenseDepAndAmt, []Role{ExpenseDepreciation, ExpenseAmortization}},
	{GroupEarnings, earnings},
	{GroupEquity, concat(capital, earnings)},
	{GroupLiabilitiesEquity, concat(currentLiabilities, ltLiabilities, capital, earnings)},
	{GroupInvoice, []Role{AssetCACash, AssetCAReceivables, LiabilityCLDeferredRevenue}},
	{GroupBill, []Role{AssetCACash, AssetCAPrepaid, LiabilityCLAccPayable}},

	{GroupICOperatingRevenues, []Role{IncomeOperational}},
	{GroupICOperatingCOGS, []Role{COGS}},
	{GroupICOperatingExpenses, []Role{ExpenseOperational}},
	{GroupICOtherRevenues, []Role{IncomeInvesting, IncomeInterest, IncomeCapitalGain, IncomeOther}},
	{GroupICOtherExpenses, []Role{
		ExpenseInterest, ExpenseTaxes, ExpenseCapital, ExpenseDepreciation, ExpenseAmortization, ExpenseOther,
	}},

	{GroupCFSNetIncome, earnings},
	{GroupCFSOpDepreciationAmortization, cfsOpDepAmort},
	{GroupCFSOpInvestmentGains, cfsOpInvestmentGains},
	{GroupCFSOpAccountsReceivable, cfsOpReceivables},
	{GroupCFSOpInventory, cfsOpInventory},
	{GroupCFSOpAccountsPayable, cfsOpPayables},
	{GroupCFSOpOtherCurrentAssets, cfsOpOtherCA},
	{GroupCFSOpOtherCurrentLiabilities, cfsOpOtherCL},
	{GroupCFSOperating, concat(earnings, cfsOpDepAmort, cfsOpInvestmentGains, cfsOpReceivables,
		cfsOpInventory, cfsOpPayables, cfsOpOtherCA, cfsOpOtherCL)},
	{GroupCFSFinIssuingEquity, cfsFinEquity},
	{GroupCFSFinDividends, cfsFinDividends},
	{GroupCFSFinSTDebtPayments, cfsFinSTD},
	{GroupCFSFinLTDebtPayments, cfsFinLTD},
	{GroupCFSFinancing, cfsFinancing},
	{GroupCFSInvPurchaseOrSaleOfPPE, cfsInvPPE},
	{GroupCFSInvLTDOfPPE, cfsInvLTDOfPPE},
	{GroupCFSInvestingPPE, cfsInvestingPPE},
	{GroupCFSInvPurchaseOfSecurities, cfsInvSec},
	{GroupCFSInvLTDOfSecurities, cfsInvLTDOfSec},
	{GroupCFSInvestingSecurities, cfsInvestingSec},
	{GroupCFSInvesting, cfsInvesting},
	{GroupCFSInvestingAndFinancing, concat(cfsInvesting, cfsFinancing)},
}

var (
	groupMembers map[Group][]Role
	groupSets    map[Group]map[Role]struct{}
	roleGroups   map[Role][]Group
)

func buildGroupIndex() {
	groupMembers = make(map[Group][]Role, len(groupTable))
	groupSets = make(map[Group]map[Role]struct{}, len(groupTable))
	roleGroups = make(map[Role][]Group)

	for _, def := range groupTable {
		set := make(map[Role]struct{}, len(def.roles))
		members := make([]Role, 0, len(def.roles))
		for _, r := range def.roles {
			if _, dup := set[r]; dup {
				continue
			}
			set[r] = struct{}{}
			members = append(members, r)
			roleGroups[r] = append(roleGroups[r], def.group)
		}
		groupMembers[def.group] = members
		groupSets[def.group] = set
	}
}

// Groups returns every group in declaration order.
func Groups() []Group {
	out := make([]Group, len(groupTable))
	for i, def := range groupTable {
		out[i] = def.group
	}
	return out
}

// GroupRoles returns the member roles of g, without duplicates.
func GroupRoles(g Group) []Role {
	members := groupMembers[g]
	out := make([]Role, len(members))
	copy(out, members)
	return out
}

// RoleGroups returns the groups r belongs to. The index is built at init.
func RoleGroups(r Role) []Group {
	gs := roleGroups[r]
	out := make([]Group, len(gs))
	copy(out, gs)
	return out
}

// InGroup reports whether r is a member of g.
func InGroup(r Role, g Group) bool {
	_, ok := groupSets[g][r]
	return ok
}

// AllIn reports whether every role in rs is a member of g. An empty set is
// trivially contained.
func AllIn(rs []Role, g Group) bool {
	for _, r := range rs {
		if !InGroup(r, g) {
			return false
		}
	}
	return true
}

// AnyIn reports whether at least one role in rs is a member of g.
func AnyIn(rs []Role, g Group) bool {
	for _, r := range rs {
		if InGroup(r, g) {
			return true
		}
	}
	return false
}

// IsValidGroup reports whether g is declared.
func IsValidGroup(g Group) bool {
	_, ok := groupMembers[g]
	return ok
}

func concat(lists ...[]Role) []Role {
	var n int
	for _, l := range lists {
		n += len(l)
	}
	out := make([]Role, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
