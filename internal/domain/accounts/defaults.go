package accounts

import (
	"context"
	"fmt"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/roles"
)

// DefaultChartVersion identifies the revision of DefaultChart.
const DefaultChartVersion = "2024.1"

// Seed is one (code, role, balance_type, name) tuple used to populate a new
// chart. ParentCode is optional; without it the account hangs off the root
// node of its category.
type Seed struct {
	Code        string     `yaml:"code" json:"code"`
	Role        roles.Role `yaml:"role" json:"role"`
	BalanceType string     `yaml:"balance_type" json:"balanceType"`
	Name        string     `yaml:"name" json:"name"`
	ParentCode  string     `yaml:"parent,omitempty" json:"parent,omitempty"`
}

// DefaultChart returns the bootstrap chart of accounts.
func DefaultChart() []Seed {
	out := make([]Seed, len(defaultSeeds))
	copy(out, defaultSeeds)
	return out
}

var defaultSeeds = []Seed{
	// current assets
	{"1010", roles.AssetCACash, "debit", "Cash", ""},
	{"1050", roles.AssetCAMktSecurities, "debit", "Short Term Investments", ""},
	{"1100", roles.AssetCAReceivables, "debit", "Accounts Receivable", ""},
	{"1110", roles.AssetCAUncollectible, "credit", "Uncollectibles", ""},
	{"1200", roles.AssetCAInventory, "debit", "Inventory", ""},
	{"1300", roles.AssetCAPrepaid, "debit", "Prepaid Expenses", ""},

	// long term investments
	{"1510", roles.AssetLTINotesReceivable, "debit", "Notes Receivable", ""},
	{"1520", roles.AssetLTILand, "debit", "Land", ""},
	{"1530", roles.AssetLTISecurities, "debit", "Securities", ""},

	// property, plant & equipment
	{"1610", roles.AssetPPEBuildings, "debit", "Buildings", ""},
	{"1611", roles.AssetPPEBuildingsAccumDepr, "credit", "Less: Buildings Accumulated Depreciation", ""},
	{"1620", roles.AssetPPEPlant, "debit", "Plant", ""},
	{"1621", roles.AssetPPEPlantAccumDepr, "credit", "Less: Plant Accumulated Depreciation", ""},
	{"1630", roles.AssetPPEEquipment, "debit", "Equipment", ""},
	{"1631", roles.AssetPPEEquipmentAccumDepr, "credit", "Less: Equipment Accumulated Depreciation", ""},
	{"1640", roles.AssetPPEPlant, "debit", "Vehicles", ""},
	{"1641", roles.AssetPPEPlantAccumDepr, "credit", "Less: Vehicles Accumulated Depreciation", ""},
	{"1650", roles.AssetPPEPlant, "debit", "Furniture & Fixtures", ""},
	{"1651", roles.AssetPPEPlantAccumDepr, "credit", "Less: Furniture & Fixtures Accumulated Depreciation", ""},

	// intangibles and adjustments
	{"1810", roles.AssetIntangible, "debit", "Goodwill", ""},
	{"1820", roles.AssetIntangible, "debit", "Intellectual Property", ""},
	{"1830", roles.AssetIntangibleAccumAmort, "credit", "Less: Intangible Assets Accumulated Amortization", ""},
	{"1910", roles.AssetAdjustment, "debit", "Securities Unrealized Gains/Losses", ""},
	{"1920", roles.AssetAdjustment, "debit", "PPE Unrealized Gains/Losses", ""},

	// current liabilities
	{"2010", roles.LiabilityCLAccPayable, "credit", "Accounts Payable", ""},
	{"2020", roles.LiabilityCLWagesPayable, "credit", "Wages Payable", ""},
	{"2030", roles.LiabilityCLInterestPayable, "credit", "Interest Payable", ""},
	{"2040", roles.LiabilityCLSTNotesPayable, "credit", "Short-Term Notes Payable", ""},
	{"2050", roles.LiabilityCLLTDMaturities, "credit", "Current Maturities LT Debt", ""},
	{"2060", roles.LiabilityCLDeferredRevenue, "credit", "Deferred Revenues", ""},
	{"2070", roles.LiabilityCLOther, "credit", "Other Payables", ""},

	// long term liabilities
	{"2110", roles.LiabilityLTLNotesPayable, "credit", "Long Term Notes Payable", ""},
	{"2120", roles.LiabilityLTLBondsPayable, "credit", "Bonds Payable", ""},
	{"2130", roles.LiabilityLTLMortgagePayable, "credit", "Mortgage Payable", ""},

	// equity
	{"3010", roles.EquityCapital, "credit", "Capital Account 1", ""},
	{"3020", roles.EquityCapital, "credit", "Capital Account 2", ""},
	{"3030", roles.EquityCapital, "credit", "Capital Account 3", ""},
	{"3110", roles.EquityCommonStock, "credit", "Common Stock", ""},
	{"3120", roles.EquityPreferredStock, "credit", "Preferred Stock", ""},
	{"3910", roles.EquityAdjustment, "credit", "Available for Sale", ""},
	{"3920", roles.EquityAdjustment, "credit", "PPE Unrealized Gains/Losses", ""},
	{"3930", roles.EquityDividends, "debit", "Dividends & Distributions", ""},

	// income
	{"4010", roles.IncomeOperational, "credit", "Sales Income", ""},
	{"4020", roles.IncomeInvesting, "credit", "Investing Income", ""},
	{"4030", roles.IncomeInterest, "credit", "Interest Income", ""},
	{"4040", roles.IncomeCapitalGain, "credit", "Capital Gain/Loss Income", ""},
	{"4050", roles.IncomeOther, "credit", "Other Income", ""},

	// cogs
	{"5010", roles.COGS, "debit", "Cost of Goods Sold", ""},

	// expenses
	{"6010", roles.ExpenseOperational, "debit", "Advertising", ""},
	{"6020", roles.ExpenseOperational, "debit", "Amortization", ""},
	{"6030", roles.ExpenseOperational, "debit", "Auto Expense", ""},
	{"6040", roles.ExpenseOperational, "debit", "Bad Debt", ""},
	{"6050", roles.ExpenseOperational, "debit", "Bank Charges", ""},
	{"6060", roles.ExpenseOperational, "debit", "Commission Expense", ""},
	{"6070", roles.ExpenseDepreciation, "debit", "Depreciation Expense", ""},
	{"6075", roles.ExpenseAmortization, "debit", "Amortization Expense", ""},
	{"6080", roles.ExpenseOperational, "debit", "Employee Benefits", ""},
	{"6090", roles.ExpenseOperational, "debit", "Freight", ""},
	{"6110", roles.ExpenseOperational, "debit", "Gifts", ""},
	{"6120", roles.ExpenseOperational, "debit", "Insurance", ""},
	{"6130", roles.ExpenseInterest, "debit", "Interest Expense", ""},
	{"6140", roles.ExpenseOperational, "debit", "Professional Fees", ""},
	{"6150", roles.ExpenseOperational, "debit", "License Expense", ""},
	{"6170", roles.ExpenseOperational, "debit", "Maintenance Expense", ""},
	{"6180", roles.ExpenseOperational, "debit", "Meals & Entertainment", ""},
	{"6190", roles.ExpenseOperational, "debit", "Office Expense", ""},
	{"6210", roles.ExpenseTaxes, "debit", "Payroll Taxes", ""},
	{"6220", roles.ExpenseOperational, "debit", "Printing", ""},
	{"6230", roles.ExpenseOperational, "debit", "Postage", ""},
	{"6240", roles.ExpenseOperational, "debit", "Rent", ""},
	{"6250", roles.ExpenseOperational, "debit", "Maintenance & Repairs", ""},
	{"6251", roles.ExpenseOperational, "debit", "Maintenance", "6250"},
	{"6252", roles.ExpenseOperational, "debit", "Repairs", "6250"},
	{"6253", roles.ExpenseOperational, "debit", "HOA", "6250"},
	{"6254", roles.ExpenseOperational, "debit", "Snow Removal", "6250"},
	{"6255", roles.ExpenseOperational, "debit", "Lawn Care", "6250"},
	{"6260", roles.ExpenseOperational, "debit", "Salaries", ""},
	{"6270", roles.ExpenseOperational, "debit", "Supplies", ""},
	{"6280", roles.ExpenseTaxes, "debit", "Taxes", ""},
	{"6290", roles.ExpenseOperational, "debit", "Utilities", ""},
	{"6292", roles.ExpenseOperational, "debit", "Sewer", "6290"},
	{"6293", roles.ExpenseOperational, "debit", "Gas", "6290"},
	{"6294", roles.ExpenseOperational, "debit", "Garbage", "6290"},
	{"6295", roles.ExpenseOperational, "debit", "Electricity", "6290"},
	{"6300", roles.ExpenseOperational, "debit", "Property Management", ""},
	{"6400", roles.ExpenseOperational, "debit", "Vacancy", ""},
	{"6500", roles.ExpenseOther, "debit", "Misc. Expense", ""},
}

var categoryRoots = map[roles.Category]roles.Role{
	roles.CategoryAsset:     roles.RootAssets,
	roles.CategoryLiability: roles.RootLiabilities,
	roles.CategoryEquity:    roles.RootCapital,
	roles.CategoryIncome:    roles.RootIncome,
	roles.CategoryCOGS:      roles.RootCOGS,
	roles.CategoryExpense:   roles.RootExpenses,
}

// BuildChart creates a chart with the root nodes followed by seeds.
// Seeds are validated against the role taxonomy; a parent must be declared
// before its children.
func BuildChart(ctx context.Context, entityID id.ID, name string, seeds []Seed) (*Chart, error) {
	chart := NewChart(entityID, name)

	rootIDs := make(map[roles.Role]id.ID)
	for _, r := range roles.Roots() {
		acc := NewAccount(chart.ID, r.Code, r.Title, r.Role, BalanceType(r.BalanceType))
		if r.Role != roles.RootCOA {
			acc.ParentID = id.Ptr(rootIDs[roles.RootCOA])
		}
		rootIDs[r.Role] = acc.ID
		if err := chart.Add(acc); err != nil {
			return nil, err
		}
	}

	for _, s := range seeds {
		if err := roles.Validate(s.Role); err != nil {
			return nil, err
		}
		if roles.IsRoot(s.Role) {
			return nil, apperror.NewValidation(fmt.Sprintf("seed %s uses a root role", s.Code))
		}
		bt, err := ParseBalanceType(s.BalanceType)
		if err != nil {
			return nil, err
		}
		acc := NewAccount(chart.ID, s.Code, s.Name, s.Role, bt)
		if s.ParentCode != "" {
			parent, ok := chart.ByCode(s.ParentCode)
			if !ok {
				return nil, apperror.NewValidation(fmt.Sprintf("seed %s references unknown parent %s", s.Code, s.ParentCode))
			}
			acc.ParentID = id.Ptr(parent.ID)
		} else {
			acc.ParentID = id.Ptr(rootIDs[categoryRoots[roles.CategoryOf(s.Role)]])
		}
		if err := chart.Add(acc); err != nil {
			return nil, err
		}
	}

	if err := chart.Validate(ctx); err != nil {
		return nil, err
	}
	return chart, nil
}
