package journal

import (
	"fmt"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/domain/roles"
)

// Activity is the cash-flow classification of a journal entry.
type Activity string

const (
	ActivityOperating Activity = "op"

	ActivityInvestingPPE        Activity = "inv_ppe"
	ActivityInvestingSecurities Activity = "inv_securities"
	ActivityInvestingOther      Activity = "inv"

	ActivityFinancingSTD       Activity = "fin_std"
	ActivityFinancingLTD       Activity = "fin_ltd"
	ActivityFinancingEquity    Activity = "fin_equity"
	ActivityFinancingDividends Activity = "fin_dividends"
	ActivityFinancingOther     Activity = "fin"
)

// ActivityCategory is the statement section an activity belongs to.
type ActivityCategory string

const (
	CategoryOperating ActivityCategory = "operating"
	CategoryInvesting ActivityCategory = "investing"
	CategoryFinancing ActivityCategory = "financing"
)

var activityCategories = map[Activity]ActivityCategory{
	ActivityOperating:           CategoryOperating,
	ActivityInvestingPPE:        CategoryInvesting,
	ActivityInvestingSecurities: CategoryInvesting,
	ActivityInvestingOther:      CategoryInvesting,
	ActivityFinancingSTD:        CategoryFinancing,
	ActivityFinancingLTD:        CategoryFinancing,
	ActivityFinancingEquity:     CategoryFinancing,
	ActivityFinancingDividends:  CategoryFinancing,
	ActivityFinancingOther:      CategoryFinancing,
}

var activityNames = map[Activity]string{
	ActivityOperating:           "Operating",
	ActivityInvestingPPE:        "Purchase/Disposition of PPE",
	ActivityInvestingSecurities: "Purchase/Disposition of Securities",
	ActivityInvestingOther:      "Investing Activity Other",
	ActivityFinancingSTD:        "Payoff of Short Term Debt",
	ActivityFinancingLTD:        "Payoff of Long Term Debt",
	ActivityFinancingEquity:     "Issuance of Common Stock, Preferred Stock or Capital Contribution",
	ActivityFinancingDividends:  "Dividends or Distributions to Shareholders",
	ActivityFinancingOther:      "Financing Activity Other",
}

// Activities returns every activity value.
func Activities() []Activity {
	return []Activity{
		ActivityOperating,
		ActivityInvestingPPE, ActivityInvestingSecurities, ActivityInvestingOther,
		ActivityFinancingSTD, ActivityFinancingLTD, ActivityFinancingEquity,
		ActivityFinancingDividends, ActivityFinancingOther,
	}
}

func (a Activity) IsValid() bool {
	_, ok := activityCategories[a]
	return ok
}

func (a Activity) Category() ActivityCategory { return activityCategories[a] }
func (a Activity) IsOperating() bool          { return a.Category() == CategoryOperating }
func (a Activity) IsInvesting() bool          { return a.Category() == CategoryInvesting }
func (a Activity) IsFinancing() bool          { return a.Category() == CategoryFinancing }

// Name returns the display name.
func (a Activity) Name() string {
	if n, ok := activityNames[a]; ok {
		return n
	}
	return string(a)
}

// ValidateActivity fails with a validation error on unknown values.
func ValidateActivity(a Activity) error {
	if !a.IsValid() {
		return apperror.NewValidation(fmt.Sprintf("invalid activity %q", a)).
			WithDetail("activity", string(a))
	}
	return nil
}

// ParseActivities validates raw activity filter values.
func ParseActivities(values []string) ([]Activity, error) {
	out := make([]Activity, 0, len(values))
	for _, v := range values {
		a := Activity(v)
		if err := ValidateActivity(a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// activityFromRoles classifies the non-cash roles of an entry touching
// cash. Each candidate requires every role to belong to its group; more
// than one candidate, or none, is an error.
func activityFromRoles(rs []roles.Role) (*Activity, error) {
	if len(rs) == 0 {
		return nil, nil
	}

	candidates := []struct {
		activity Activity
		match    bool
	}{
		{ActivityInvestingPPE, roles.AllIn(rs, roles.GroupCFSInvestingPPE) &&
			roles.AnyIn(rs, roles.GroupCFSInvPurchaseOrSaleOfPPE)},
		{ActivityInvestingSecurities, roles.AllIn(rs, roles.GroupCFSInvestingSecurities) &&
			roles.AnyIn(rs, roles.GroupCFSInvPurchaseOfSecurities)},
		{ActivityFinancingSTD, roles.AllIn(rs, roles.GroupCFSFinSTDebtPayments)},
		{ActivityFinancingLTD, roles.AllIn(rs, roles.GroupCFSFinLTDebtPayments)},
		{ActivityFinancingEquity, roles.AllIn(rs, roles.GroupCFSFinIssuingEquity)},
		{ActivityFinancingDividends, roles.AllIn(rs, roles.GroupCFSFinDividends)},
		{ActivityOperating, !roles.AnyIn(rs, roles.GroupCFSInvestingAndFinancing)},
	}

	var found []Activity
	for _, c := range candidates {
		if c.match {
			found = append(found, c.activity)
		}
	}

	switch len(found) {
	case 0:
		return nil, apperror.NewJournalEntryInvalid(
			fmt.Sprintf("no activity match for roles %v, split into multiple journal entries or check the account selection", rs))
	case 1:
		a := found[0]
		return &a, nil
	default:
		return nil, apperror.NewJournalEntryInvalid(
			fmt.Sprintf("multiple activities detected in roles %v", rs)).
			WithDetail("activities", found)
	}
}
