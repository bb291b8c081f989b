package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerio/internal/core/apperror"
)

func TestEveryRoleHasOneCategory(t *testing.T) {
	seen := make(map[Role]bool)
	for _, r := range All() {
		require.False(t, seen[r], "duplicate role %s", r)
		seen[r] = true

		info, ok := Lookup(r)
		require.True(t, ok)
		assert.NotEmpty(t, info.Category, r)
		assert.NotEmpty(t, info.BS, r)
	}
	assert.Len(t, All(), 55)
}

func TestBSRoles(t *testing.T) {
	assert.Equal(t, BSAssets, BSRoleOf(AssetCACash))
	assert.Equal(t, BSLiabilities, BSRoleOf(LiabilityLTLBondsPayable))
	assert.Equal(t, BSEquity, BSRoleOf(EquityCapital))
	assert.Equal(t, BSEquity, BSRoleOf(IncomeOperational))
	assert.Equal(t, BSEquity, BSRoleOf(COGS))
	assert.Equal(t, BSEquity, BSRoleOf(ExpenseOther))
	assert.Equal(t, BSRoot, BSRoleOf(RootCOA))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(AssetCACash, ExpenseOperational))

	err := Validate(AssetCACash, Role("asset_magic"))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "asset_magic")

	_, err = ParseRoles([]string{"asset_ca_cash", "nope"})
	require.Error(t, err)

	rs, err := ParseRoles([]string{" in_operational "})
	require.NoError(t, err)
	assert.Equal(t, []Role{IncomeOperational}, rs)
}

func TestGroupMembership(t *testing.T) {
	assert.True(t, InGroup(AssetCACash, GroupQuickAssets))
	assert.True(t, InGroup(AssetCACash, GroupCurrentAssets))
	assert.True(t, InGroup(AssetCACash, GroupAssets))
	assert.False(t, InGroup(AssetCACash, GroupCFSInvestingAndFinancing))

	assert.Contains(t, RoleGroups(AssetCAReceivables), GroupCFSOpAccountsReceivable)
	assert.Contains(t, RoleGroups(ExpenseDepreciation), GroupCFSOpDepreciationAmortization)
	assert.Contains(t, RoleGroups(IncomeOperational), GroupEarnings)
	assert.NotContains(t, RoleGroups(EquityCapital), GroupEarnings)
}

func TestGroupRolesDeduplicated(t *testing.T) {
	// long-term notes appear in both the PPE and the securities investing lists
	members := GroupRoles(GroupCFSInvesting)
	count := 0
	for _, r := range members {
		if r == LiabilityLTLNotesPayable {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCompositeGroups(t *testing.T) {
	assets := GroupRoles(GroupAssets)
	assert.Len(t, assets, len(GroupRoles(GroupCurrentAssets))+len(GroupRoles(GroupNonCurrentAssets)))

	le := GroupRoles(GroupLiabilitiesEquity)
	assert.Len(t, le, len(GroupRoles(GroupLiabilities))+len(GroupRoles(GroupEquity)))

	// every non-root role is either an asset or in liabilities+equity
	for _, r := range All() {
		if IsRoot(r) {
			continue
		}
		assert.True(t, InGroup(r, GroupAssets) != InGroup(r, GroupLiabilitiesEquity), r)
	}
}

func TestAllInAnyIn(t *testing.T) {
	assert.True(t, AllIn([]Role{AssetPPEEquipment, LiabilityLTLNotesPayable}, GroupCFSInvestingPPE))
	assert.False(t, AllIn([]Role{AssetPPEEquipment, IncomeOperational}, GroupCFSInvestingPPE))
	assert.True(t, AllIn(nil, GroupCFSInvestingPPE))
	assert.True(t, AnyIn([]Role{IncomeOperational, AssetPPEEquipment}, GroupCFSInvPurchaseOrSaleOfPPE))
	assert.False(t, AnyIn(nil, GroupCFSInvPurchaseOrSaleOfPPE))
}

func TestSortByRoleOrder(t *testing.T) {
	rs := []Role{LiabilityCLAccPayable, AssetPPEEquipment, AssetCACash, Role("zzz")}
	SortByRoleOrder(rs)
	assert.Equal(t, []Role{AssetCACash, AssetPPEEquipment, LiabilityCLAccPayable, Role("zzz")}, rs)
}

func TestRoots(t *testing.T) {
	roots := Roots()
	require.Len(t, roots, 7)
	assert.Equal(t, RootCOA, roots[0].Role)
	assert.Equal(t, "00000", roots[0].Code)
	assert.Equal(t, "credit", roots[2].BalanceType)
}
