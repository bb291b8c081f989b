package accounts

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/core/tx"
	"ledgerio/internal/domain/roles"
)

func TestDefaultChart_RolesExist(t *testing.T) {
	codes := make(map[string]bool)
	for _, s := range DefaultChart() {
		assert.True(t, roles.IsValid(s.Role), "seed %s has role %s", s.Code, s.Role)
		assert.False(t, codes[s.Code], "duplicate code %s", s.Code)
		codes[s.Code] = true
	}
}

func TestBuildChart_Default(t *testing.T) {
	ctx := context.Background()
	chart, err := BuildChart(ctx, id.New(), "Default", DefaultChart())
	require.NoError(t, err)

	assert.Len(t, chart.Accounts, len(DefaultChart())+len(roles.Roots()))

	cash, ok := chart.ByCode("1010")
	require.True(t, ok)
	assert.Equal(t, roles.AssetCACash, cash.Role)
	assert.Equal(t, Debit, cash.BalanceType)
	assert.True(t, cash.IsCash())

	rootAssets, ok := chart.ByCode("01000")
	require.True(t, ok)
	require.NotNil(t, cash.ParentID)
	assert.Equal(t, rootAssets.ID, *cash.ParentID)

	repairs, ok := chart.ByCode("6252")
	require.True(t, ok)
	parent, _ := chart.ByCode("6250")
	assert.Equal(t, parent.ID, *repairs.ParentID)

	uncoll, _ := chart.ByCode("1110")
	assert.Equal(t, Credit, uncoll.BalanceType)
}

func TestBuildChart_Rejects(t *testing.T) {
	ctx := context.Background()

	_, err := BuildChart(ctx, id.New(), "x", []Seed{{Code: "1", Role: "bogus", BalanceType: "debit", Name: "x"}})
	assert.True(t, apperror.IsValidation(err))

	_, err = BuildChart(ctx, id.New(), "x", []Seed{{Code: "1", Role: roles.AssetCACash, BalanceType: "left", Name: "x"}})
	assert.True(t, apperror.IsValidation(err))

	_, err = BuildChart(ctx, id.New(), "x", []Seed{
		{Code: "1010", Role: roles.AssetCACash, BalanceType: "debit", Name: "Cash"},
		{Code: "1010", Role: roles.AssetCACash, BalanceType: "debit", Name: "Cash again"},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))

	_, err = BuildChart(ctx, id.New(), "x", []Seed{
		{Code: "1011", Role: roles.AssetCACash, BalanceType: "debit", Name: "Petty", ParentCode: "9999"},
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestChart_ValidateCycle(t *testing.T) {
	ctx := context.Background()
	chart := NewChart(id.New(), "cyclic")
	a := NewAccount(chart.ID, "1", "A", roles.AssetCACash, Debit)
	b := NewAccount(chart.ID, "2", "B", roles.AssetCACash, Debit)
	a.ParentID = id.Ptr(b.ID)
	b.ParentID = id.Ptr(a.ID)
	require.NoError(t, chart.Add(a))
	require.NoError(t, chart.Add(b))

	err := chart.Validate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestChart_Walk(t *testing.T) {
	chart, err := BuildChart(context.Background(), id.New(), "Default", DefaultChart())
	require.NoError(t, err)

	var visited int
	maxDepth := 0
	err = chart.Walk(func(a *Account, depth int) error {
		visited++
		if depth > maxDepth {
			maxDepth = depth
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, len(chart.Accounts), visited)
	assert.Equal(t, 3, maxDepth) // root -> expenses root -> 6250 -> 6251
}

func TestAccount_Lifecycle(t *testing.T) {
	acc := NewAccount(id.New(), "1010", "Cash", roles.AssetCACash, Debit)
	assert.True(t, acc.CanTransact())
	assert.True(t, acc.CanDelete(false))
	assert.False(t, acc.CanDelete(true))

	acc.Lock()
	assert.False(t, acc.CanTransact())
	acc.Unlock()
	acc.Deactivate()
	assert.False(t, acc.CanTransact())
	assert.Equal(t, 4, acc.Version)
}

func TestSeedsYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSeeds(&buf, DefaultChartVersion, DefaultChart()))
	assert.Contains(t, buf.String(), "asset_ca_cash")

	f, err := ReadSeeds(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultChartVersion, f.Version)
	assert.Equal(t, DefaultChart(), f.Accounts)

	_, err = ReadSeeds(strings.NewReader("version: x\naccounts: []\n"))
	assert.Error(t, err)

	_, err = ReadSeeds(strings.NewReader("version: x\nunknown: 1\n"))
	assert.Error(t, err)
}

// memRepo is an in-memory Repository.
type memRepo struct {
	charts map[id.ID]*Chart
	used   map[id.ID]bool
}

func newMemRepo() *memRepo {
	return &memRepo{charts: make(map[id.ID]*Chart), used: make(map[id.ID]bool)}
}

func (m *memRepo) CreateChart(_ context.Context, chart *Chart) error {
	m.charts[chart.EntityID] = chart
	return nil
}

func (m *memRepo) GetChartByEntity(_ context.Context, entityID id.ID) (*Chart, error) {
	if c, ok := m.charts[entityID]; ok {
		return c, nil
	}
	return nil, apperror.NewNotFound("chart of accounts", entityID)
}

func (m *memRepo) GetAccount(_ context.Context, accountID id.ID) (*Account, error) {
	for _, c := range m.charts {
		if a, ok := c.ByID(accountID); ok {
			return a, nil
		}
	}
	return nil, apperror.NewNotFound("account", accountID)
}

func (m *memRepo) GetAccounts(ctx context.Context, ids []id.ID) ([]*Account, error) {
	var out []*Account
	for _, accountID := range ids {
		a, err := m.GetAccount(ctx, accountID)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memRepo) GetAccountsByCode(_ context.Context, chartID id.ID, codes []string) ([]*Account, error) {
	var out []*Account
	for _, c := range m.charts {
		if c.ID != chartID {
			continue
		}
		for _, code := range codes {
			if a, ok := c.ByCode(code); ok {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (m *memRepo) UpdateAccount(context.Context, *Account) error { return nil }

func (m *memRepo) DeleteAccount(_ context.Context, accountID id.ID) error {
	for _, c := range m.charts {
		for i, a := range c.Accounts {
			if a.ID == accountID {
				c.Accounts = append(c.Accounts[:i], c.Accounts[i+1:]...)
				return nil
			}
		}
	}
	return apperror.NewNotFound("account", accountID)
}

func (m *memRepo) HasTransactions(_ context.Context, accountID id.ID) (bool, error) {
	return m.used[accountID], nil
}

func TestService_SeedAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo, tx.Noop{})
	entityID := id.New()

	chart, err := svc.SeedDefault(ctx, entityID, "Main")
	require.NoError(t, err)

	_, err = svc.SeedDefault(ctx, entityID, "Again")
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))

	cash, _ := chart.ByCode("1010")
	repo.used[cash.ID] = true
	err = svc.Delete(ctx, cash.ID)
	require.Error(t, err)

	require.NoError(t, svc.Deactivate(ctx, cash.ID))
	assert.False(t, cash.Active)

	misc, _ := chart.ByCode("6500")
	require.NoError(t, svc.Delete(ctx, misc.ID))
	_, ok := chart.ByCode("6500")
	assert.False(t, ok)
}
