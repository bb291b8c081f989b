package accounts

import (
	"context"
	"fmt"
	"sort"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/entity"
	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/roles"
)

// Chart is an entity's chart of accounts.
type Chart struct {
	entity.Base

	EntityID id.ID  `db:"entity_id" json:"entityId"`
	Name     string `db:"name" json:"name"`
	Active   bool   `db:"active" json:"active"`

	Accounts []*Account `db:"-" json:"accounts,omitempty"`
}

// NewChart creates an empty active chart for an entity.
func NewChart(entityID id.ID, name string) *Chart {
	return &Chart{
		Base:     entity.NewBase(),
		EntityID: entityID,
		Name:     name,
		Active:   true,
	}
}

// Add appends an account after checking code uniqueness.
func (c *Chart) Add(a *Account) error {
	if _, ok := c.ByCode(a.Code); ok {
		return apperror.NewDuplicate("account", "code", a.Code)
	}
	a.ChartID = c.ID
	c.Accounts = append(c.Accounts, a)
	return nil
}

// ByCode finds an account by its code.
func (c *Chart) ByCode(code string) (*Account, bool) {
	for _, a := range c.Accounts {
		if a.Code == code {
			return a, true
		}
	}
	return nil, false
}

// ByID finds an account by its ID.
func (c *Chart) ByID(accountID id.ID) (*Account, bool) {
	for _, a := range c.Accounts {
		if a.ID == accountID {
			return a, true
		}
	}
	return nil, false
}

// ByRole returns the accounts carrying role, ordered by code.
func (c *Chart) ByRole(role roles.Role) []*Account {
	var out []*Account
	for _, a := range c.Accounts {
		if a.Role == role {
			out = append(out, a)
		}
	}
	sortByCode(out)
	return out
}

// Root returns the root_coa node.
func (c *Chart) Root() (*Account, bool) {
	for _, a := range c.Accounts {
		if a.Role == roles.RootCOA {
			return a, true
		}
	}
	return nil, false
}

// Children returns the direct children of parentID ordered by code.
func (c *Chart) Children(parentID id.ID) []*Account {
	var out []*Account
	for _, a := range c.Accounts {
		if a.ParentID != nil && *a.ParentID == parentID {
			out = append(out, a)
		}
	}
	sortByCode(out)
	return out
}

// Walk visits the tree depth-first starting at the COA root.
func (c *Chart) Walk(fn func(a *Account, depth int) error) error {
	root, ok := c.Root()
	if !ok {
		return apperror.NewValidation("chart of accounts has no root node")
	}
	var visit func(a *Account, depth int) error
	visit = func(a *Account, depth int) error {
		if err := fn(a, depth); err != nil {
			return err
		}
		for _, child := range c.Children(a.ID) {
			if err := visit(child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(root, 0)
}

// Validate checks every account, code uniqueness, parent references and
// the absence of cycles.
func (c *Chart) Validate(ctx context.Context) error {
	codes := make(map[string]struct{}, len(c.Accounts))
	byID := make(map[id.ID]*Account, len(c.Accounts))
	roots := 0

	for _, a := range c.Accounts {
		if err := a.Validate(ctx); err != nil {
			return err
		}
		if _, dup := codes[a.Code]; dup {
			return apperror.NewDuplicate("account", "code", a.Code)
		}
		codes[a.Code] = struct{}{}
		byID[a.ID] = a
		if a.Role == roles.RootCOA {
			roots++
		}
	}
	if roots > 1 {
		return apperror.NewValidation("chart of accounts has more than one root node")
	}

	for _, a := range c.Accounts {
		seen := map[id.ID]struct{}{a.ID: {}}
		for p := a.ParentID; p != nil; {
			parent, ok := byID[*p]
			if !ok {
				return apperror.NewValidation(fmt.Sprintf("account %s references unknown parent", a.Code)).
					WithDetail("parent_id", p.String())
			}
			if _, loop := seen[parent.ID]; loop {
				return apperror.NewValidation(fmt.Sprintf("account %s is part of a parent cycle", a.Code))
			}
			seen[parent.ID] = struct{}{}
			p = parent.ParentID
		}
	}
	return nil
}

func sortByCode(as []*Account) {
	sort.Slice(as, func(i, j int) bool { return as[i].Code < as[j].Code })
}
