// Package accounts models the chart of accounts: accounts tagged with a role
// and a natural balance side, arranged in a tree under per-category roots.
package accounts

import (
	"context"
	"fmt"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/entity"
	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/roles"
)

// BalanceType is the side on which an account increases. The same values
// are used as the direction of a transaction line.
type BalanceType string

const (
	Debit  BalanceType = "debit"
	Credit BalanceType = "credit"
)

// IsValid reports whether b is debit or credit.
func (b BalanceType) IsValid() bool {
	return b == Debit || b == Credit
}

// Opposite returns the other side.
func (b BalanceType) Opposite() BalanceType {
	if b == Debit {
		return Credit
	}
	return Debit
}

// ParseBalanceType validates a raw balance type.
func ParseBalanceType(s string) (BalanceType, error) {
	b := BalanceType(s)
	if !b.IsValid() {
		return "", apperror.NewValidation(fmt.Sprintf("invalid balance type %q, must be debit or credit", s))
	}
	return b, nil
}

// Account is one node of a chart of accounts.
type Account struct {
	entity.Base

	ChartID     id.ID       `db:"chart_id" json:"chartId"`
	Code        string      `db:"code" json:"code"`
	Name        string      `db:"name" json:"name"`
	Role        roles.Role  `db:"role" json:"role"`
	BalanceType BalanceType `db:"balance_type" json:"balanceType"`
	ParentID    *id.ID      `db:"parent_id" json:"parentId,omitempty"`
	Active      bool        `db:"active" json:"active"`
	Locked      bool        `db:"locked" json:"locked"`
}

// NewAccount creates an active, unlocked account.
func NewAccount(chartID id.ID, code, name string, role roles.Role, bt BalanceType) *Account {
	return &Account{
		Base:        entity.NewBase(),
		ChartID:     chartID,
		Code:        code,
		Name:        name,
		Role:        role,
		BalanceType: bt,
		Active:      true,
	}
}

// Validate implements entity.Validatable.
func (a *Account) Validate(_ context.Context) error {
	if a.Code == "" {
		return apperror.NewValidation("account code is required")
	}
	if a.Name == "" {
		return apperror.NewValidation("account name is required").WithDetail("code", a.Code)
	}
	if err := roles.Validate(a.Role); err != nil {
		return err
	}
	if !a.BalanceType.IsValid() {
		return apperror.NewValidation("invalid balance type").
			WithDetail("code", a.Code).
			WithDetail("balance_type", string(a.BalanceType))
	}
	return nil
}

// IsRoot reports whether the account is a chart root node.
func (a *Account) IsRoot() bool {
	return roles.IsRoot(a.Role)
}

// IsCash reports whether the account carries the cash role.
func (a *Account) IsCash() bool {
	return a.Role == roles.AssetCACash
}

// CanTransact reports whether new transaction lines may reference the account.
func (a *Account) CanTransact() bool {
	return a.Active && !a.Locked && !a.IsRoot()
}

// CanDelete reports whether the account may be removed. Accounts that
// already carry transactions are deactivated or locked instead.
func (a *Account) CanDelete(hasTransactions bool) bool {
	return !hasTransactions && !a.IsRoot()
}

// Deactivate hides the account from new postings.
func (a *Account) Deactivate() {
	a.Active = false
	a.Touch()
}

// Activate re-enables the account.
func (a *Account) Activate() {
	a.Active = true
	a.Touch()
}

// Lock freezes the account.
func (a *Account) Lock() {
	a.Locked = true
	a.Touch()
}

// Unlock releases the account.
func (a *Account) Unlock() {
	a.Locked = false
	a.Touch()
}
