// Package ledger models entities, their units and the ledgers that contain
// journal entries.
package ledger

import (
	"context"
	"time"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/entity"
	"ledgerio/internal/core/id"
)

// Entity is the accounting subject that owns a chart of accounts, ledgers
// and closing entries.
type Entity struct {
	entity.Base

	Name                 string `db:"name" json:"name"`
	Slug                 string `db:"slug" json:"slug"`
	FiscalYearStartMonth int    `db:"fy_start_month" json:"fyStartMonth"`
}

// NewEntity creates an entity with a fiscal year starting in January unless
// fyStartMonth says otherwise.
func NewEntity(name, slug string, fyStartMonth int) *Entity {
	if fyStartMonth == 0 {
		fyStartMonth = 1
	}
	return &Entity{
		Base:                 entity.NewBase(),
		Name:                 name,
		Slug:                 slug,
		FiscalYearStartMonth: fyStartMonth,
	}
}

// Validate implements entity.Validatable.
func (e *Entity) Validate(_ context.Context) error {
	if e.Name == "" {
		return apperror.NewValidation("entity name is required")
	}
	if e.FiscalYearStartMonth < 1 || e.FiscalYearStartMonth > 12 {
		return apperror.NewValidation("fiscal year start month must be between 1 and 12").
			WithDetail("fy_start_month", e.FiscalYearStartMonth)
	}
	return nil
}

// FiscalYear returns the fiscal year that contains t. A fiscal year is
// named after the calendar year in which it starts.
func (e *Entity) FiscalYear(t time.Time) int {
	start := e.FiscalYearStartMonth
	if start <= 1 {
		return t.Year()
	}
	if int(t.Month()) >= start {
		return t.Year()
	}
	return t.Year() - 1
}

// Unit is a sub-ledger dimension of an entity (branch, property, project).
type Unit struct {
	entity.Base

	EntityID       id.ID  `db:"entity_id" json:"entityId"`
	Name           string `db:"name" json:"name"`
	Slug           string `db:"slug" json:"slug"`
	DocumentPrefix string `db:"document_prefix" json:"documentPrefix"`
	Active         bool   `db:"active" json:"active"`
}

// NewUnit creates an active unit.
func NewUnit(entityID id.ID, name, slug, prefix string) *Unit {
	return &Unit{
		Base:           entity.NewBase(),
		EntityID:       entityID,
		Name:           name,
		Slug:           slug,
		DocumentPrefix: prefix,
		Active:         true,
	}
}

// Ledger groups journal entries of one entity.
type Ledger struct {
	entity.Base

	EntityID id.ID  `db:"entity_id" json:"entityId"`
	Name     string `db:"name" json:"name"`
	Posted   bool   `db:"posted" json:"posted"`
	Locked   bool   `db:"locked" json:"locked"`
	Hidden   bool   `db:"hidden" json:"hidden"`
}

// NewLedger creates an unposted, unlocked, visible ledger.
func NewLedger(entityID id.ID, name string) *Ledger {
	return &Ledger{
		Base:     entity.NewBase(),
		EntityID: entityID,
		Name:     name,
	}
}

// Validate implements entity.Validatable.
func (l *Ledger) Validate(_ context.Context) error {
	if id.IsNil(l.EntityID) {
		return apperror.NewValidation("ledger must belong to an entity")
	}
	if l.Name == "" {
		return apperror.NewValidation("ledger name is required")
	}
	return nil
}

func (l *Ledger) CanPost() bool   { return !l.Posted }
func (l *Ledger) CanUnpost() bool { return l.Posted }
func (l *Ledger) CanLock() bool   { return !l.Locked }
func (l *Ledger) CanUnlock() bool { return l.Locked }

// CanAcceptEntries reports whether journal entries may be created under
// the ledger.
func (l *Ledger) CanAcceptEntries() bool {
	return !l.Locked
}

// Post marks the ledger as posted.
func (l *Ledger) Post() error {
	if !l.CanPost() {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "ledger is already posted")
	}
	l.Posted = true
	l.Touch()
	return nil
}

// Unpost clears the posted flag.
func (l *Ledger) Unpost() error {
	if !l.CanUnpost() {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "ledger is not posted")
	}
	l.Posted = false
	l.Touch()
	return nil
}

// Lock freezes the ledger.
func (l *Ledger) Lock() error {
	if !l.CanLock() {
		return apperror.NewLedgerLocked(l.ID)
	}
	l.Locked = true
	l.Touch()
	return nil
}

// Unlock releases the ledger.
func (l *Ledger) Unlock() error {
	if !l.CanUnlock() {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "ledger is not locked")
	}
	l.Locked = false
	l.Touch()
	return nil
}
