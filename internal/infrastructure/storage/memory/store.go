// Package memory is an in-process implementation of the ledger
// repositories. It backs the file mode of ledgerctl and the service tests.
package memory

import (
	"sync"

	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/closing"
	"ledgerio/internal/domain/journal"
	"ledgerio/internal/domain/ledger"
)

// Store holds every record behind one mutex. Repositories handed out by
// the accessor methods share it.
type Store struct {
	mu sync.RWMutex

	entities map[id.ID]ledger.Entity
	units    map[id.ID]ledger.Unit
	ledgers  map[id.ID]ledger.Ledger

	charts   map[id.ID]accounts.Chart
	accounts map[id.ID]accounts.Account

	entries map[id.ID]journal.JournalEntry
	lines   map[id.ID]storedLine
	seq     int64

	closings     map[id.ID]closing.ClosingEntry
	closingLines map[id.ID][]closing.Line
}

type storedLine struct {
	journal.Transaction
	seq int64
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entities:     make(map[id.ID]ledger.Entity),
		units:        make(map[id.ID]ledger.Unit),
		ledgers:      make(map[id.ID]ledger.Ledger),
		charts:       make(map[id.ID]accounts.Chart),
		accounts:     make(map[id.ID]accounts.Account),
		entries:      make(map[id.ID]journal.JournalEntry),
		lines:        make(map[id.ID]storedLine),
		closings:     make(map[id.ID]closing.ClosingEntry),
		closingLines: make(map[id.ID][]closing.Line),
	}
}

// Ledgers returns the entity, unit and ledger repository.
func (s *Store) Ledgers() *LedgerRepo { return &LedgerRepo{s: s} }

// Accounts returns the chart of accounts repository.
func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s: s} }

// Journal returns the journal entry repository. It is also the digest
// source over the stored lines.
func (s *Store) Journal() *JournalRepo { return &JournalRepo{s: s} }

// Closing returns the closing entry repository.
func (s *Store) Closing() *ClosingRepo { return &ClosingRepo{s: s} }

func copyID(v *id.ID) *id.ID {
	if v == nil {
		return nil
	}
	return id.Ptr(*v)
}

func copyActivity(a *journal.Activity) *journal.Activity {
	if a == nil {
		return nil
	}
	v := *a
	return &v
}
