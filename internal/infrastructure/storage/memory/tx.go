package memory

import (
	"context"
	"maps"
	"sync"
)

// Savepoint is in-process state that joins store transactions. Savepoint
// captures the current state and returns the function restoring it.
type Savepoint interface {
	Savepoint() (restore func())
}

type txKey struct{}

// TxManager runs units of work over a Store. A unit that fails or panics
// restores the store, and every other participant, to the state captured
// when the outermost unit began. Nested calls join the outer unit. Units
// are serialized; reads outside a unit are not isolated from a unit in
// progress.
type TxManager struct {
	mu    sync.Mutex
	parts []Savepoint
}

// NewTxManager creates a transaction manager over s and the extra
// participants.
func NewTxManager(s *Store, extra ...Savepoint) *TxManager {
	return &TxManager{parts: append([]Savepoint{s}, extra...)}
}

// RunInTransaction implements tx.Manager.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if m.inside(ctx) {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	restores := make([]func(), len(m.parts))
	for i, p := range m.parts {
		restores[i] = p.Savepoint()
	}
	rollback := func() {
		for _, restore := range restores {
			restore()
		}
	}
	defer func() {
		if r := recover(); r != nil {
			rollback()
			panic(r)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, m)); err != nil {
		rollback()
	}
	return err
}

// ReadOnly implements tx.ReadOnlyManager. The unit sees no other unit's
// partial writes.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.inside(ctx) {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, m))
}

func (m *TxManager) inside(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*TxManager)
	return owner == m
}

// Savepoint implements Savepoint. Stored values are replaced, never
// mutated in place, so shallow copies of the maps are enough.
func (s *Store) Savepoint() func() {
	s.mu.RLock()
	snap := &Store{
		entities:     maps.Clone(s.entities),
		units:        maps.Clone(s.units),
		ledgers:      maps.Clone(s.ledgers),
		charts:       maps.Clone(s.charts),
		accounts:     maps.Clone(s.accounts),
		entries:      maps.Clone(s.entries),
		lines:        maps.Clone(s.lines),
		seq:          s.seq,
		closings:     maps.Clone(s.closings),
		closingLines: maps.Clone(s.closingLines),
	}
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.entities, s.units, s.ledgers = snap.entities, snap.units, snap.ledgers
		s.charts, s.accounts = snap.charts, snap.accounts
		s.entries, s.lines, s.seq = snap.entries, snap.lines, snap.seq
		s.closings, s.closingLines = snap.closings, snap.closingLines
	}
}
