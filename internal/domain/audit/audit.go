// Package audit defines how ledger services record state transitions of
// journal entries, ledgers and closing entries.
package audit

import (
	"context"
	"sync"

	appctx "ledgerio/internal/core/context"
	"ledgerio/internal/core/id"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionPost   Action = "post"
	ActionUnpost Action = "unpost"
	ActionLock   Action = "lock"
	ActionUnlock Action = "unlock"
)

// Recorder persists audit records. Implementations must write inside the
// transaction carried by ctx so a rolled back transition leaves no trace.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
}

// Nop discards every record.
type Nop struct{}

func (Nop) Record(context.Context, string, id.ID, Action, map[string]any) error { return nil }

// Entry is one in-memory record.
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     Action
	Actor      string
	Changes    map[string]any
}

// Memory keeps records in process. Used by tests and the file-backed CLI.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

// Record implements Recorder.
func (m *Memory) Record(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, Entry{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Actor:      appctx.GetActor(ctx),
		Changes:    changes,
	})
	return nil
}

// Savepoint returns a function that drops everything recorded after the
// call, so records made by a rolled back unit of work disappear with it.
func (m *Memory) Savepoint() func() {
	m.mu.Lock()
	n := len(m.entries)
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if len(m.entries) > n {
			m.entries = m.entries[:n]
		}
	}
}

// Entries returns a copy of everything recorded so far.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Actions lists the recorded actions for one entity, oldest first.
func (m *Memory) Actions(entityID id.ID) []Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Action
	for _, e := range m.entries {
		if e.EntityID == entityID {
			out = append(out, e.Action)
		}
	}
	return out
}
