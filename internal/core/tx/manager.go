// Package tx provides transaction management abstractions so the ledger
// services stay independent of the database driver.
package tx

import (
	"context"
)

// Manager runs a unit of work atomically.
//
// Posting a journal entry, committing a batch of transactions and
// materializing a closing entry each run inside exactly one call.
// Nested calls reuse the transaction already carried by ctx.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transactions, used by the
// digest so a report sees one consistent snapshot.
type ReadOnlyManager interface {
	Manager

	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Noop executes fn directly. It backs in-memory repositories in tests and
// the file-based CLI mode where no database is involved.
type Noop struct{}

func (Noop) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (Noop) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
