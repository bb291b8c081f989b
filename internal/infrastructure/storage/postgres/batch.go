package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchInserter writes many rows through the COPY protocol. Journal lines
// and closing snapshots are inserted this way.
type BatchInserter struct {
	txManager *TxManager
}

// NewBatchInserter creates a new batch inserter.
func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyFromSlice bulk inserts rows. Outside of a transaction one is opened
// so the copy stays all-or-nothing together with the caller's checks.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if t := b.txManager.GetTx(ctx); t != nil {
		return copyRows(ctx, t, table, columns, rows)
	}

	var n int64
	err := b.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		n, err = copyRows(ctx, b.txManager.GetTx(ctx), table, columns, rows)
		return err
	})
	return n, err
}

func copyRows(ctx context.Context, t *Tx, table string, columns []string, rows [][]any) (int64, error) {
	n, err := t.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, TranslateError(err, table, "copy into")
	}
	if n != int64(len(rows)) {
		return n, fmt.Errorf("copy into %s: wrote %d of %d rows", table, n, len(rows))
	}
	return n, nil
}

// BatchQuery represents a query in a batch.
type BatchQuery struct {
	SQL  string
	Args []any
}

// ExecuteBatch sends queries in a single round-trip inside the current
// transaction, or a new one.
func (b *BatchInserter) ExecuteBatch(ctx context.Context, table string, queries []BatchQuery) error {
	if len(queries) == 0 {
		return nil
	}
	return b.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		batch := &pgx.Batch{}
		for _, q := range queries {
			batch.Queue(q.SQL, q.Args...)
		}

		results := b.txManager.GetTx(ctx).SendBatch(ctx, batch)
		defer results.Close()

		for range queries {
			if _, err := results.Exec(); err != nil {
				return TranslateError(err, table, "batch insert into")
			}
		}
		return nil
	})
}
