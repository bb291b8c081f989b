// Package closing_repo provides the PostgreSQL implementation of
// closing.Repository.
package closing_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/closing"
	"ledgerio/internal/infrastructure/storage/postgres"
)

const linesTable = "closing_entry_lines"

// Repo implements closing.Repository.
type Repo struct {
	entries *postgres.Table[closing.ClosingEntry]
	lines   *postgres.Table[closing.Line]
	batch   *postgres.BatchInserter
}

var _ closing.Repository = (*Repo)(nil)

// New creates the repository.
func New(txm *postgres.TxManager) *Repo {
	return &Repo{
		entries: postgres.NewTable[closing.ClosingEntry](txm, "closing_entries"),
		lines:   postgres.NewTable[closing.Line](txm, linesTable),
		batch:   postgres.NewBatchInserter(txm),
	}
}

func (r *Repo) Create(ctx context.Context, c *closing.ClosingEntry) error {
	err := r.entries.Insert(ctx, c)
	if apperror.HasCode(err, apperror.CodeDuplicate) {
		return apperror.NewDuplicate("closing_entry", "closing_date", c.String()).WithCause(err)
	}
	return err
}

func (r *Repo) Get(ctx context.Context, closingID id.ID) (*closing.ClosingEntry, error) {
	return r.entries.GetByID(ctx, closingID, false)
}

func (r *Repo) GetForUpdate(ctx context.Context, closingID id.ID) (*closing.ClosingEntry, error) {
	return r.entries.GetByID(ctx, closingID, true)
}

func (r *Repo) GetByDate(ctx context.Context, entityID id.ID, date time.Time) (*closing.ClosingEntry, error) {
	day := closing.DateOf(date)
	return r.entries.Get(ctx, r.entries.Select().
		Where(squirrel.Eq{"entity_id": entityID, "closing_date": day}),
		day.Format(time.DateOnly))
}

func (r *Repo) List(ctx context.Context, entityID id.ID) ([]*closing.ClosingEntry, error) {
	return r.entries.List(ctx, r.entries.Select().
		Where(squirrel.Eq{"entity_id": entityID}).
		OrderBy("closing_date DESC"))
}

func (r *Repo) Update(ctx context.Context, c *closing.ClosingEntry) error {
	return r.entries.Update(ctx, c)
}

// Delete removes the entry; its lines go with it.
func (r *Repo) Delete(ctx context.Context, closingID id.ID) error {
	return r.entries.Delete(ctx, closingID)
}

func (r *Repo) ReplaceLines(ctx context.Context, closingID id.ID, lines []closing.Line) error {
	if _, err := r.lines.DeleteAll(ctx, squirrel.Eq{"closing_entry_id": closingID}); err != nil {
		return err
	}

	cols := r.lines.Columns("")
	rows := make([][]any, len(lines))
	for i, l := range lines {
		var activity *string
		if l.Activity != nil {
			a := string(*l.Activity)
			activity = &a
		}
		rows[i] = []any{
			closingID, l.AccountID, l.AccountCode, l.UnitID, activity,
			string(l.TxType), postgres.Numeric(l.Balance),
		}
	}
	if _, err := r.batch.CopyFromSlice(ctx, linesTable, cols, rows); err != nil {
		return fmt.Errorf("copy closing lines: %w", err)
	}
	return nil
}

func (r *Repo) ListLines(ctx context.Context, closingID id.ID) ([]closing.Line, error) {
	rows, err := r.lines.List(ctx, r.lines.Select().
		Where(squirrel.Eq{"closing_entry_id": closingID}).
		OrderBy("account_code", "tx_type"))
	if err != nil {
		return nil, err
	}
	out := make([]closing.Line, len(rows))
	for i, l := range rows {
		out[i] = *l
	}
	return out, nil
}

func (r *Repo) LastPostedDate(ctx context.Context, entityID id.ID) (*time.Time, error) {
	sql, args, err := postgres.Builder().
		Select("MAX(closing_date)").
		From(r.entries.Name()).
		Where(squirrel.Eq{"entity_id": entityID, "posted": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build last closing query: %w", err)
	}
	var last *time.Time
	if err := r.entries.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&last); err != nil {
		return nil, fmt.Errorf("last closing date: %w", err)
	}
	return last, nil
}
