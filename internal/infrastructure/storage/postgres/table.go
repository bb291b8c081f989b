package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
)

// Table provides the CRUD statements shared by the ledger repositories for
// one table whose rows map onto T through "db" tags.
//
// Records bump their own version (entity.Base.Touch) before an update, so
// Update expects the stored row to be exactly one version behind.
type Table[T any] struct {
	txm  *TxManager
	name string
	cols []string
}

// NewTable creates a Table. When cols is empty the columns are taken from
// the db tags of T.
func NewTable[T any](txm *TxManager, name string, cols ...string) *Table[T] {
	if len(cols) == 0 {
		cols = ExtractDBColumns[T]()
	}
	return &Table[T]{txm: txm, name: name, cols: cols}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.name }

// Columns returns the mapped columns qualified with alias, or bare when
// alias is empty.
func (t *Table[T]) Columns(alias string) []string {
	if alias == "" {
		return t.cols
	}
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = alias + "." + c
	}
	return out
}

// Querier returns the querier for ctx.
func (t *Table[T]) Querier(ctx context.Context) Querier {
	return t.txm.GetQuerier(ctx)
}

func (t *Table[T]) values(v *T) map[string]any {
	data := StructToMap(v)
	out := make(map[string]any, len(t.cols))
	for _, col := range t.cols {
		if val, ok := data[col]; ok {
			out[col] = val
		}
	}
	return out
}

// Insert writes v.
func (t *Table[T]) Insert(ctx context.Context, v *T) error {
	sql, args, err := Builder().Insert(t.name).SetMap(t.values(v)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := t.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return TranslateError(err, t.name, "insert")
	}
	return nil
}

// Update writes v with an optimistic lock on its version.
func (t *Table[T]) Update(ctx context.Context, v *T) error {
	data := t.values(v)
	rowID, ok := data["id"]
	if !ok {
		return fmt.Errorf("%s: record has no id column", t.name)
	}
	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("%s: record has no int version column", t.name)
	}
	delete(data, "id")
	delete(data, "created_at")

	sql, args, err := Builder().
		Update(t.name).
		SetMap(data).
		Where(squirrel.Eq{"id": rowID, "version": version - 1}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := t.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return TranslateError(err, t.name, "update")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConflict(t.name+" was modified concurrently").
			WithDetail("id", rowID).
			WithDetail("version", version)
	}
	return nil
}

// Delete removes the row by id.
func (t *Table[T]) Delete(ctx context.Context, rowID id.ID) error {
	return t.DeleteWhere(ctx, squirrel.Eq{"id": rowID}, rowID.String())
}

// DeleteWhere removes the rows matching pred; NotFound when none matched.
func (t *Table[T]) DeleteWhere(ctx context.Context, pred squirrel.Sqlizer, key string) error {
	n, err := t.DeleteAll(ctx, pred)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NewNotFound(t.name, key)
	}
	return nil
}

// DeleteAll removes the rows matching pred and reports how many went.
func (t *Table[T]) DeleteAll(ctx context.Context, pred squirrel.Sqlizer) (int64, error) {
	sql, args, err := Builder().Delete(t.name).Where(pred).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	result, err := t.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, TranslateError(err, t.name, "delete")
	}
	return result.RowsAffected(), nil
}

// Select starts a SELECT of the mapped columns.
func (t *Table[T]) Select() squirrel.SelectBuilder {
	return Builder().Select(t.cols...).From(t.name)
}

// Get scans the first row of q; NotFound with key when there is none.
func (t *Table[T]) Get(ctx context.Context, q squirrel.SelectBuilder, key any) (*T, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	v := new(T)
	if err := pgxscan.Get(ctx, t.Querier(ctx), v, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(t.name, key)
		}
		return nil, fmt.Errorf("get %s: %w", t.name, err)
	}
	return v, nil
}

// GetByID loads a row by id, optionally locking it.
func (t *Table[T]) GetByID(ctx context.Context, rowID id.ID, forUpdate bool) (*T, error) {
	q := t.Select().Where(squirrel.Eq{"id": rowID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	return t.Get(ctx, q, rowID)
}

// List scans every row of q.
func (t *Table[T]) List(ctx context.Context, q squirrel.SelectBuilder) ([]*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var out []*T
	if err := pgxscan.Select(ctx, t.Querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	return out, nil
}

// Exists reports whether q returns a row.
func (t *Table[T]) Exists(ctx context.Context, q squirrel.SelectBuilder) (bool, error) {
	sql, args, err := q.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}
	var ok bool
	if err := t.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("exists %s: %w", t.name, err)
	}
	return ok, nil
}
