package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"ledgerio/internal/core/apperror"
)

// PostgreSQL error codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgSerialization       = "40001"
)

// TranslateError maps constraint violations to AppErrors. Other errors are
// wrapped with op.
func TranslateError(err error, table, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s %s: %w", op, table, err)
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return apperror.NewDuplicate(table, pgErr.ConstraintName, pgErr.Detail).WithCause(err)
	case pgForeignKeyViolation:
		return apperror.NewIntegrity("record is referenced by or references a missing record").
			WithDetail("table", table).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgCheckViolation:
		return apperror.NewValidation(pgErr.Message).
			WithDetail("table", table).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgSerialization:
		return apperror.NewConflict("concurrent update, retry the operation").
			WithDetail("table", table).
			WithCause(err)
	}
	return fmt.Errorf("%s %s: %w", op, table, err)
}
