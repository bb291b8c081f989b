package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"ledgerio/internal/core/apperror"
)

var ledgerDay = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"unique", pgUniqueViolation, apperror.CodeDuplicate},
		{"foreign key", pgForeignKeyViolation, apperror.CodeIntegrity},
		{"check", pgCheckViolation, apperror.CodeValidation},
		{"serialization", pgSerialization, apperror.CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TranslateError(&pgconn.PgError{Code: tt.code, ConstraintName: "c"}, "journal_entries", "insert")
			assert.True(t, apperror.HasCode(err, tt.want), "got %v", err)
		})
	}
}

func TestTranslateError_PassesThrough(t *testing.T) {
	assert.NoError(t, TranslateError(nil, "ledgers", "update"))

	cause := errors.New("connection reset")
	err := TranslateError(cause, "ledgers", "update")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "update ledgers")
	assert.False(t, apperror.IsAppError(err))
}
