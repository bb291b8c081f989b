// Package numerator provides the PostgreSQL implementation of journal entry
// numbering. It implements core/numerator.Generator.
package numerator

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	corenumerator "ledgerio/internal/core/numerator"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFunc resolves the querier for ctx, normally the transaction the
// journal entry is being saved in.
type QuerierFunc func(ctx context.Context) Querier

// Service allocates journal entry numbers from sys_sequences.
//
// The UPSERT takes a row lock on the sequence, so two transactions numbering
// entries for the same entity, unit and fiscal year serialize on it and the
// sequence has no gaps as long as the surrounding transaction commits.
type Service struct {
	querier QuerierFunc
}

var _ corenumerator.Generator = (*Service)(nil)

// New creates a numerator bound to a fixed querier.
func New(q Querier) *Service {
	return &Service{querier: func(context.Context) Querier { return q }}
}

// NewWithResolver creates a numerator that picks the querier per call.
func NewWithResolver(fn QuerierFunc) *Service {
	return &Service{querier: fn}
}

// GetNextNumber implements corenumerator.Generator.
func (s *Service) GetNextNumber(ctx context.Context, cfg corenumerator.Config, key corenumerator.Key) (string, error) {
	if s == nil || s.querier == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	var num int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, key.String()).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next journal entry number: %w", err)
	}

	return cfg.Format(key, num), nil
}

// SetNextNumber implements corenumerator.Generator.
func (s *Service) SetNextNumber(ctx context.Context, key corenumerator.Key, value int64) error {
	var result int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, key.String(), value).Scan(&result)
	if err != nil {
		return fmt.Errorf("set journal entry sequence: %w", err)
	}
	return nil
}

// ParseSequence extracts the numeric tail of a formatted number.
// Returns -1 if parsing fails.
func ParseSequence(formatted string) int64 {
	idx := strings.LastIndex(formatted, "-")
	if idx < 0 || idx == len(formatted)-1 {
		return -1
	}
	var num int64
	if _, err := fmt.Sscanf(formatted[idx+1:], "%d", &num); err != nil {
		return -1
	}
	return num
}
