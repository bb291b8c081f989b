package numerator

import (
	"context"
)

// Generator hands out sequential journal entry numbers.
// Implementations live in the infrastructure layer and must lock the
// sequence row so concurrent postings never share a number.
type Generator interface {
	// GetNextNumber allocates and formats the next number for key.
	GetNextNumber(ctx context.Context, cfg Config, key Key) (string, error)

	// SetNextNumber overwrites the sequence value (data migration).
	SetNextNumber(ctx context.Context, key Key, value int64) error
}
