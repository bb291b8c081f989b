package closing

import (
	"context"
	"time"

	"ledgerio/internal/core/id"
)

// Repository persists closing entries and their snapshot lines.
type Repository interface {
	// Create fails with a duplicate error when the entity already has a
	// closing entry on the same date.
	Create(ctx context.Context, c *ClosingEntry) error
	Get(ctx context.Context, closingID id.ID) (*ClosingEntry, error)
	GetForUpdate(ctx context.Context, closingID id.ID) (*ClosingEntry, error)
	GetByDate(ctx context.Context, entityID id.ID, date time.Time) (*ClosingEntry, error)
	List(ctx context.Context, entityID id.ID) ([]*ClosingEntry, error)
	Update(ctx context.Context, c *ClosingEntry) error
	Delete(ctx context.Context, closingID id.ID) error

	ReplaceLines(ctx context.Context, closingID id.ID, lines []Line) error
	ListLines(ctx context.Context, closingID id.ID) ([]Line, error)

	// LastPostedDate returns the latest posted closing date, nil if none.
	LastPostedDate(ctx context.Context, entityID id.ID) (*time.Time, error)
}
