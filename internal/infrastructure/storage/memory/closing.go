package memory

import (
	"context"
	"sort"
	"time"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/closing"
)

// ClosingRepo implements closing.Repository.
type ClosingRepo struct {
	s *Store
}

var _ closing.Repository = (*ClosingRepo)(nil)

func storedClosing(c *closing.ClosingEntry) closing.ClosingEntry {
	cp := *c
	cp.Lines = nil
	return cp
}

func (r *ClosingRepo) Create(_ context.Context, c *closing.ClosingEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.closings {
		if existing.EntityID == c.EntityID && existing.ClosingDate.Equal(c.ClosingDate) {
			return apperror.NewDuplicate("closing_entry", "closing_date", c.ClosingDate.Format(time.DateOnly))
		}
	}
	r.s.closings[c.ID] = storedClosing(c)
	return nil
}

func (r *ClosingRepo) Get(_ context.Context, closingID id.ID) (*closing.ClosingEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.closings[closingID]
	if !ok {
		return nil, apperror.NewNotFound("closing_entry", closingID)
	}
	return &c, nil
}

func (r *ClosingRepo) GetForUpdate(ctx context.Context, closingID id.ID) (*closing.ClosingEntry, error) {
	return r.Get(ctx, closingID)
}

func (r *ClosingRepo) GetByDate(_ context.Context, entityID id.ID, date time.Time) (*closing.ClosingEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.closings {
		if c.EntityID == entityID && c.ClosingDate.Equal(closing.DateOf(date)) {
			return &c, nil
		}
	}
	return nil, apperror.NewNotFound("closing_entry", date.Format(time.DateOnly))
}

func (r *ClosingRepo) List(_ context.Context, entityID id.ID) ([]*closing.ClosingEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*closing.ClosingEntry
	for _, c := range r.s.closings {
		if c.EntityID == entityID {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClosingDate.After(out[j].ClosingDate) })
	return out, nil
}

func (r *ClosingRepo) Update(_ context.Context, c *closing.ClosingEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.closings[c.ID]; !ok {
		return apperror.NewNotFound("closing_entry", c.ID)
	}
	r.s.closings[c.ID] = storedClosing(c)
	return nil
}

func (r *ClosingRepo) Delete(_ context.Context, closingID id.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.closings, closingID)
	delete(r.s.closingLines, closingID)
	return nil
}

func (r *ClosingRepo) ReplaceLines(_ context.Context, closingID id.ID, lines []closing.Line) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.closingLines[closingID] = append([]closing.Line(nil), lines...)
	return nil
}

func (r *ClosingRepo) ListLines(_ context.Context, closingID id.ID) ([]closing.Line, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]closing.Line(nil), r.s.closingLines[closingID]...), nil
}

func (r *ClosingRepo) LastPostedDate(_ context.Context, entityID id.ID) (*time.Time, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var last *time.Time
	for _, c := range r.s.closings {
		if c.EntityID != entityID || !c.Posted {
			continue
		}
		if last == nil || c.ClosingDate.After(*last) {
			d := c.ClosingDate
			last = &d
		}
	}
	return last, nil
}
