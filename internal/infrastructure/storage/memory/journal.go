package memory

import (
	"context"
	"sort"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/balances"
	"ledgerio/internal/domain/digest"
	"ledgerio/internal/domain/journal"
)

// JournalRepo implements journal.Repository and digest.Source.
type JournalRepo struct {
	s *Store
}

var (
	_ journal.Repository = (*JournalRepo)(nil)
	_ digest.Source      = (*JournalRepo)(nil)
)

func storedEntry(je *journal.JournalEntry) journal.JournalEntry {
	cp := *je
	cp.EntityUnitID = copyID(je.EntityUnitID)
	cp.Activity = copyActivity(je.Activity)
	cp.Unverify()
	return cp
}

func (r *JournalRepo) Create(_ context.Context, je *journal.JournalEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ledgers[je.LedgerID]; !ok {
		return apperror.NewNotFound("ledger", je.LedgerID)
	}
	if _, ok := r.s.entries[je.ID]; ok {
		return apperror.NewDuplicate("journal_entry", "id", je.ID.String())
	}
	if je.Number != "" {
		for _, e := range r.s.entries {
			if e.EntityID == je.EntityID && e.Number == je.Number {
				return apperror.NewDuplicate("journal_entry", "je_number", je.Number)
			}
		}
	}
	r.s.entries[je.ID] = storedEntry(je)
	return nil
}

func (r *JournalRepo) Get(_ context.Context, jeID id.ID) (*journal.JournalEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	je, ok := r.s.entries[jeID]
	if !ok {
		return nil, apperror.NewNotFound("journal_entry", jeID)
	}
	return &je, nil
}

func (r *JournalRepo) GetForUpdate(ctx context.Context, jeID id.ID) (*journal.JournalEntry, error) {
	return r.Get(ctx, jeID)
}

func (r *JournalRepo) Update(_ context.Context, je *journal.JournalEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.entries[je.ID]; !ok {
		return apperror.NewNotFound("journal_entry", je.ID)
	}
	r.s.entries[je.ID] = storedEntry(je)
	return nil
}

func (r *JournalRepo) Delete(_ context.Context, jeID id.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.deleteLocked(jeID)
	return nil
}

func (r *JournalRepo) deleteLocked(jeID id.ID) {
	for txID, l := range r.s.lines {
		if l.JournalEntryID == jeID {
			delete(r.s.lines, txID)
		}
	}
	delete(r.s.entries, jeID)
}

func (r *JournalRepo) ListByLedger(_ context.Context, ledgerID id.ID) ([]*journal.JournalEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*journal.JournalEntry
	for _, je := range r.s.entries {
		if je.LedgerID == ledgerID {
			je := je
			out = append(out, &je)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

func (r *JournalRepo) DeleteByLedger(_ context.Context, ledgerID id.ID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for jeID, je := range r.s.entries {
		if je.LedgerID == ledgerID {
			r.deleteLocked(jeID)
			n++
		}
	}
	return n, nil
}

// describe fills the account snapshot the way a joined read would.
func (r *JournalRepo) describe(l storedLine) journal.Transaction {
	t := l.Transaction
	if a, ok := r.s.accounts[t.AccountID]; ok {
		t.Describe(&a)
	}
	return t
}

func (r *JournalRepo) ListTransactions(_ context.Context, jeID id.ID) ([]journal.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var stored []storedLine
	for _, l := range r.s.lines {
		if l.JournalEntryID == jeID {
			stored = append(stored, l)
		}
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].seq < stored[j].seq })
	out := make([]journal.Transaction, 0, len(stored))
	for _, l := range stored {
		out = append(out, r.describe(l))
	}
	return out, nil
}

func (r *JournalRepo) GetTransaction(_ context.Context, txID id.ID) (*journal.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.lines[txID]
	if !ok {
		return nil, apperror.NewNotFound("transaction", txID)
	}
	t := r.describe(l)
	return &t, nil
}

// CreateTransactions stores all lines or none.
func (r *JournalRepo) CreateTransactions(_ context.Context, lines []journal.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range lines {
		if _, ok := r.s.entries[l.JournalEntryID]; !ok {
			return apperror.NewNotFound("journal_entry", l.JournalEntryID)
		}
		if _, ok := r.s.accounts[l.AccountID]; !ok {
			return apperror.NewNotFound("account", l.AccountID)
		}
	}
	for _, l := range lines {
		r.s.seq++
		r.s.lines[l.ID] = storedLine{Transaction: l, seq: r.s.seq}
	}
	return nil
}

func (r *JournalRepo) UpdateTransaction(_ context.Context, line *journal.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.lines[line.ID]
	if !ok {
		return apperror.NewNotFound("transaction", line.ID)
	}
	current.Transaction = *line
	r.s.lines[line.ID] = current
	return nil
}

func (r *JournalRepo) DeleteTransaction(_ context.Context, txID id.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.lines, txID)
	return nil
}

// BalanceRows implements digest.Source by joining the stored lines with
// their entries, ledgers, units and accounts.
func (r *JournalRepo) BalanceRows(ctx context.Context, q digest.Query) ([]balances.Row, error) {
	r.s.mu.RLock()
	stored := make([]storedLine, 0, len(r.s.lines))
	for _, l := range r.s.lines {
		stored = append(stored, l)
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].seq < stored[j].seq })

	src := make(digest.SliceSource, 0, len(stored))
	for _, l := range stored {
		je, ok := r.s.entries[l.JournalEntryID]
		if !ok {
			continue
		}
		a, ok := r.s.accounts[l.AccountID]
		if !ok {
			continue
		}
		line := digest.Line{
			EntityID:       je.EntityID,
			LedgerID:       je.LedgerID,
			LedgerPosted:   r.s.ledgers[je.LedgerID].Posted,
			JournalEntryID: je.ID,
			Posted:         je.Posted,
			IsClosingEntry: je.IsClosingEntry,
			UnitID:         copyID(je.EntityUnitID),
			Timestamp:      je.Timestamp,
			Activity:       copyActivity(je.Activity),
			AccountID:      a.ID,
			Code:           a.Code,
			Name:           a.Name,
			Role:           a.Role,
			BalanceType:    a.BalanceType,
			TxType:         l.TxType,
			Amount:         l.Amount,
		}
		if je.EntityUnitID != nil {
			line.UnitName = r.s.units[*je.EntityUnitID].Name
		}
		src = append(src, line)
	}
	r.s.mu.RUnlock()

	return src.BalanceRows(ctx, q)
}
