package closing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/core/tx"
	"ledgerio/internal/domain/audit"
	"ledgerio/internal/domain/digest"
	"ledgerio/internal/domain/journal"
	"ledgerio/internal/domain/ledger"
	"ledgerio/pkg/logger"
)

const auditClosingEntry = "closing_entry"

// Digester computes the snapshot balances.
type Digester interface {
	Digest(ctx context.Context, req digest.Request) (*digest.Digest, error)
}

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Repo      Repository
	Ledgers   ledger.Repository
	Journal   journal.Repository
	Digester  Digester
	TxManager tx.Manager
	Audit     audit.Recorder
	Clock     func() time.Time
}

// Service manages closing entries. It also serves as the journal's
// closing boundary.
type Service struct {
	repo      Repository
	ledgers   ledger.Repository
	journal   journal.Repository
	digester  Digester
	txManager tx.Manager
	audit     audit.Recorder
	clock     func() time.Time
}

var _ journal.ClosingBoundary = (*Service)(nil)

// NewService creates a closing service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		repo:      cfg.Repo,
		ledgers:   cfg.Ledgers,
		journal:   cfg.Journal,
		digester:  cfg.Digester,
		txManager: cfg.TxManager,
		audit:     cfg.Audit,
		clock:     cfg.Clock,
	}
	if s.txManager == nil {
		s.txManager = tx.Noop{}
	}
	if s.audit == nil {
		s.audit = audit.Nop{}
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

// LastClosingDate returns the latest posted closing date of the entity.
func (s *Service) LastClosingDate(ctx context.Context, entityID id.ID) (*time.Time, error) {
	return s.repo.LastPostedDate(ctx, entityID)
}

// Get loads a closing entry with its snapshot lines.
func (s *Service) Get(ctx context.Context, closingID id.ID) (*ClosingEntry, error) {
	c, err := s.repo.Get(ctx, closingID)
	if err != nil {
		return nil, err
	}
	if c.Lines, err = s.repo.ListLines(ctx, closingID); err != nil {
		return nil, fmt.Errorf("list closing lines: %w", err)
	}
	return c, nil
}

// List returns the closing entries of an entity, latest first.
func (s *Service) List(ctx context.Context, entityID id.ID) ([]*ClosingEntry, error) {
	return s.repo.List(ctx, entityID)
}

// Create snapshots the entity's posted balances up to and including
// closingDate. The entry gets its own hidden, posted and locked ledger.
func (s *Service) Create(ctx context.Context, entityID id.ID, closingDate time.Time) (*ClosingEntry, error) {
	date := DateOf(closingDate)
	if date.After(DateOf(s.clock())) {
		return nil, apperror.NewValidation("closing date cannot be in the future").
			WithDetail("closing_date", date.Format(time.DateOnly))
	}

	var c *ClosingEntry
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.ledgers.GetEntity(ctx, entityID); err != nil {
			return err
		}
		if existing, err := s.repo.GetByDate(ctx, entityID, date); err == nil && existing != nil {
			return apperror.NewDuplicate("closing_entry", "closing_date", date.Format(time.DateOnly))
		} else if err != nil && !apperror.IsNotFound(err) {
			return err
		}

		l := ledger.NewLedger(entityID, fmt.Sprintf("Closing Entry %s Ledger", date.Format(time.DateOnly)))
		l.Hidden, l.Posted, l.Locked = true, true, true
		if err := s.ledgers.CreateLedger(ctx, l); err != nil {
			return fmt.Errorf("create closing ledger: %w", err)
		}

		c = NewClosingEntry(entityID, l.ID, date)
		if err := c.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, c); err != nil {
			return err
		}
		if err := s.refresh(ctx, c); err != nil {
			return err
		}
		return s.audit.Record(ctx, auditClosingEntry, c.ID, audit.ActionCreate, map[string]any{
			"closing_date": c.String(),
			"lines":        len(c.Lines),
		})
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "closing entry created",
		"closing_entry_id", c.ID,
		"entity_id", entityID,
		"closing_date", c.String(),
		"lines", len(c.Lines))
	return c, nil
}

// UpdateTransactions recomputes the snapshot of an unposted entry.
func (s *Service) UpdateTransactions(ctx context.Context, closingID id.ID) (*ClosingEntry, error) {
	var c *ClosingEntry
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		if c, err = s.repo.GetForUpdate(ctx, closingID); err != nil {
			return err
		}
		if !c.CanUpdate() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"cannot update transactions of a posted closing entry").
				WithDetail("closing_entry_id", c.ID)
		}
		if err := s.refresh(ctx, c); err != nil {
			return err
		}
		c.Touch()
		if err := s.repo.Update(ctx, c); err != nil {
			return fmt.Errorf("update closing entry: %w", err)
		}
		return s.audit.Record(ctx, auditClosingEntry, c.ID, audit.ActionUpdate, map[string]any{"lines": len(c.Lines)})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Post materializes the snapshot as posted and locked closing journal
// entries, one per unit and activity, and marks the entry posted.
func (s *Service) Post(ctx context.Context, closingID id.ID) (*ClosingEntry, error) {
	var c *ClosingEntry
	var entries int
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		if c, err = s.repo.GetForUpdate(ctx, closingID); err != nil {
			return err
		}
		if !c.CanPost() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				fmt.Sprintf("closing entry %s is already posted", c)).
				WithDetail("closing_entry_id", c.ID)
		}
		if c.Lines, err = s.repo.ListLines(ctx, c.ID); err != nil {
			return fmt.Errorf("list closing lines: %w", err)
		}
		if err := CheckBalanced(c.Lines); err != nil {
			return err
		}
		if entries, err = s.materialize(ctx, c); err != nil {
			return err
		}

		c.Posted = true
		c.Touch()
		if err := s.repo.Update(ctx, c); err != nil {
			return fmt.Errorf("update closing entry: %w", err)
		}
		return s.audit.Record(ctx, auditClosingEntry, c.ID, audit.ActionPost, map[string]any{"journal_entries": entries})
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "closing entry posted",
		"closing_entry_id", c.ID,
		"closing_date", c.String(),
		"journal_entries", entries)
	return c, nil
}

// Unpost deletes the closing journal entries and reopens the period.
func (s *Service) Unpost(ctx context.Context, closingID id.ID) (*ClosingEntry, error) {
	var c *ClosingEntry
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		if c, err = s.repo.GetForUpdate(ctx, closingID); err != nil {
			return err
		}
		if !c.CanUnpost() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				fmt.Sprintf("closing entry %s is not posted", c)).
				WithDetail("closing_entry_id", c.ID)
		}
		if _, err := s.journal.DeleteByLedger(ctx, c.LedgerID); err != nil {
			return fmt.Errorf("delete closing journal entries: %w", err)
		}
		c.Posted = false
		c.Touch()
		if err := s.repo.Update(ctx, c); err != nil {
			return fmt.Errorf("update closing entry: %w", err)
		}
		return s.audit.Record(ctx, auditClosingEntry, c.ID, audit.ActionUnpost, nil)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "closing entry unposted", "closing_entry_id", c.ID, "closing_date", c.String())
	return c, nil
}

// Delete removes an unposted closing entry together with its ledger.
func (s *Service) Delete(ctx context.Context, closingID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetForUpdate(ctx, closingID)
		if err != nil {
			return err
		}
		if !c.CanDelete() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "cannot delete a posted closing entry").
				WithDetail("closing_entry_id", c.ID)
		}
		if _, err := s.journal.DeleteByLedger(ctx, c.LedgerID); err != nil {
			return fmt.Errorf("delete closing journal entries: %w", err)
		}
		if err := s.repo.Delete(ctx, c.ID); err != nil {
			return fmt.Errorf("delete closing entry: %w", err)
		}
		if err := s.ledgers.DeleteLedger(ctx, c.LedgerID); err != nil {
			return fmt.Errorf("delete closing ledger: %w", err)
		}
		return s.audit.Record(ctx, auditClosingEntry, c.ID, audit.ActionDelete, nil)
	})
}

// Snapshot computes the closing lines for an entity and date without
// storing anything.
func (s *Service) Snapshot(ctx context.Context, entityID id.ID, closingDate time.Time) ([]Line, error) {
	req := digest.NewRequest(entityID)
	to := DateOf(closingDate).AddDate(0, 0, 1)
	req.ToDate = &to
	req.ByUnit = true
	req.ByActivity = true
	req.Signs = false

	d, err := s.digester.Digest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("closing digest: %w", err)
	}
	lines := make([]Line, 0, len(d.Accounts))
	for _, b := range d.Accounts {
		l := Line{
			AccountID:   b.AccountID,
			AccountCode: b.Code,
			UnitID:      b.UnitID,
			Activity:    b.Activity,
			TxType:      b.BalanceType,
			Balance:     b.Balance,
		}
		l.Normalize()
		lines = append(lines, l)
	}
	return lines, nil
}

func (s *Service) refresh(ctx context.Context, c *ClosingEntry) error {
	lines, err := s.Snapshot(ctx, c.EntityID, c.ClosingDate)
	if err != nil {
		return err
	}
	for i := range lines {
		lines[i].ClosingEntryID = c.ID
	}
	if err := s.repo.ReplaceLines(ctx, c.ID, lines); err != nil {
		return fmt.Errorf("replace closing lines: %w", err)
	}
	c.Lines = lines
	return nil
}

func (s *Service) materialize(ctx context.Context, c *ClosingEntry) (int, error) {
	groups := make(map[groupKey][]Line)
	var keys []groupKey
	for _, l := range c.Lines {
		k := l.key()
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], l)
	}
	sort.Slice(keys, func(i, j int) bool {
		if a, b := keys[i].unit.String(), keys[j].unit.String(); a != b {
			return a < b
		}
		return keys[i].activity < keys[j].activity
	})

	for i, k := range keys {
		lines := groups[k]
		je := journal.NewJournalEntry(c.LedgerID, c.EntityID, lines[0].UnitID, c.Timestamp(),
			fmt.Sprintf("Closing Entry %s", c))
		je.Number = fmt.Sprintf("CE-%s-%03d", c.ClosingDate.Format("20060102"), i+1)
		je.Origin = Origin
		je.Activity = lines[0].Activity
		je.Posted, je.Locked, je.IsClosingEntry = true, true, true
		if err := s.journal.Create(ctx, je); err != nil {
			return 0, fmt.Errorf("create closing journal entry: %w", err)
		}

		txs := make([]journal.Transaction, 0, len(lines))
		for _, l := range lines {
			txs = append(txs, journal.NewTransaction(je.ID, l.AccountID, l.TxType, l.Balance, ""))
		}
		if err := s.journal.CreateTransactions(ctx, txs); err != nil {
			return 0, fmt.Errorf("create closing transactions: %w", err)
		}
	}
	return len(keys), nil
}
