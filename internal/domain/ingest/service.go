package ingest

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/core/tx"
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/journal"
	"ledgerio/pkg/logger"
)

// Config holds the drift settings.
type Config struct {
	// Tolerance is the largest drift ReconcileDrift may absorb.
	Tolerance types.Money `yaml:"tolerance"`
	// Step is the size of one correction nudge.
	Step types.Money `yaml:"correction_step"`
}

// DefaultConfig returns a tolerance of 0.02 corrected in steps of 0.01.
func DefaultConfig() Config {
	return Config{
		Tolerance: types.MustMoney("0.02"),
		Step:      types.MustMoney("0.01"),
	}
}

// Journal is the part of the journal service the commit path drives.
type Journal interface {
	Create(ctx context.Context, je *journal.JournalEntry) error
	AddTransactions(ctx context.Context, jeID id.ID, lines []journal.Transaction) ([]journal.Transaction, error)
	Save(ctx context.Context, je *journal.JournalEntry, opts journal.SaveOptions) error
}

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Journal   Journal
	Ledgers   journal.Ledgers
	Boundary  journal.ClosingBoundary
	TxManager tx.Manager
	Config    Config
	// Seed fixes the correction source; zero seeds from the clock.
	Seed int64
}

// Service commits balanced transaction sets.
type Service struct {
	journal   Journal
	ledgers   journal.Ledgers
	boundary  journal.ClosingBoundary
	txManager tx.Manager
	cfg       Config

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewService creates an ingest service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		journal:   cfg.Journal,
		ledgers:   cfg.Ledgers,
		boundary:  cfg.Boundary,
		txManager: cfg.TxManager,
		cfg:       cfg.Config,
	}
	if s.boundary == nil {
		s.boundary = journal.NoBoundary{}
	}
	if s.txManager == nil {
		s.txManager = tx.Noop{}
	}
	if s.cfg.Tolerance.IsZero() && s.cfg.Step.IsZero() {
		s.cfg = DefaultConfig()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.rnd = rand.New(rand.NewSource(seed))
	return s
}

// SetBoundary replaces the closing boundary.
func (s *Service) SetBoundary(b journal.ClosingBoundary) {
	if b == nil {
		b = journal.NoBoundary{}
	}
	s.boundary = b
}

// CommitRequest is one journal entry worth of lines.
type CommitRequest struct {
	Date        time.Time `json:"date"`
	Lines       []Line    `json:"lines"`
	LedgerID    id.ID     `json:"ledgerId"`
	UnitID      *id.ID    `json:"unitId,omitempty"`
	Posted      bool      `json:"posted"`
	Description string    `json:"description,omitempty"`
	Origin      string    `json:"origin,omitempty"`
	// ReconcileDrift absorbs drift within the tolerance instead of
	// rejecting the lines.
	ReconcileDrift bool `json:"reconcileDrift"`
}

// Validate checks the request shape.
func (r CommitRequest) Validate() error {
	if id.IsNil(r.LedgerID) {
		return apperror.NewValidation("ledger is required")
	}
	if r.Date.IsZero() {
		return apperror.NewValidation("journal entry date is required")
	}
	if len(r.Lines) == 0 {
		return apperror.NewValidation("at least one transaction line is required")
	}
	for i, l := range r.Lines {
		if err := l.Validate(); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return appErr.WithDetail("line", i)
			}
			return err
		}
	}
	return nil
}

// CommitTxs writes the lines as one journal entry. The balance is checked
// before any row is written; the entry is created unposted, its lines are
// added, and it is then saved with verification (and posted when
// requested). Everything runs in one database transaction.
func (s *Service) CommitTxs(ctx context.Context, req CommitRequest) (*journal.JournalEntry, []journal.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	lines := append([]Line(nil), req.Lines...)
	if err := s.checkBalance(lines, req.ReconcileDrift); err != nil {
		return nil, nil, err
	}

	var (
		je  *journal.JournalEntry
		txs []journal.Transaction
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		l, err := s.ledgers.GetLedger(ctx, req.LedgerID)
		if err != nil {
			return err
		}

		closing, err := s.boundary.LastClosingDate(ctx, l.EntityID)
		if err != nil {
			return fmt.Errorf("get last closing date: %w", err)
		}
		if closing != nil && !dateOf(*closing).Before(dateOf(req.Date)) {
			return apperror.NewPeriodClosed(closing.Format(time.DateOnly)).
				WithDetail("date", req.Date.Format(time.DateOnly))
		}
		if l.Locked {
			return apperror.NewLedgerLocked(l.ID)
		}
		if req.UnitID != nil {
			unit, err := s.ledgers.GetUnit(ctx, *req.UnitID)
			if err != nil {
				return err
			}
			if unit.EntityID != l.EntityID {
				return apperror.NewValidation("entity unit does not belong to the ledger's entity").
					WithDetail("unit_id", unit.ID).
					WithDetail("ledger_id", l.ID)
			}
		}

		je = journal.NewJournalEntry(l.ID, l.EntityID, req.UnitID, req.Date, req.Description)
		je.Origin = req.Origin
		if err := s.journal.Create(ctx, je); err != nil {
			return err
		}

		pending := make([]journal.Transaction, 0, len(lines))
		for _, line := range lines {
			pending = append(pending, journal.NewTransaction(je.ID, line.AccountID, line.TxType, line.Amount, line.Description))
		}
		if txs, err = s.journal.AddTransactions(ctx, je.ID, pending); err != nil {
			return err
		}
		return s.journal.Save(ctx, je, journal.SaveOptions{Verify: true, PostOnVerify: req.Posted})
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info(ctx, "transactions committed",
		"journal_entry_id", je.ID,
		"number", je.Number,
		"lines", len(txs),
		"posted", je.Posted)
	return je, txs, nil
}

func (s *Service) checkBalance(lines []Line, reconcile bool) error {
	d := DiffTxData(lines, s.cfg.Tolerance)
	if d.Balanced {
		return nil
	}
	if !reconcile {
		return apperror.NewNotInBalance(d.Diff.String(), "0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := ReconcileRoundingDrift(lines, Correction{
		Enabled:   true,
		Step:      s.cfg.Step,
		Tolerance: s.cfg.Tolerance,
		Rand:      s.rnd,
	})
	return err
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
