package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/core/numerator"
	"ledgerio/internal/core/tx"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/audit"
	"ledgerio/pkg/logger"
)

const auditJournalEntry = "journal_entry"

// Options controls a lifecycle transition.
type Options struct {
	// Commit persists the change inside one database transaction.
	Commit bool
	// RaiseException returns an error when the transition is refused.
	// Otherwise a refused transition is a silent no-op.
	RaiseException bool
}

// PostOptions controls MarkAsPosted.
type PostOptions struct {
	Options

	// Verify recomputes verification from the stored lines. An entry that
	// is already verified is re-checked either way.
	Verify bool
	// ForceLock locks the entry before posting.
	ForceLock bool
}

// SaveOptions controls Save.
type SaveOptions struct {
	Verify       bool
	PostOnVerify bool
}

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Repo      Repository
	Ledgers   Ledgers
	Accounts  AccountReader
	Boundary  ClosingBoundary
	Numerator numerator.Generator
	Numbering numerator.Config
	TxManager tx.Manager
	Audit     audit.Recorder
	// Clock returns the current time; defaults to time.Now.
	Clock func() time.Time
}

// Service runs the journal entry lifecycle.
type Service struct {
	repo      Repository
	ledgers   Ledgers
	accounts  AccountReader
	boundary  ClosingBoundary
	numerator numerator.Generator
	numbering numerator.Config
	txManager tx.Manager
	audit     audit.Recorder
	clock     func() time.Time
}

// NewService creates a journal service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		repo:      cfg.Repo,
		ledgers:   cfg.Ledgers,
		accounts:  cfg.Accounts,
		boundary:  cfg.Boundary,
		numerator: cfg.Numerator,
		numbering: cfg.Numbering,
		txManager: cfg.TxManager,
		audit:     cfg.Audit,
		clock:     cfg.Clock,
	}
	if s.boundary == nil {
		s.boundary = NoBoundary{}
	}
	if s.audit == nil {
		s.audit = audit.Nop{}
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.numbering.Prefix == "" {
		s.numbering = numerator.DefaultConfig()
	}
	return s
}

// SetBoundary replaces the closing boundary. The closing service depends on
// the journal service, so it is attached after both are built.
func (s *Service) SetBoundary(b ClosingBoundary) {
	if b == nil {
		b = NoBoundary{}
	}
	s.boundary = b
}

// Gates evaluates the outside state of je.
func (s *Service) Gates(ctx context.Context, je *JournalEntry) (Gates, error) {
	l, err := s.ledgers.GetLedger(ctx, je.LedgerID)
	if err != nil {
		return Gates{}, fmt.Errorf("get ledger: %w", err)
	}
	closing, err := s.boundary.LastClosingDate(ctx, je.EntityID)
	if err != nil {
		return Gates{}, fmt.Errorf("get last closing date: %w", err)
	}
	return Gates{
		LedgerLocked:    l.Locked,
		LastClosingDate: closing,
		Now:             s.clock(),
	}, nil
}

// Get loads an entry. The returned entry is not verified.
func (s *Service) Get(ctx context.Context, jeID id.ID) (*JournalEntry, error) {
	return s.repo.Get(ctx, jeID)
}

// Transactions loads the lines of an entry.
func (s *Service) Transactions(ctx context.Context, jeID id.ID) ([]Transaction, error) {
	return s.repo.ListTransactions(ctx, jeID)
}

// Create stores a new unposted entry and assigns its number. Entries must
// start unposted: posting happens through verification only.
func (s *Service) Create(ctx context.Context, je *JournalEntry) error {
	if err := je.Validate(ctx); err != nil {
		return err
	}
	if je.Posted {
		return apperror.NewIntegrity("journal entry cannot be created in posted state").
			WithDetail("journal_entry_id", je.ID)
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		l, err := s.ledgers.GetLedger(ctx, je.LedgerID)
		if err != nil {
			return err
		}
		if l.Locked {
			return apperror.NewLedgerLocked(l.ID)
		}
		if id.IsNil(je.EntityID) {
			je.EntityID = l.EntityID
		}
		if je.EntityID != l.EntityID {
			return apperror.NewValidation("journal entry entity does not match its ledger").
				WithDetail("ledger_id", l.ID)
		}

		closing, err := s.boundary.LastClosingDate(ctx, je.EntityID)
		if err != nil {
			return fmt.Errorf("get last closing date: %w", err)
		}
		if je.IsInLockedPeriod(closing) {
			return apperror.NewPeriodClosed(closing.Format(time.DateOnly))
		}

		if err := s.assignNumber(ctx, je); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, je); err != nil {
			return fmt.Errorf("create journal entry: %w", err)
		}
		return s.audit.Record(ctx, auditJournalEntry, je.ID, audit.ActionCreate, map[string]any{
			"number":    je.Number,
			"ledger_id": je.LedgerID,
		})
	})
}

func (s *Service) assignNumber(ctx context.Context, je *JournalEntry) error {
	if je.Number != "" || s.numerator == nil {
		return nil
	}
	ent, err := s.ledgers.GetEntity(ctx, je.EntityID)
	if err != nil {
		return fmt.Errorf("get entity: %w", err)
	}
	key := numerator.Key{
		EntityID:   je.EntityID,
		UnitID:     je.EntityUnitID,
		FiscalYear: ent.FiscalYear(je.Timestamp),
	}
	if je.EntityUnitID != nil {
		unit, err := s.ledgers.GetUnit(ctx, *je.EntityUnitID)
		if err != nil {
			return fmt.Errorf("get entity unit: %w", err)
		}
		key.UnitPrefix = unit.DocumentPrefix
	}
	number, err := s.numerator.GetNextNumber(ctx, s.numbering, key)
	if err != nil {
		return fmt.Errorf("generate journal entry number: %w", err)
	}
	je.Number = number
	return nil
}

// Verify loads the lines of je and verifies them.
func (s *Service) Verify(ctx context.Context, je *JournalEntry, opts VerifyOptions) (bool, error) {
	if je.IsVerified() && !opts.Force {
		return true, nil
	}
	lines, err := s.repo.ListTransactions(ctx, je.ID)
	if err != nil {
		return false, fmt.Errorf("list transactions: %w", err)
	}
	return je.Verify(lines, opts)
}

// Save persists je. With Verify the entry must pass verification, and with
// PostOnVerify it is posted as well. A failure leaves je unposted and
// unverified.
func (s *Service) Save(ctx context.Context, je *JournalEntry, opts SaveOptions) error {
	wasPosted := je.Posted
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.assignNumber(ctx, je); err != nil {
			return err
		}
		if opts.Verify {
			if _, err := s.Verify(ctx, je, VerifyOptions{Force: true, RaiseException: true}); err != nil {
				return err
			}
			if opts.PostOnVerify && !je.Posted {
				g, err := s.Gates(ctx, je)
				if err != nil {
					return err
				}
				if !je.CanPost(g) {
					return apperror.NewJournalEntryInvalid(fmt.Sprintf("journal entry %s cannot post", je.ID))
				}
				je.Posted = true
			}
		}
		if err := s.persist(ctx, je); err != nil {
			return err
		}
		if je.Posted && !wasPosted {
			return s.audit.Record(ctx, auditJournalEntry, je.ID, audit.ActionPost, je.auditState())
		}
		return nil
	})
	if err != nil {
		s.rollbackPost(je, wasPosted)
		return asPostingError(err)
	}
	if je.Posted && !wasPosted {
		logger.Info(ctx, "journal entry posted", "journal_entry_id", je.ID, "number", je.Number)
	}
	return nil
}

// MarkAsPosted posts je. Posting is all or nothing: on failure je is left
// unposted and unverified.
func (s *Service) MarkAsPosted(ctx context.Context, je *JournalEntry, opts PostOptions) error {
	wasPosted := je.Posted
	wasLocked := je.Locked

	apply := func(ctx context.Context) error {
		// A verified flag from an earlier call may predate line edits, so
		// verification is always recomputed from the stored lines.
		if opts.Verify || je.IsVerified() {
			lines, err := s.repo.ListTransactions(ctx, je.ID)
			if err != nil {
				return fmt.Errorf("list transactions: %w", err)
			}
			if len(lines) == 0 {
				je.Unverify()
				return s.refuse(opts.Options, apperror.NewJournalEntryInvalid("cannot post an empty journal entry"))
			}
			if _, err := je.Verify(lines, VerifyOptions{Force: true, RaiseException: opts.RaiseException}); err != nil {
				return err
			}
		}

		g, err := s.Gates(ctx, je)
		if err != nil {
			return err
		}
		if opts.ForceLock && !je.Locked {
			if !je.CanLock(g) {
				return s.refuse(opts.Options, apperror.NewJournalEntryInvalid(fmt.Sprintf("journal entry %s cannot lock", je.ID)))
			}
			je.Locked = true
		}
		// Locking for posting must not block the post itself.
		check := *je
		check.Locked = wasLocked
		if !check.CanPost(g) {
			return s.refuse(opts.Options, apperror.NewJournalEntryInvalid(
				fmt.Sprintf("journal entry %s cannot post, verified: %t", je.ID, je.IsVerified())))
		}

		je.Posted = true
		if !opts.Commit {
			return nil
		}
		if err := s.persist(ctx, je); err != nil {
			return err
		}
		return s.audit.Record(ctx, auditJournalEntry, je.ID, audit.ActionPost, je.auditState())
	}

	err := s.run(ctx, opts.Commit, apply)
	if errors.Is(err, errRefused) {
		je.Posted, je.Locked = wasPosted, wasLocked
		return nil
	}
	if err != nil {
		s.rollbackPost(je, wasPosted)
		je.Locked = wasLocked
		return asPostingError(err)
	}
	if je.Posted && !wasPosted {
		logger.Info(ctx, "journal entry posted",
			"journal_entry_id", je.ID,
			"number", je.Number,
			"committed", opts.Commit)
	}
	return nil
}

// MarkAsUnposted removes je from posted-only reporting and clears its
// activity.
func (s *Service) MarkAsUnposted(ctx context.Context, je *JournalEntry, opts Options) error {
	prevPosted, prevActivity := je.Posted, je.Activity
	err := s.transition(ctx, je, opts, audit.ActionUnpost, je.CanUnpost, func() {
		je.Posted = false
		je.Activity = nil
	})
	if err != nil {
		je.Posted, je.Activity = prevPosted, prevActivity
	}
	return err
}

// MarkAsLocked freezes the lines of je. The activity is recomputed from
// the current lines first.
func (s *Service) MarkAsLocked(ctx context.Context, je *JournalEntry, opts Options) error {
	prevLocked, prevActivity := je.Locked, je.Activity
	err := s.transition(ctx, je, opts, audit.ActionLock, je.CanLock, func() {
		je.Locked = true
	})
	if err != nil {
		je.Locked, je.Activity = prevLocked, prevActivity
	}
	return err
}

// MarkAsUnlocked reverses MarkAsLocked.
func (s *Service) MarkAsUnlocked(ctx context.Context, je *JournalEntry, opts Options) error {
	prevLocked := je.Locked
	err := s.transition(ctx, je, opts, audit.ActionUnlock, je.CanUnlock, func() {
		je.Locked = false
	})
	if err != nil {
		je.Locked = prevLocked
	}
	return err
}

func (s *Service) transition(
	ctx context.Context,
	je *JournalEntry,
	opts Options,
	action audit.Action,
	can func(Gates) bool,
	apply func(),
) error {
	err := s.run(ctx, opts.Commit, func(ctx context.Context) error {
		g, err := s.Gates(ctx, je)
		if err != nil {
			return err
		}
		if !can(g) {
			return s.refuse(opts, apperror.NewJournalEntryInvalid(
				fmt.Sprintf("journal entry %s cannot %s", je.ID, action)))
		}
		if action == audit.ActionLock && !je.IsClosingEntry {
			if err := s.refreshActivity(ctx, je, opts); err != nil {
				return err
			}
		}
		apply()
		if !opts.Commit {
			return nil
		}
		if err := s.persist(ctx, je); err != nil {
			return err
		}
		return s.audit.Record(ctx, auditJournalEntry, je.ID, action, je.auditState())
	})
	if errors.Is(err, errRefused) {
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info(ctx, "journal entry "+string(action)+"ed",
		"journal_entry_id", je.ID,
		"committed", opts.Commit)
	return nil
}

func (s *Service) refreshActivity(ctx context.Context, je *JournalEntry, opts Options) error {
	lines, err := s.repo.ListTransactions(ctx, je.ID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	activity, err := InferActivity(lines)
	if err != nil {
		return s.refuse(opts, err)
	}
	je.Activity = activity
	return nil
}

// AddTransactions appends lines to an editable entry. Nothing is written
// when the entry is posted, locked or otherwise frozen.
func (s *Service) AddTransactions(ctx context.Context, jeID id.ID, lines []Transaction) ([]Transaction, error) {
	var out []Transaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		je, err := s.editable(ctx, jeID)
		if err != nil {
			return err
		}
		prepared, err := s.prepareLines(ctx, je, lines)
		if err != nil {
			return err
		}
		if err := s.repo.CreateTransactions(ctx, prepared); err != nil {
			return fmt.Errorf("create transactions: %w", err)
		}
		out = prepared
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTransaction changes the account, direction or amount of a line.
func (s *Service) UpdateTransaction(ctx context.Context, line *Transaction) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetTransaction(ctx, line.ID)
		if err != nil {
			return err
		}
		je, err := s.editable(ctx, current.JournalEntryID)
		if err != nil {
			return err
		}
		line.JournalEntryID = je.ID
		prepared, err := s.prepareLines(ctx, je, []Transaction{*line})
		if err != nil {
			return err
		}
		*line = prepared[0]
		line.Base = current.Base
		line.Touch()
		if err := s.repo.UpdateTransaction(ctx, line); err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		return nil
	})
}

// DeleteTransaction removes a line from an editable entry.
func (s *Service) DeleteTransaction(ctx context.Context, txID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetTransaction(ctx, txID)
		if err != nil {
			return err
		}
		if _, err := s.editable(ctx, current.JournalEntryID); err != nil {
			return err
		}
		if err := s.repo.DeleteTransaction(ctx, txID); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		return nil
	})
}

// Delete removes an unposted, unlocked entry and its lines.
func (s *Service) Delete(ctx context.Context, jeID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		je, err := s.repo.GetForUpdate(ctx, jeID)
		if err != nil {
			return err
		}
		g, err := s.Gates(ctx, je)
		if err != nil {
			return err
		}
		if !je.CanDelete(g) {
			return apperror.NewJournalEntryLocked(je.ID)
		}
		if err := s.repo.Delete(ctx, jeID); err != nil {
			return fmt.Errorf("delete journal entry: %w", err)
		}
		return s.audit.Record(ctx, auditJournalEntry, jeID, audit.ActionDelete, nil)
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "journal entry deleted", "journal_entry_id", jeID)
	return nil
}

// DescribeLines fills the account snapshot of lines and rejects accounts
// that cannot take transactions.
func (s *Service) DescribeLines(ctx context.Context, lines []Transaction) error {
	ids := make([]id.ID, 0, len(lines))
	for i := range lines {
		ids = append(ids, lines[i].AccountID)
	}
	accts, err := s.accounts.GetAccounts(ctx, ids)
	if err != nil {
		return fmt.Errorf("get accounts: %w", err)
	}
	byID := make(map[id.ID]*accounts.Account, len(accts))
	for _, a := range accts {
		byID[a.ID] = a
	}
	for i := range lines {
		a, ok := byID[lines[i].AccountID]
		if !ok {
			return apperror.NewNotFound("account", lines[i].AccountID)
		}
		if !a.CanTransact() {
			return apperror.NewValidation(fmt.Sprintf("account %s is inactive, locked or a root account", a.Code)).
				WithDetail("account_id", a.ID)
		}
		lines[i].Describe(a)
	}
	return nil
}

func (s *Service) prepareLines(ctx context.Context, je *JournalEntry, lines []Transaction) ([]Transaction, error) {
	out := make([]Transaction, len(lines))
	for i, l := range lines {
		if id.IsNil(l.ID) {
			l.Base = NewTransaction(je.ID, l.AccountID, l.TxType, l.Amount, l.Description).Base
		}
		l.JournalEntryID = je.ID
		if err := l.Validate(ctx); err != nil {
			return nil, err
		}
		out[i] = l
	}
	if err := s.DescribeLines(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// editable locks the entry row and returns it if its lines may change.
func (s *Service) editable(ctx context.Context, jeID id.ID) (*JournalEntry, error) {
	je, err := s.repo.GetForUpdate(ctx, jeID)
	if err != nil {
		return nil, err
	}
	g, err := s.Gates(ctx, je)
	if err != nil {
		return nil, err
	}
	if !je.CanEdit(g) {
		return nil, apperror.NewJournalEntryLocked(je.ID)
	}
	return je, nil
}

func (s *Service) persist(ctx context.Context, je *JournalEntry) error {
	current, err := s.repo.GetForUpdate(ctx, je.ID)
	if err != nil {
		return err
	}
	if current.Version != je.Version {
		return apperror.NewConflict("journal entry was modified concurrently").
			WithDetail("journal_entry_id", je.ID).
			WithDetail("version", current.Version)
	}
	je.Touch()
	if err := s.repo.Update(ctx, je); err != nil {
		je.Version--
		return fmt.Errorf("update journal entry: %w", err)
	}
	return nil
}

func (s *Service) run(ctx context.Context, commit bool, fn func(ctx context.Context) error) error {
	if !commit {
		return fn(ctx)
	}
	return s.txManager.RunInTransaction(ctx, fn)
}

// errRefused marks a refused transition that must stay silent.
var errRefused = apperror.NewBusinessRule(apperror.CodeJournalEntryInvalid, "transition refused")

func (s *Service) refuse(opts Options, err error) error {
	if opts.RaiseException {
		return err
	}
	return errRefused
}

func (s *Service) rollbackPost(je *JournalEntry, wasPosted bool) {
	je.Posted = wasPosted
	je.verified = false
}

// asPostingError keeps journal entry and ledger rule errors as they are and
// reports anything else as a failed posting.
func asPostingError(err error) error {
	if apperror.IsValidation(err) {
		return err
	}
	if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeConflict {
		return err
	}
	return apperror.NewJournalEntryInvalid("journal entry could not be saved").WithCause(err)
}

func (je *JournalEntry) auditState() map[string]any {
	state := map[string]any{
		"posted": je.Posted,
		"locked": je.Locked,
	}
	if je.Activity != nil {
		state["activity"] = string(*je.Activity)
	}
	return state
}
