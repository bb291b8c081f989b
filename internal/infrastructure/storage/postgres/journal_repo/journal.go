// Package journal_repo provides the PostgreSQL implementation of
// journal.Repository and the SQL digest source.
package journal_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/journal"
	"ledgerio/internal/infrastructure/storage/postgres"
)

const (
	entriesTable = "journal_entries"
	linesTable   = "transactions"
)

// lineColumns are the stored columns of a transaction line. The account
// snapshot fields are read through a join.
var lineColumns = []string{
	"id", "version", "created_at", "updated_at",
	"journal_entry_id", "account_id", "tx_type", "amount", "description",
}

// Repo implements journal.Repository.
type Repo struct {
	entries *postgres.Table[journal.JournalEntry]
	lines   *postgres.Table[journal.Transaction]
	batch   *postgres.BatchInserter
}

var _ journal.Repository = (*Repo)(nil)

// New creates the repository.
func New(txm *postgres.TxManager) *Repo {
	return &Repo{
		entries: postgres.NewTable[journal.JournalEntry](txm, entriesTable),
		lines:   postgres.NewTable[journal.Transaction](txm, linesTable, lineColumns...),
		batch:   postgres.NewBatchInserter(txm),
	}
}

func (r *Repo) Create(ctx context.Context, je *journal.JournalEntry) error {
	return r.entries.Insert(ctx, je)
}

func (r *Repo) Get(ctx context.Context, jeID id.ID) (*journal.JournalEntry, error) {
	return r.entries.GetByID(ctx, jeID, false)
}

func (r *Repo) GetForUpdate(ctx context.Context, jeID id.ID) (*journal.JournalEntry, error) {
	return r.entries.GetByID(ctx, jeID, true)
}

func (r *Repo) Update(ctx context.Context, je *journal.JournalEntry) error {
	return r.entries.Update(ctx, je)
}

func (r *Repo) Delete(ctx context.Context, jeID id.ID) error {
	return r.entries.Delete(ctx, jeID)
}

func (r *Repo) ListByLedger(ctx context.Context, ledgerID id.ID) ([]*journal.JournalEntry, error) {
	return r.entries.List(ctx, r.entries.Select().
		Where(squirrel.Eq{"ledger_id": ledgerID}).
		OrderBy("timestamp", "je_number"))
}

func (r *Repo) DeleteByLedger(ctx context.Context, ledgerID id.ID) (int64, error) {
	return r.entries.DeleteAll(ctx, squirrel.Eq{"ledger_id": ledgerID})
}

// selectLines reads lines joined with their account snapshot.
func (r *Repo) selectLines() squirrel.SelectBuilder {
	cols := append(r.lines.Columns("t"),
		"a.code AS account_code",
		"a.name AS account_name",
		"a.role AS account_role",
		"a.balance_type AS account_balance_type",
		"a.chart_id",
	)
	return postgres.Builder().
		Select(cols...).
		From(linesTable + " t").
		Join("accounts a ON a.id = t.account_id")
}

func (r *Repo) ListTransactions(ctx context.Context, jeID id.ID) ([]journal.Transaction, error) {
	rows, err := r.lines.List(ctx, r.selectLines().
		Where(squirrel.Eq{"t.journal_entry_id": jeID}).
		OrderBy("t.created_at", "t.id"))
	if err != nil {
		return nil, err
	}
	out := make([]journal.Transaction, len(rows))
	for i, t := range rows {
		out[i] = *t
	}
	return out, nil
}

func (r *Repo) GetTransaction(ctx context.Context, txID id.ID) (*journal.Transaction, error) {
	return r.lines.Get(ctx, r.selectLines().Where(squirrel.Eq{"t.id": txID}), txID)
}

// CreateTransactions copies the lines in one COPY; foreign keys reject
// unknown entries or accounts and the copy is rolled back as a whole.
func (r *Repo) CreateTransactions(ctx context.Context, lines []journal.Transaction) error {
	rows := make([][]any, len(lines))
	for i, t := range lines {
		rows[i] = []any{
			t.ID, t.Version, t.CreatedAt, t.UpdatedAt,
			t.JournalEntryID, t.AccountID, string(t.TxType), postgres.Numeric(t.Amount), t.Description,
		}
	}
	_, err := r.batch.CopyFromSlice(ctx, linesTable, lineColumns, rows)
	return err
}

func (r *Repo) UpdateTransaction(ctx context.Context, line *journal.Transaction) error {
	return r.lines.Update(ctx, line)
}

func (r *Repo) DeleteTransaction(ctx context.Context, txID id.ID) error {
	return r.lines.Delete(ctx, txID)
}
