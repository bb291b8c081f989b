package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ledgerio/internal/app"
	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/ingest"
	"ledgerio/internal/domain/ledger"
	"ledgerio/internal/infrastructure/storage/memory"
)

// Book is a YAML description of one entity's books: its chart, journal
// entries and closing dates. Replaying it into memory lets the digest and
// closing commands run without a database.
type Book struct {
	Entity   BookEntity      `yaml:"entity"`
	Ledger   string          `yaml:"ledger,omitempty"`
	Accounts []accounts.Seed `yaml:"accounts,omitempty"`
	Entries  []BookEntry     `yaml:"entries"`
	Closings []string        `yaml:"closings,omitempty"`
}

// BookEntity names the entity of a book.
type BookEntity struct {
	Name         string `yaml:"name"`
	Slug         string `yaml:"slug"`
	FyStartMonth int    `yaml:"fy_start_month,omitempty"`
}

// BookEntry is one journal entry of a book. Lines name accounts by code.
type BookEntry struct {
	Date        string `yaml:"date"`
	Description string `yaml:"description,omitempty"`
	// Posted defaults to true.
	Posted         *bool         `yaml:"posted,omitempty"`
	ReconcileDrift bool          `yaml:"reconcile_drift,omitempty"`
	Lines          []ingest.Line `yaml:"lines"`
}

// ReadBook parses a book.
func ReadBook(r io.Reader) (*Book, error) {
	var b Book
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("parsing book: %w", err)
	}
	if b.Entity.Name == "" {
		return nil, fmt.Errorf("parsing book: entity name is required")
	}
	if b.Entity.Slug == "" {
		b.Entity.Slug = strings.ToLower(strings.Join(strings.Fields(b.Entity.Name), "-"))
	}
	if b.Entity.FyStartMonth == 0 {
		b.Entity.FyStartMonth = 1
	}
	if b.Ledger == "" {
		b.Ledger = "General"
	}
	return &b, nil
}

// Replayed is a book loaded into services.
type Replayed struct {
	Services *app.Services
	Entity   *ledger.Entity
	Ledger   *ledger.Ledger
	Chart    *accounts.Chart
}

// Replay loads b into a fresh in-memory store.
func (b *Book) Replay(ctx context.Context) (*Replayed, error) {
	svc := app.NewServices(app.MemoryStores(memory.New(), nil), app.Options{})

	e, err := svc.Ledgers.CreateEntity(ctx, b.Entity.Name, b.Entity.Slug, b.Entity.FyStartMonth)
	if err != nil {
		return nil, err
	}
	seeds := b.Accounts
	if len(seeds) == 0 {
		seeds = accounts.DefaultChart()
	}
	chart, err := svc.Accounts.Seed(ctx, e.ID, b.Entity.Name+" chart of accounts", seeds)
	if err != nil {
		return nil, err
	}
	l, err := svc.Ledgers.CreateLedger(ctx, e.ID, b.Ledger)
	if err != nil {
		return nil, err
	}
	if l, err = svc.Ledgers.Post(ctx, l.ID); err != nil {
		return nil, err
	}

	for i, entry := range b.Entries {
		req, err := entry.request(l.ID, chart)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		if _, _, err := svc.Ingest.CommitTxs(ctx, req); err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i+1, entry.Date, err)
		}
	}

	for _, raw := range b.Closings {
		date, err := parseDate(raw)
		if err != nil {
			return nil, err
		}
		ce, err := svc.Closing.Create(ctx, e.ID, date)
		if err != nil {
			return nil, fmt.Errorf("closing %s: %w", raw, err)
		}
		if _, err := svc.Closing.Post(ctx, ce.ID); err != nil {
			return nil, fmt.Errorf("closing %s: %w", raw, err)
		}
	}

	return &Replayed{Services: svc, Entity: e, Ledger: l, Chart: chart}, nil
}

func (e BookEntry) request(ledgerID id.ID, chart *accounts.Chart) (ingest.CommitRequest, error) {
	date, err := parseDate(e.Date)
	if err != nil {
		return ingest.CommitRequest{}, err
	}
	lines := make([]ingest.Line, len(e.Lines))
	for i, line := range e.Lines {
		if id.IsNil(line.AccountID) {
			a, ok := chart.ByCode(line.AccountCode)
			if !ok {
				return ingest.CommitRequest{}, fmt.Errorf("line %d: unknown account %q", i+1, line.AccountCode)
			}
			line.AccountID = a.ID
		}
		lines[i] = line
	}
	return ingest.CommitRequest{
		Date:           date,
		LedgerID:       ledgerID,
		Lines:          lines,
		Posted:         e.Posted == nil || *e.Posted,
		Description:    e.Description,
		Origin:         "ledgerctl",
		ReconcileDrift: e.ReconcileDrift,
	}, nil
}

func readBookFile(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadBook(f)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
