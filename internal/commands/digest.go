package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ledgerio/internal/app"
	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/digest"
	"ledgerio/internal/domain/journal"
	"ledgerio/internal/domain/roles"
)

type digestOptions struct {
	file       string
	entity     string
	ledger     string
	from       string
	to         string
	statements bool
	ratios     bool
	byPeriod   bool
	byUnit     bool
	all        bool
	roles      []string
	activities []string
}

func newDigestCommand(root *rootOptions) *cobra.Command {
	opts := &digestOptions{}
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Print account balances and financial statements as JSON",
		Long: `Print the digest of an entity: balances per account and role, and
optionally the balance sheet, income statement, cash flow statement and
ratios.

Example:
  ledgerctl digest --file books.yaml --statements --ratios
  ledgerctl digest --entity 0190f... --from 2024-01-01 --to 2025-01-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := contextOf(cmd)
			svc, entityID, done, err := openScope(ctx, root, opts.file, opts.entity)
			if err != nil {
				return err
			}
			defer done()

			req, err := opts.request(entityID)
			if err != nil {
				return err
			}
			d, err := svc.Digest.Digest(ctx, req)
			if err != nil {
				return err
			}
			return writeJSON(cmd, d)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.file, "file", "", "replay a YAML book instead of using the database")
	f.StringVar(&opts.entity, "entity", "", "entity id (database mode)")
	f.StringVar(&opts.ledger, "ledger", "", "restrict to one ledger id")
	f.StringVar(&opts.from, "from", "", "first date included (YYYY-MM-DD)")
	f.StringVar(&opts.to, "to", "", "first date excluded (YYYY-MM-DD)")
	f.BoolVar(&opts.statements, "statements", false, "build the balance sheet, income and cash flow statements")
	f.BoolVar(&opts.ratios, "ratios", false, "compute financial ratios")
	f.BoolVar(&opts.byPeriod, "by-period", false, "split balances by fiscal period")
	f.BoolVar(&opts.byUnit, "by-unit", false, "split balances by entity unit")
	f.BoolVar(&opts.all, "all", false, "include unposted entries")
	f.StringSliceVar(&opts.roles, "role", nil, "restrict to account roles")
	f.StringSliceVar(&opts.activities, "activity", nil, "restrict to activities")
	return cmd
}

func (o *digestOptions) request(entityID id.ID) (digest.Request, error) {
	req := digest.NewRequest(entityID)
	req.PostedOnly = !o.all
	req.ProcessRoles = true
	req.ProcessGroups = true
	req.ByPeriod = o.byPeriod
	req.ByUnit = o.byUnit
	req.ProcessRatios = o.ratios
	if o.statements {
		req.BalanceSheet = true
		req.IncomeStatement = true
		req.CashFlowStatement = true
	}

	var err error
	if req.LedgerID, err = id.ParseOptional(o.ledger); err != nil {
		return req, fmt.Errorf("invalid --ledger: %w", err)
	}
	if req.FromDate, err = parseOptionalDate(o.from); err != nil {
		return req, err
	}
	if req.ToDate, err = parseOptionalDate(o.to); err != nil {
		return req, err
	}
	for _, r := range o.roles {
		req.Roles = append(req.Roles, roles.Role(r))
	}
	if req.Activities, err = journal.ParseActivities(o.activities); err != nil {
		return req, err
	}
	if len(req.Activities) == 0 {
		req.Activities = nil
	}
	return req, req.Validate()
}

// openScope returns the services and entity to work on: the replayed book
// when file is set, the database otherwise.
func openScope(ctx context.Context, root *rootOptions, file, entity string) (*app.Services, id.ID, func(), error) {
	if file != "" {
		book, err := readBookFile(file)
		if err != nil {
			return nil, id.Nil(), nil, err
		}
		r, err := book.Replay(ctx)
		if err != nil {
			return nil, id.Nil(), nil, err
		}
		return r.Services, r.Entity.ID, func() {}, nil
	}

	entityID, err := id.Parse(entity)
	if err != nil {
		return nil, id.Nil(), nil, fmt.Errorf("--entity or --file is required: %w", err)
	}
	svc, closeDB, err := openDatabase(ctx, root, false)
	if err != nil {
		return nil, id.Nil(), nil, err
	}
	return svc, entityID, closeDB, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
