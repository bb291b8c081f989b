package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ledgerio/internal/domain/accounts"
)

type seedOptions struct {
	export       bool
	template     string
	name         string
	slug         string
	fyStartMonth int
	ledgerName   string
}

func newSeedCOACommand(root *rootOptions) *cobra.Command {
	opts := &seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed-coa",
		Short: "Create an entity with its chart of accounts",
		Long: `Create an entity, its chart of accounts and a posted ledger.

The chart comes from --template (a YAML chart template) or the built-in
default chart. With --export the default chart is written as a template
to stdout and nothing else happens.

Example:
  ledgerctl seed-coa --export > chart.yaml
  ledgerctl seed-coa --name "Acme" --slug acme --template chart.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.export {
				return accounts.WriteSeeds(cmd.OutOrStdout(), accounts.DefaultChartVersion, accounts.DefaultChart())
			}
			return runSeed(cmd, root, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.export, "export", false, "write the default chart template to stdout")
	cmd.Flags().StringVar(&opts.template, "template", "", "YAML chart template (default chart when empty)")
	cmd.Flags().StringVar(&opts.name, "name", "", "entity name")
	cmd.Flags().StringVar(&opts.slug, "slug", "", "entity slug")
	cmd.Flags().IntVar(&opts.fyStartMonth, "fy-start", 1, "first month of the fiscal year")
	cmd.Flags().StringVar(&opts.ledgerName, "ledger", "General", "name of the ledger to create; empty skips it")
	return cmd
}

func runSeed(cmd *cobra.Command, root *rootOptions, opts *seedOptions) error {
	if opts.name == "" || opts.slug == "" {
		return fmt.Errorf("--name and --slug are required")
	}
	seeds := accounts.DefaultChart()
	if opts.template != "" {
		f, err := os.Open(opts.template)
		if err != nil {
			return err
		}
		defer f.Close()
		tpl, err := accounts.ReadSeeds(f)
		if err != nil {
			return err
		}
		seeds = tpl.Accounts
	}

	ctx := contextOf(cmd)
	svc, closeDB, err := openDatabase(ctx, root, false)
	if err != nil {
		return err
	}
	defer closeDB()

	e, err := svc.Ledgers.CreateEntity(ctx, opts.name, opts.slug, opts.fyStartMonth)
	if err != nil {
		return err
	}
	chart, err := svc.Accounts.Seed(ctx, e.ID, opts.name+" chart of accounts", seeds)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "entity %s (%s)\n", e.ID, e.Slug)
	fmt.Fprintf(out, "chart %s with %d accounts\n", chart.ID, len(chart.Accounts))

	if opts.ledgerName == "" {
		return nil
	}
	l, err := svc.Ledgers.CreateLedger(ctx, e.ID, opts.ledgerName)
	if err != nil {
		return err
	}
	if _, err := svc.Ledgers.Post(ctx, l.ID); err != nil {
		return err
	}
	fmt.Fprintf(out, "ledger %s %q\n", l.ID, l.Name)
	return nil
}
