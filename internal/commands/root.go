// Package commands implements the ledgerctl command line.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"ledgerio/internal/app"
	"ledgerio/internal/config"
	"ledgerio/pkg/logger"
)

type rootOptions struct {
	configPath string
	debug      bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate a ledgerio double-entry ledger",
		Long: `ledgerctl manages ledgerio books from the command line.

Commands talk to the PostgreSQL database named in the configuration, or,
where --file is accepted, replay a YAML book into memory instead.

Example:
  ledgerctl schema > schema.sql
  ledgerctl seed-coa --name "Acme" --slug acme
  ledgerctl digest --file books.yaml --statements`,
		Version: version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := logger.Config{Level: "warn", OutputPaths: []string{"stderr"}}
			if opts.debug {
				cfg.Level = "debug"
				cfg.Development = true
			}
			log, err := logger.New(cfg)
			if err != nil {
				return err
			}
			cmd.SetContext(logger.WithLogger(contextOf(cmd), log))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to ledgerio.yaml (defaults to $LEDGER_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newSchemaCommand(),
		newMigrateCommand(opts),
		newSeedCOACommand(opts),
		newDigestCommand(opts),
		newCloseCommand(opts),
		newCommitCommand(opts),
	)
	return rootCmd
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// openDatabase loads the configuration and wires the services over
// PostgreSQL. The returned func closes the pool.
func openDatabase(ctx context.Context, opts *rootOptions, migrate bool) (*app.Services, func(), error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	pg, err := app.OpenPostgres(ctx, cfg, migrate)
	if err != nil {
		return nil, nil, err
	}
	return app.NewServices(pg.Stores, app.OptionsFrom(cfg)), pg.Close, nil
}
