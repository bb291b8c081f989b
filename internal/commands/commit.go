package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/journal"
)

func newCommitCommand(root *rootOptions) *cobra.Command {
	var ledger, file string
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit one journal entry from a YAML file",
		Long: `Commit the lines in --file as one journal entry of --ledger. The file
has the shape of a book entry: date, description, posted and lines naming
accounts by code.

Example:
  ledgerctl commit --ledger 0190f... --file entry.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledgerID, err := id.Parse(ledger)
			if err != nil {
				return fmt.Errorf("invalid --ledger: %w", err)
			}
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var entry BookEntry
			if err := yaml.Unmarshal(raw, &entry); err != nil {
				return fmt.Errorf("parsing entry: %w", err)
			}

			ctx := contextOf(cmd)
			svc, closeDB, err := openDatabase(ctx, root, false)
			if err != nil {
				return err
			}
			defer closeDB()

			l, err := svc.Ledgers.GetLedger(ctx, ledgerID)
			if err != nil {
				return err
			}
			chart, err := svc.Accounts.GetChart(ctx, l.EntityID)
			if err != nil {
				return err
			}
			req, err := entry.request(ledgerID, chart)
			if err != nil {
				return err
			}
			je, lines, err := svc.Ingest.CommitTxs(ctx, req)
			if err != nil {
				return err
			}
			return writeJSON(cmd, struct {
				*journal.JournalEntry
				Transactions []journal.Transaction `json:"transactions"`
			}{je, lines})
		},
	}
	cmd.Flags().StringVar(&ledger, "ledger", "", "ledger id")
	cmd.Flags().StringVar(&file, "file", "", "YAML entry file")
	_ = cmd.MarkFlagRequired("ledger")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
