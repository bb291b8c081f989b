package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type closeOptions struct {
	file   string
	entity string
	date   string
	post   bool
}

func newCloseCommand(root *rootOptions) *cobra.Command {
	opts := &closeOptions{}
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close the books of an entity on a date",
		Long: `Snapshot the balances of an entity up to a closing date into a closing
entry. With --post the snapshot is materialized as closing journal entries
and the period is frozen.

Example:
  ledgerctl close --entity 0190f... --date 2024-12-31 --post`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.date == "" {
				return fmt.Errorf("--date is required")
			}
			date, err := parseDate(opts.date)
			if err != nil {
				return err
			}

			ctx := contextOf(cmd)
			svc, entityID, done, err := openScope(ctx, root, opts.file, opts.entity)
			if err != nil {
				return err
			}
			defer done()

			ce, err := svc.Closing.Create(ctx, entityID, date)
			if err != nil {
				return err
			}
			if opts.post {
				if ce, err = svc.Closing.Post(ctx, ce.ID); err != nil {
					return err
				}
			}
			return writeJSON(cmd, ce)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.file, "file", "", "replay a YAML book instead of using the database")
	f.StringVar(&opts.entity, "entity", "", "entity id (database mode)")
	f.StringVar(&opts.date, "date", "", "closing date (YYYY-MM-DD)")
	f.BoolVar(&opts.post, "post", false, "post the closing entry")
	return cmd
}
