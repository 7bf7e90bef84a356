package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAccountsCommand(opts *globalOptions) *cobra.Command {
	var used bool

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List the chart of accounts of the current period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.accounts.GetAccounts(ctx, a.period.ID, used)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range rows {
				indent := ""
				if r.IsHeading() {
					indent = strings.Repeat("  ", r.NestingLevel)
				}
				fmt.Fprintf(out, "%s%s %s\n", indent, r.Prefix, r.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&used, "used", false, "only accounts with entries in the period, and their headings")

	return cmd
}
