package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/massikone/massikone/internal/importer"
	"github.com/massikone/massikone/internal/locale"
)

func newCompareCommand(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "compare <bank-export>",
		Short: "Match bills against a bank statement export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txns, err := importer.DefaultRegistry().ParseFile(format, args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.actingUser(ctx, opts.userEmail)
			if err != nil {
				return err
			}
			bills, err := a.bills.ForCompare(ctx, user)
			if err != nil {
				return err
			}
			items := make([]importer.Item, len(bills))
			for i, b := range bills {
				items[i] = importer.Item{Date: b.Date, Cents: b.Cents, Description: fmt.Sprintf("#%d %s", b.BillID, b.Description)}
			}

			rows := importer.Compare(items, txns)
			out := cmd.OutOrStdout()
			unmatched := 0
			for i, r := range rows {
				if i > 0 && rows[i-1].Key != r.Key {
					fmt.Fprintln(out)
				}
				mark := "  "
				if !r.Matched {
					mark = "! "
					unmatched++
				}
				fmt.Fprintf(out, "%s%-10s  %10s  %-9s  %s\n",
					mark, locale.FiFromISO(r.Date), locale.FormatCentsSigned(r.Cents), r.Source, r.Description)
			}
			fmt.Fprintf(out, "\n%d bills, %d bank rows, %d rows without a match\n", len(items), len(txns), unmatched)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", importer.FiCSVFormat, "bank export format")

	return cmd
}
