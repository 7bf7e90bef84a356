package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/massikone/massikone/internal/balance"
	"github.com/massikone/massikone/internal/locale"
)

func newBalancesCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show account balances and profit of the current period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			accts, err := a.accounts.AccountMap(ctx, a.period.ID)
			if err != nil {
				return err
			}
			balances, profit, err := a.balances.ComputeBalances(ctx, a.period.ID)
			if err != nil {
				return err
			}

			ids := make([]int, 0, len(balances))
			for id := range balances {
				ids = append(ids, id)
			}
			sort.Ints(ids)

			out := cmd.OutOrStdout()
			for _, id := range ids {
				acct := accts[id]
				fmt.Fprintf(out, "%6d  %-40s %12s\n", id, acct.Title, locale.FormatCentsSigned(balance.Display(acct.Type, balances[id])))
			}
			fmt.Fprintf(out, "%6s  %-40s %12s\n", "", "Tilikauden tulos", locale.FormatCentsSigned(profit))
			return nil
		},
	}
}
