package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/massikone/massikone/internal/buildinfo"
	"github.com/massikone/massikone/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:     "massikone",
		Short:   "Expense reimbursement bookkeeping for small organizations",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.FileName, "path to "+config.FileName)
	rootCmd.PersistentFlags().StringVar(&opts.userEmail, "user", "", "email of the acting user (default: the first admin)")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountsCommand(opts),
		newUserCommand(opts),
		newBillCommand(opts),
		newTagsCommand(opts),
		newBalancesCommand(opts),
		newReportCommand(opts),
		newCompareCommand(opts),
	)

	return rootCmd
}
