package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/massikone/massikone/internal/journal"
	"github.com/massikone/massikone/internal/report"
)

// Report names accepted by the report command besides the statements.
const (
	reportJournal = "journal"
	reportLedger  = "ledger"
	reportChart   = "chart"
)

func newReportCommand(opts *globalOptions) *cobra.Command {
	var detailed, asCSV bool
	var outDir string

	cmd := &cobra.Command{
		Use:       "report <income-statement|balance-sheet|journal|ledger|chart>",
		Short:     "Print a report of the current period",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{report.IncomeStatement, report.BalanceSheet, reportJournal, reportLedger, reportChart},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if asCSV && name != reportJournal {
				return fmt.Errorf("--csv is only supported for the journal")
			}
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if asCSV {
				j, err := a.journal.EntriesForJournal(ctx, a.period.ID)
				if err != nil {
					return err
				}
				return writeReport(cmd.OutOrStdout(), a, outDir, "Päiväkirja", ".csv", func(w io.Writer) error {
					return journal.WriteCSV(w, j)
				})
			}

			doc, err := buildReport(ctx, a, name, detailed)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), a, outDir, doc.Name, ".txt", func(w io.Writer) error {
				return report.WriteText(w, doc)
			})
		},
	}

	cmd.Flags().BoolVar(&detailed, "detailed", false, "list accounts under statement groups")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write the journal as CSV")
	cmd.Flags().StringVar(&outDir, "out", "", "write the report into this directory instead of stdout")

	return cmd
}

func buildReport(ctx context.Context, a *app, name string, detailed bool) (report.Document, error) {
	accts, err := a.accounts.AccountMap(ctx, a.period.ID)
	if err != nil {
		return report.Document{}, err
	}

	switch name {
	case reportJournal:
		j, err := a.journal.EntriesForJournal(ctx, a.period.ID)
		if err != nil {
			return report.Document{}, err
		}
		return report.GeneralJournal(j, accts), nil
	case reportLedger:
		l, err := a.journal.GeneralLedger(ctx, a.period.ID)
		if err != nil {
			return report.Document{}, err
		}
		return report.GeneralLedger(l, accts), nil
	case reportChart:
		rows, err := a.accounts.GetAccounts(ctx, a.period.ID, false)
		if err != nil {
			return report.Document{}, err
		}
		return report.ChartOfAccounts(rows), nil
	}

	tmpl, err := report.Template(name, detailed)
	if err != nil {
		return report.Document{}, err
	}
	balances, profit, err := a.balances.ComputeBalances(ctx, a.period.ID)
	if err != nil {
		return report.Document{}, err
	}
	rows, err := report.RenderStatement(tmpl, accts, balances, profit)
	if err != nil {
		return report.Document{}, err
	}
	return report.Statement(name, detailed, rows), nil
}

// writeReport writes to stdout, or to a file named after the organization,
// period year and document when outDir is set.
func writeReport(stdout io.Writer, a *app, outDir, document, ext string, write func(io.Writer) error) error {
	if outDir == "" {
		return write(stdout)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}
	path := filepath.Join(outDir, report.Filename(a.cfg.Organization.ShortName, periodYear(a), document)+ext)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return nil
}

// periodYear is the year the current period starts in, or ends in when it
// has no start. Open periods have no year.
func periodYear(a *app) int {
	date := a.period.StartDate
	if date == "" {
		date = a.period.EndDate
	}
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
