package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/massikone/massikone/internal/accounts"
	"github.com/massikone/massikone/internal/config"
	"github.com/massikone/massikone/internal/gitops"
	"github.com/massikone/massikone/internal/locale"
)

// chartFile is the chart of accounts written by init.
const chartFile = "chart-of-accounts.txt"

func newInitCommand() *cobra.Command {
	var name, dbURL, start, end string
	var useGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize new books",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), cmd.OutOrStdout(), absDir, name, dbURL, start, end, useGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "organization name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&dbURL, "database", "", "database URL (default: sqlite file in the directory)")
	cmd.Flags().StringVar(&start, "start", "", "first day of the accounting period")
	cmd.Flags().StringVar(&end, "end", "", "last day of the accounting period")
	cmd.Flags().BoolVar(&useGit, "git", false, "keep the configuration and chart under git")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, dir, name, dbURL, start, end string, useGit bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", cfgPath, err)
	}

	cfg := config.Default(name)
	cfg.Chart.Path = chartFile
	if dbURL != "" {
		cfg.Database.URL = dbURL
	}
	var err error
	if cfg.Period.Start, err = locale.ParseDate(start); err != nil {
		return err
	}
	if cfg.Period.End, err = locale.ParseDate(end); err != nil {
		return err
	}

	// Write the chart of accounts for local editing.
	if err := os.WriteFile(filepath.Join(dir, chartFile), accounts.DefaultChartText(), 0o644); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	gitignore := "massikone.db\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	// Migrate the database and snapshot the chart into the first period.
	a, err := openApp(ctx, &globalOptions{configPath: cfgPath})
	if err != nil {
		return err
	}
	err = a.accounts.Seed(ctx, a.period.ID)
	a.Close()
	if err != nil {
		return fmt.Errorf("seeding accounts: %w", err)
	}
	fmt.Fprintf(out, "Initialized books for %s at %s\n", name, dir)

	if !useGit {
		return nil
	}
	if !gitops.IsRepo(dir) {
		if err := gitops.Init(ctx, dir); err != nil {
			return err
		}
	}
	hash, err := gitops.CommitAll(ctx, dir, "Initialize books for "+name, gitops.DefaultAuthor)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Committed %s\n", hash)
	return nil
}
