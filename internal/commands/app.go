package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/massikone/massikone/internal/accounts"
	"github.com/massikone/massikone/internal/balance"
	"github.com/massikone/massikone/internal/bills"
	"github.com/massikone/massikone/internal/config"
	"github.com/massikone/massikone/internal/history"
	"github.com/massikone/massikone/internal/journal"
	"github.com/massikone/massikone/internal/logger"
	"github.com/massikone/massikone/internal/model"
	"github.com/massikone/massikone/internal/store"
)

// globalOptions are the persistent flags shared by all subcommands.
type globalOptions struct {
	configPath string
	userEmail  string
}

// app is the wired set of services one command runs against.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	store    *store.Store
	accounts *accounts.Service
	journal  *journal.Service
	balances *balance.Service
	bills    *bills.Service
	history  *history.Service
	period   model.Period
}

// openApp loads the project configuration next to opts.configPath, opens
// the database and wires the services for the default period.
func openApp(ctx context.Context, opts *globalOptions) (*app, error) {
	dir := filepath.Dir(opts.configPath)
	if err := config.LoadEnv(filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(cfg)

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	rules := typeRules(cfg)
	chart, err := accounts.LoadChartFile(resolvePath(dir, cfg.Chart.Path), rules)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, databaseURL(dir, cfg.Database.URL), log)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, store: st}
	a.accounts = accounts.NewService(st, chart, log)
	a.period, err = a.accounts.EnsureDefaultPeriod(ctx, cfg.Period.Start, cfg.Period.End)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	a.journal = journal.NewService(st, a.accounts, a.period.ID, log)
	a.balances = balance.NewService(a.accounts, a.journal, log)
	a.bills = bills.NewService(st, a.journal, log)
	a.history = history.NewService(st)
	return a, nil
}

func (a *app) Close() {
	_ = a.log.Sync()
	if err := a.store.Close(); err != nil {
		a.log.Warn("closing database", zap.Error(err))
	}
}

// actingUser resolves --user, defaulting to the first admin.
func (a *app) actingUser(ctx context.Context, email string) (model.User, error) {
	if email != "" {
		return a.bills.UserByEmail(ctx, email)
	}
	users, err := a.bills.ListUsers(ctx)
	if err != nil {
		return model.User{}, err
	}
	for _, u := range users {
		if u.IsAdmin {
			return u, nil
		}
	}
	return model.User{}, errors.New("no users yet: run `massikone user add` first")
}

func typeRules(cfg *config.Config) accounts.TypeRules {
	if len(cfg.AccountTypes) == 0 {
		return accounts.DefaultTypeRules()
	}
	rules := make(accounts.TypeRules, len(cfg.AccountTypes))
	for i, r := range cfg.AccountTypes {
		rules[i] = accounts.TypeRule{From: r.From, To: r.To, Type: r.Type}
	}
	return rules
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// databaseURL makes relative sqlite paths relative to the project
// directory.
func databaseURL(dir, url string) string {
	if strings.Contains(url, "://") || strings.HasPrefix(url, "file:") || strings.Contains(url, ":memory:") {
		return url
	}
	return "sqlite:" + resolvePath(dir, strings.TrimPrefix(url, "sqlite:"))
}

func parseIntArg(s, what string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return n, nil
}
