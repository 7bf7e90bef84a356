// Package balance turns ledger entries into per-account balances and
// aggregates them over account ranges.
package balance

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/massikone/massikone/internal/model"
)

// Balances maps account ids to raw balances in cents: debits positive,
// credits negative.
type Balances map[int]int64

// CalcBalances sums entries per account. Profit is income minus expenses,
// i.e. the negated raw sum of all income and expense balances.
func CalcBalances(accounts map[int]model.Account, entries []model.BillEntry) (Balances, int64) {
	balances := make(Balances)
	for _, e := range entries {
		balances[e.AccountID] += e.SignedCents()
	}

	var pl int64
	for id, cents := range balances {
		switch accounts[id].Type {
		case model.AccountTypeIncome, model.AccountTypeExpense:
			pl += cents
		}
	}
	return balances, -pl
}

// Range is an inclusive range of account ids.
type Range struct {
	Lo int
	Hi int
}

// Contains reports whether id is inside r.
func (r Range) Contains(id int) bool {
	return id >= r.Lo && id <= r.Hi
}

func (r Range) String() string {
	if r.Lo == r.Hi {
		return fmt.Sprintf("%d", r.Lo)
	}
	return fmt.Sprintf("%d-%d", r.Lo, r.Hi)
}

// ValidateRanges rejects ranges with a non-positive or inverted bound.
func ValidateRanges(ranges []Range) error {
	for _, r := range ranges {
		if r.Lo <= 0 || r.Lo > r.Hi {
			return &model.ValidationError{Field: "range", Reason: fmt.Sprintf("bad account range %d-%d", r.Lo, r.Hi)}
		}
	}
	return nil
}

func inAny(ranges []Range, id int) bool {
	for _, r := range ranges {
		if r.Contains(id) {
			return true
		}
	}
	return false
}

// BalanceOfAccountRange sums the raw balances of accounts inside any of
// the ranges. Each account counts once however many ranges hold it.
func BalanceOfAccountRange(balances Balances, ranges []Range) int64 {
	var total int64
	for id, cents := range balances {
		if inAny(ranges, id) {
			total += cents
		}
	}
	return total
}

// SignedRangeBalance is BalanceOfAccountRange with each account's balance
// multiplied by the total sign of its type.
func SignedRangeBalance(accounts map[int]model.Account, balances Balances, ranges []Range) int64 {
	var total int64
	for id, cents := range balances {
		if inAny(ranges, id) {
			total += int64(TotalSign(accounts[id].Type)) * cents
		}
	}
	return total
}

// AccountsInRanges returns the accounts inside any of the ranges in id
// order.
func AccountsInRanges(accounts map[int]model.Account, ranges []Range) []model.Account {
	var out []model.Account
	for id, a := range accounts {
		if inAny(ranges, id) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AccountSource provides a period's postable accounts.
type AccountSource interface {
	AccountMap(ctx context.Context, periodID int) (map[int]model.Account, error)
}

// EntrySource provides the ledger entries of a period.
type EntrySource interface {
	PeriodEntries(ctx context.Context, periodID int) ([]model.BillEntry, error)
}

// Service computes balances from stored ledger entries.
type Service struct {
	accounts AccountSource
	entries  EntrySource
	log      *zap.Logger
}

// NewService creates a balance Service.
func NewService(accounts AccountSource, entries EntrySource, log *zap.Logger) *Service {
	return &Service{accounts: accounts, entries: entries, log: log.Named("balance")}
}

// ComputeBalances returns the balances and profit of a period.
func (s *Service) ComputeBalances(ctx context.Context, periodID int) (Balances, int64, error) {
	accounts, err := s.accounts.AccountMap(ctx, periodID)
	if err != nil {
		return nil, 0, fmt.Errorf("loading accounts: %w", err)
	}
	entries, err := s.entries.PeriodEntries(ctx, periodID)
	if err != nil {
		return nil, 0, fmt.Errorf("loading entries: %w", err)
	}
	balances, profit := CalcBalances(accounts, entries)
	s.log.Debug("computed balances",
		zap.Int("period_id", periodID),
		zap.Int("accounts", len(balances)),
		zap.Int64("profit_cents", profit))
	return balances, profit, nil
}
