package model

import "fmt"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// AccountTypes lists every account type in balance-sheet order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeIncome,
	AccountTypeExpense,
}

// ParseAccountType returns the AccountType named by s.
func ParseAccountType(s string) (AccountType, error) {
	for _, t := range AccountTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

// AccountNestingLevel is the nesting level reserved for postable accounts.
// Heading rows use levels below it.
const AccountNestingLevel = 9

// Account is a postable account of a period's chart.
type Account struct {
	ID    int
	Title string
	Type  AccountType
}

// AccountRow is one display-ready row of a period's account tree: either a
// heading or a postable account.
type AccountRow struct {
	RawAccountID int
	AccountID    int // 0 for headings
	AccountIDStr string
	Title        string
	Type         AccountType
	NestingLevel int
	Prefix       string
	HTagLevel    int // 0 for accounts
}

// IsHeading reports whether the row is a non-postable heading.
func (r AccountRow) IsHeading() bool {
	return r.NestingLevel != AccountNestingLevel
}

// Period is a date range scoping a chart snapshot and its balances.
// Empty dates leave that end of the range open.
type Period struct {
	ID        int
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
}

// Contains reports whether the ISO date falls inside the period. An empty
// date is only inside a fully open period.
func (p Period) Contains(isoDate string) bool {
	if isoDate == "" {
		return p.StartDate == "" && p.EndDate == ""
	}
	if p.StartDate != "" && isoDate < p.StartDate {
		return false
	}
	if p.EndDate != "" && isoDate > p.EndDate {
		return false
	}
	return true
}
