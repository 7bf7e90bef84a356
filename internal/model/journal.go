package model

import "math"

// JournalEntry is a bill as it appears in the general journal.
type JournalEntry struct {
	BillID      int
	Date        string // YYYY-MM-DD
	Description string
	Entries     []BillEntry
	DebitCents  int64
	CreditCents int64
}

// LedgerLine is one posting of an account in the general ledger, carrying
// the account's running balance after the posting.
type LedgerLine struct {
	AccountID    int
	BillID       int
	Date         string
	Description  string
	DebitCents   int64
	CreditCents  int64
	BalanceCents int64
}

// EntryTotals sums the debit and credit sides of entries.
func EntryTotals(entries []BillEntry) (debit, credit int64) {
	for _, e := range entries {
		if e.Debit {
			debit += e.Cents()
		} else {
			credit += e.Cents()
		}
	}
	return debit, credit
}

// CheckedEntryTotals is EntryTotals that reports false when an entry
// amount or the sum of either side does not fit in an int64.
func CheckedEntryTotals(entries []BillEntry) (debit, credit int64, ok bool) {
	for _, e := range entries {
		cents, ok := e.CheckedCents()
		if !ok {
			return 0, 0, false
		}
		side := &credit
		if e.Debit {
			side = &debit
		}
		if *side > math.MaxInt64-cents {
			return 0, 0, false
		}
		*side += cents
	}
	return debit, credit, true
}

// BillAmount is the larger of a bill's debit and credit totals.
func BillAmount(entries []BillEntry) int64 {
	d, c := EntryTotals(entries)
	return max(d, c)
}
