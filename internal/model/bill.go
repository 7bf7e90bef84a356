package model

import (
	"math"
	"math/bits"
)

// ClosedType records how a bill was closed.
type ClosedType string

const (
	ClosedReimbursed ClosedType = "reimbursed"
	ClosedDenied     ClosedType = "denied"
)

// Bill is an expense or reimbursement record. A bill is open until it has a
// closed date.
type Bill struct {
	ID           int
	Description  string
	PaidDate     string // YYYY-MM-DD, empty if unpaid
	PaidUserID   int
	PaidUserName string
	ClosedDate   string
	ClosedType   ClosedType
	ClosedUserID int
	CreatedDate  string
	AmountCents  int64 // max of debit and credit sums, or the submitted amount without entries

	Entries []BillEntry
	Tags    []string
	Images  []string // image IDs ordered by bill_image_num
}

// IsOpen reports whether the bill has not been closed.
func (b Bill) IsOpen() bool {
	return b.ClosedDate == ""
}

// BillEntry is one signed line of a bill posted to one account.
type BillEntry struct {
	BillID        int
	RowNumber     int
	AccountID     int    `validate:"gt=0"`
	Debit         bool
	UnitCount     int64  `validate:"gte=1"`
	UnitCostCents int64  `validate:"gte=0"`
	Description   string `validate:"max=500"`
}

// Cents returns the entry amount.
func (e BillEntry) Cents() int64 {
	return e.UnitCount * e.UnitCostCents
}

// CheckedCents is Cents that reports false when either factor is negative
// or the product does not fit in an int64.
func (e BillEntry) CheckedCents() (int64, bool) {
	if e.UnitCount < 0 || e.UnitCostCents < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(e.UnitCount), uint64(e.UnitCostCents))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, false
	}
	return int64(lo), true
}

// SignedCents returns the amount with debits positive and credits negative.
func (e BillEntry) SignedCents() int64 {
	if e.Debit {
		return e.Cents()
	}
	return -e.Cents()
}

// User is a person who pays bills or administers the books.
type User struct {
	ID        int
	Email     string
	FullName  string
	ShortName string
	IsAdmin   bool
}
