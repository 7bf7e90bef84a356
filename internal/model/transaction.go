package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction represents a parsed bank statement row.
type BankTransaction struct {
	Date         time.Time
	Description  string
	Counterparty string
	Amount       decimal.Decimal // negative = money out, positive = money in
	Reference    string
}

// Cents returns the absolute amount in cents.
func (t BankTransaction) Cents() int64 {
	return t.Amount.Abs().Shift(2).Round(0).IntPart()
}
