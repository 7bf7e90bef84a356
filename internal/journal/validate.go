package journal

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/massikone/massikone/internal/model"
)

var validate = validator.New()

var entryFields = map[string]string{
	"AccountID":     "account_id",
	"UnitCount":     "unit_count",
	"UnitCostCents": "unit_cost_cents",
	"Description":   "description",
}

// AccountChecker tests whether an account ID is a postable account.
type AccountChecker interface {
	Exists(id int) bool
}

// AccountSet is an AccountChecker over a period's account map.
type AccountSet map[int]model.Account

// Exists reports whether id is in the set.
func (s AccountSet) Exists(id int) bool {
	_, ok := s[id]
	return ok
}

// ValidateEntries checks a bill's full entry list: field ranges, account
// references and that debits equal credits. An empty list is valid.
func ValidateEntries(billID int, entries []model.BillEntry, accounts AccountChecker) error {
	for i, e := range entries {
		if err := validate.Struct(e); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				fe := verrs[0]
				return &model.ValidationError{
					Field:  fmt.Sprintf("entries[%d].%s", i, entryFields[fe.Field()]),
					Reason: fmt.Sprintf("%v fails %s=%s", fe.Value(), fe.Tag(), fe.Param()),
				}
			}
			return fmt.Errorf("validating entry %d: %w", i, err)
		}
		if !accounts.Exists(e.AccountID) {
			return &model.ValidationError{
				Field:  fmt.Sprintf("entries[%d].account_id", i),
				Reason: fmt.Sprintf("unknown account %d", e.AccountID),
			}
		}
		if _, ok := e.CheckedCents(); !ok {
			return &model.ValidationError{
				Field:  fmt.Sprintf("entries[%d].unit_cost_cents", i),
				Reason: fmt.Sprintf("%d x %d cents is out of range", e.UnitCount, e.UnitCostCents),
			}
		}
	}

	debit, credit, ok := model.CheckedEntryTotals(entries)
	if !ok {
		return &model.ValidationError{Field: "entries", Reason: "debit or credit total is out of range"}
	}
	if debit != credit {
		return &model.ConsistencyError{BillID: billID, DebitCents: debit, CreditCents: credit}
	}
	return nil
}

// TwoLineEntries builds the common single-amount form of a bill: the
// credit line first, then the debit line. A side whose account is 0 is
// left out.
func TwoLineEntries(amountCents int64, debitAccount, creditAccount int) []model.BillEntry {
	var entries []model.BillEntry
	if creditAccount != 0 {
		entries = append(entries, model.BillEntry{
			AccountID: creditAccount, Debit: false, UnitCount: 1, UnitCostCents: amountCents, Description: "Credit",
		})
	}
	if debitAccount != 0 {
		entries = append(entries, model.BillEntry{
			AccountID: debitAccount, Debit: true, UnitCount: 1, UnitCostCents: amountCents, Description: "Debit",
		})
	}
	return entries
}
