package accounts

import "github.com/massikone/massikone/internal/model"

// TypeRule assigns an account type to an inclusive range of ids.
type TypeRule struct {
	From int
	To   int
	Type model.AccountType
}

// TypeRules derives account types from account ids. The first matching
// rule wins.
type TypeRules []TypeRule

// DefaultTypeRules follows the Finnish chart convention.
func DefaultTypeRules() TypeRules {
	return TypeRules{
		{From: 1000, To: 1999, Type: model.AccountTypeAsset},
		{From: 2000, To: 2399, Type: model.AccountTypeEquity},
		{From: 2400, To: 2999, Type: model.AccountTypeLiability},
		{From: 3000, To: 3999, Type: model.AccountTypeIncome},
		{From: 4000, To: 9999, Type: model.AccountTypeExpense},
	}
}

// TypeOf returns the type of account id. Ids outside every rule are
// expenses.
func (rules TypeRules) TypeOf(id int) model.AccountType {
	for _, r := range rules {
		if id >= r.From && id <= r.To {
			return r.Type
		}
	}
	return model.AccountTypeExpense
}
