package balance

import "github.com/massikone/massikone/internal/model"

// DisplaySign turns a raw balance into the amount shown for a single
// account: debit-natured types keep their sign, credit-natured types flip.
var DisplaySign = map[model.AccountType]int{
	model.AccountTypeAsset:     +1,
	model.AccountTypeLiability: -1,
	model.AccountTypeEquity:    -1,
	model.AccountTypeIncome:    -1,
	model.AccountTypeExpense:   +1,
}

// TotalSign is the sign used when balances of mixed types are totalled.
// Expenses count against income, so a total over income and expense
// accounts equals profit.
func TotalSign(t model.AccountType) int {
	sign, ok := DisplaySign[t]
	if !ok {
		return 1
	}
	if t == model.AccountTypeExpense {
		return -sign
	}
	return sign
}

// Display returns the display amount of one account's raw balance.
func Display(t model.AccountType, raw int64) int64 {
	sign, ok := DisplaySign[t]
	if !ok {
		sign = 1
	}
	return int64(sign) * raw
}
