package importer

import (
	"fmt"
	"sort"

	"github.com/massikone/massikone/internal/model"
)

// Source names the side a compared row comes from.
type Source string

const (
	SourceBills Source = "Massikone"
	SourceBank  Source = "Pankki"
)

// Item is a bill reduced to what a bank row can match.
type Item struct {
	Date        string // YYYY-MM-DD
	Cents       int64
	Description string
}

// CompareRow is one bill or bank row of a comparison, grouped by date and
// amount. Rows of a group share Key.
type CompareRow struct {
	Key         string
	Date        string
	Cents       int64
	Source      Source
	Description string
	Matched     bool // the group is exactly one bill and one bank row
}

// Compare groups bills and bank transactions by "date:cents", ordered by
// date then amount. Inside a group bills come before bank rows, each in
// input order. Bank amounts are compared by absolute value.
func Compare(bills []Item, bank []model.BankTransaction) []CompareRow {
	groups := make(map[string][]CompareRow)
	var keys []string
	add := func(src Source, date string, cents int64, desc string) {
		key := fmt.Sprintf("%s:%d", date, cents)
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], CompareRow{Key: key, Date: date, Cents: cents, Source: src, Description: desc})
	}
	for _, b := range bills {
		add(SourceBills, b.Date, b.Cents, b.Description)
	}
	for _, t := range bank {
		add(SourceBank, t.Date.Format("2006-01-02"), t.Cents(), t.Description)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := groups[keys[i]][0], groups[keys[j]][0]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Cents < b.Cents
	})

	var out []CompareRow
	for _, key := range keys {
		rows := groups[key]
		matched := len(rows) == 2 && rows[0].Source == SourceBills && rows[1].Source == SourceBank
		for _, r := range rows {
			r.Matched = matched
			out = append(out, r)
		}
	}
	return out
}
