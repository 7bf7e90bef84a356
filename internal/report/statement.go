// Package report renders accounting statements and books as ordered rows
// of text and amounts, ready for an external layout.
package report

import (
	"fmt"
	"strings"

	"github.com/massikone/massikone/internal/balance"
	"github.com/massikone/massikone/internal/locale"
	"github.com/massikone/massikone/internal/model"
)

// PrintRow is one printable line of a report.
type PrintRow struct {
	Kind    RowKind
	Indent  int
	Text    string
	Amount  string // formatted Cents, empty when the row shows no amount
	Cents   int64
	Bold    bool
	Columns []string // further amount columns, e.g. debit and credit
}

// String renders the row as its text followed by its amounts.
func (r PrintRow) String() string {
	parts := make([]string, 0, 2+len(r.Columns))
	if r.Text != "" {
		parts = append(parts, r.Text)
	}
	if r.Amount != "" {
		parts = append(parts, r.Amount)
	}
	for _, c := range r.Columns {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

func amountRow(kind RowKind, indent int, text string, cents int64) PrintRow {
	return PrintRow{Kind: kind, Indent: indent, Text: text, Amount: locale.FormatCentsSigned(cents), Cents: cents}
}

// RenderStatement folds a statement template over a period's balances.
// Group rows are left out when their total is zero, detail rows list each
// account with a nonzero balance, and zero totals are left out.
func RenderStatement(rows []TemplateRow, accounts map[int]model.Account, balances balance.Balances, profit int64) ([]PrintRow, error) {
	var out []PrintRow
	for _, row := range rows {
		if err := balance.ValidateRanges(row.Ranges); err != nil {
			return nil, fmt.Errorf("template row %q: %w", row.Title, err)
		}

		switch row.Kind {
		case KindSpacer:
			out = append(out, PrintRow{Kind: KindSpacer, Indent: row.Level})
		case KindHeading:
			out = append(out, PrintRow{Kind: KindHeading, Indent: row.Level, Text: row.Title, Bold: true})
		case KindGroup:
			if rowTotal(row, accounts, balances, profit) != 0 {
				out = append(out, PrintRow{Kind: KindGroup, Indent: row.Level, Text: row.Title})
			}
		case KindDetail:
			for _, a := range balance.AccountsInRanges(accounts, row.Ranges) {
				raw := balances[a.ID]
				if raw == 0 {
					continue
				}
				text := fmt.Sprintf("%d %s", a.ID, a.Title)
				out = append(out, amountRow(KindDetail, row.Level+1, text, balance.Display(a.Type, raw)))
			}
		case KindTotal:
			if total := rowTotal(row, accounts, balances, profit); total != 0 {
				r := amountRow(KindTotal, row.Level, row.Title, total)
				r.Bold = true
				out = append(out, r)
			}
		default:
			return nil, &model.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown row kind %q", row.Kind)}
		}
	}
	return out, nil
}

func rowTotal(row TemplateRow, accounts map[int]model.Account, balances balance.Balances, profit int64) int64 {
	total := balance.SignedRangeBalance(accounts, balances, row.Ranges)
	if row.Profit {
		total += profit
	}
	return total
}
