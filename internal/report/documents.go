package report

import (
	"fmt"

	"github.com/massikone/massikone/internal/journal"
	"github.com/massikone/massikone/internal/locale"
	"github.com/massikone/massikone/internal/model"
)

// Document is a titled report with optional column headers.
type Document struct {
	Name    string // file name stem, e.g. "tase"
	Title   string
	Headers []string // amount column headers
	Rows    []PrintRow
}

// ChartOfAccounts lists an account tree. Headings are bold and indented
// by depth; accounts sit one level below their heading.
func ChartOfAccounts(rows []model.AccountRow) Document {
	doc := Document{Name: "tilikartta", Title: "Tilikartta"}
	accountIndent := 0
	for _, r := range rows {
		if r.IsHeading() {
			doc.Rows = append(doc.Rows, PrintRow{Kind: KindHeading, Indent: r.NestingLevel, Text: r.Title, Bold: true})
			accountIndent = r.NestingLevel + 1
			continue
		}
		doc.Rows = append(doc.Rows, PrintRow{Kind: KindDetail, Indent: accountIndent, Text: r.AccountIDStr + " " + r.Title})
	}
	return doc
}

// GeneralJournal lists bills in order with their debit and credit lines.
func GeneralJournal(j journal.Journal, accounts map[int]model.Account) Document {
	doc := Document{Name: "paivakirja", Title: "Päiväkirja", Headers: []string{"Debet", "Kredit"}}
	for _, je := range j.Entries {
		doc.Rows = append(doc.Rows, PrintRow{
			Kind: KindHeading,
			Text: fmt.Sprintf("#%d %s %s", je.BillID, locale.FiFromISO(je.Date), je.Description),
			Bold: true,
		})
		for _, e := range je.Entries {
			doc.Rows = append(doc.Rows, PrintRow{
				Kind:    KindEntry,
				Indent:  1,
				Text:    accountText(accounts, e.AccountID),
				Cents:   e.SignedCents(),
				Columns: debitCredit(e.Debit, e.Cents()),
			})
		}
	}
	doc.Rows = append(doc.Rows, PrintRow{
		Kind:    KindTotal,
		Text:    "Yhteensä",
		Bold:    true,
		Columns: []string{locale.FormatCentsSigned(j.DebitCents), locale.FormatCentsSigned(j.CreditCents)},
	})
	return doc
}

// GeneralLedger lists each account's postings with a running balance.
func GeneralLedger(l journal.Ledger, accounts map[int]model.Account) Document {
	doc := Document{Name: "paakirja", Title: "Pääkirja", Headers: []string{"Debet", "Kredit", "Saldo"}}
	for _, a := range l.Accounts {
		doc.Rows = append(doc.Rows, PrintRow{Kind: KindHeading, Text: accountText(accounts, a.AccountID), Bold: true})
		for _, line := range a.Lines {
			cols := debitCredit(line.CreditCents == 0, line.DebitCents+line.CreditCents)
			cols = append(cols, locale.FormatCentsSigned(line.BalanceCents))
			doc.Rows = append(doc.Rows, PrintRow{
				Kind:    KindEntry,
				Indent:  1,
				Text:    fmt.Sprintf("#%d %s %s", line.BillID, locale.FiFromISO(line.Date), line.Description),
				Cents:   line.BalanceCents,
				Columns: cols,
			})
		}
		doc.Rows = append(doc.Rows, PrintRow{
			Kind:   KindTotal,
			Indent: 1,
			Text:   "Yhteensä",
			Bold:   true,
			Columns: []string{
				locale.FormatCentsSigned(a.DebitCents),
				locale.FormatCentsSigned(a.CreditCents),
				locale.FormatCentsSigned(a.DebitCents - a.CreditCents),
			},
		})
	}
	doc.Rows = append(doc.Rows, PrintRow{
		Kind:    KindTotal,
		Text:    "Kaikki tilit yhteensä",
		Bold:    true,
		Columns: []string{locale.FormatCentsSigned(l.DebitCents), locale.FormatCentsSigned(l.CreditCents), ""},
	})
	return doc
}

// Statement wraps rendered statement rows as a document.
func Statement(name string, detailed bool, rows []PrintRow) Document {
	doc := Document{Rows: rows}
	switch name {
	case IncomeStatement:
		doc.Name, doc.Title = "tuloslaskelma", "Tuloslaskelma"
	case BalanceSheet:
		doc.Name, doc.Title = "tase", "Tase"
	default:
		doc.Name, doc.Title = name, name
	}
	if detailed {
		doc.Name += " erittelyin"
		doc.Title += " erittelyin"
	}
	return doc
}

func accountText(accounts map[int]model.Account, id int) string {
	if a, ok := accounts[id]; ok {
		return fmt.Sprintf("%d %s", id, a.Title)
	}
	return fmt.Sprintf("%d", id)
}

func debitCredit(debit bool, cents int64) []string {
	if debit {
		return []string{locale.FormatCentsSigned(cents), ""}
	}
	return []string{"", locale.FormatCentsSigned(cents)}
}
