package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/massikone/massikone/internal/locale"
	"github.com/massikone/massikone/internal/model"
)

// Header is the CSV header of a journal export.
const Header = "bill_id,date,row_number,account_id,description,debit,credit"

const (
	numFields = 7
	colBillID = 0
	colDate   = 1
	colRow    = 2
	colAcctID = 3
	colDesc   = 4
	colDebit  = 5
	colCredit = 6
)

// WriteCSV exports a journal one entry per row, amounts as "12,34".
func WriteCSV(w io.Writer, journal Journal) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	row := 2
	for _, je := range journal.Entries {
		for _, e := range je.Entries {
			if err := cw.Write(marshalEntry(je, e)); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
			row++
		}
	}
	return cw.Error()
}

func marshalEntry(je model.JournalEntry, e model.BillEntry) []string {
	rec := make([]string, numFields)
	rec[colBillID] = strconv.Itoa(je.BillID)
	rec[colDate] = je.Date
	rec[colRow] = strconv.Itoa(e.RowNumber)
	rec[colAcctID] = strconv.Itoa(e.AccountID)
	rec[colDesc] = e.Description
	if e.Debit {
		rec[colDebit] = locale.FormatCentsSigned(e.Cents())
	} else {
		rec[colCredit] = locale.FormatCentsSigned(e.Cents())
	}
	return rec
}
