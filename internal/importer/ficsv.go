package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/massikone/massikone/internal/model"
)

// FiCSVParser parses semicolon separated exports of Finnish banks:
// "date;amount;counterparty;message" with D.M.YYYY dates and decimal
// comma amounts.
type FiCSVParser struct{}

// FiCSVFormat is the registry name of FiCSVParser.
const FiCSVFormat = "fi-csv"

const (
	fiDateFormat     = "2.1.2006"
	fiNumFields      = 4
	fiColDate        = 0
	fiColAmount      = 1
	fiColCounterpart = 2
	fiColMessage     = 3
)

// Format returns the parser name.
func (p *FiCSVParser) Format() string { return FiCSVFormat }

// Parse reads a bank export and returns BankTransactions.
func (p *FiCSVParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = fiNumFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading bank CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.BankTransaction
	for i, rec := range records[1:] {
		txn, err := parseFiRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func parseFiRow(rec []string) (model.BankTransaction, error) {
	date, err := time.Parse(fiDateFormat, strings.TrimSpace(rec[fiColDate]))
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing date %q: %w", rec[fiColDate], err)
	}

	amount, err := parseFiAmount(rec[fiColAmount])
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing amount %q: %w", rec[fiColAmount], err)
	}

	counterparty := strings.TrimSpace(rec[fiColCounterpart])
	message := strings.TrimSpace(rec[fiColMessage])
	desc := message
	if desc == "" {
		desc = counterparty
	}

	return model.BankTransaction{
		Date:         date,
		Description:  desc,
		Counterparty: counterparty,
		Amount:       amount,
		Reference:    makeFiRef(date, counterparty),
	}, nil
}

// parseFiAmount accepts "-1 234,50" style amounts, including non-breaking
// space thousands separators and a leading plus sign.
func parseFiAmount(s string) (decimal.Decimal, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		case ',':
			return '.'
		}
		return r
	}, s)
	s = strings.TrimPrefix(s, "+")
	return decimal.NewFromString(s)
}

// makeFiRef creates a reference like fi_20250103_KOTIMAANLI.
func makeFiRef(date time.Time, counterparty string) string {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, strings.ToUpper(counterparty))
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return fmt.Sprintf("fi_%s_%s", date.Format("20060102"), prefix)
}
