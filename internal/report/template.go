package report

import (
	"bytes"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/massikone/massikone/internal/balance"
	"github.com/massikone/massikone/internal/model"
)

//go:embed templates/*.txt
var templateFS embed.FS

// Statement names of the built-in templates.
const (
	IncomeStatement = "income-statement"
	BalanceSheet    = "balance-sheet"
)

// RowKind identifies what a template or print row represents.
type RowKind string

const (
	KindSpacer  RowKind = "-"
	KindHeading RowKind = "H"
	KindGroup   RowKind = "G"
	KindDetail  RowKind = "D"
	KindTotal   RowKind = "T"
	KindEntry   RowKind = "E" // journal and ledger lines
)

const profitToken = "P"

// TemplateRow is one line of a statement template.
type TemplateRow struct {
	Kind   RowKind
	Level  int
	Title  string
	Ranges []balance.Range
	Profit bool // add the period profit to the row's total
}

// ParseTemplate reads a statement template: "kind;level;title;ranges"
// lines after a header. Ranges are comma separated "lo-hi" or single ids;
// the token P adds the period profit. Malformed lines yield a
// *model.ParseError, unusable ranges a *model.ValidationError.
func ParseTemplate(r io.Reader) ([]TemplateRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows []TemplateRow
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &model.ParseError{Row: perr.Line, Reason: perr.Err.Error()}
			}
			return nil, fmt.Errorf("reading template: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if header {
			header = false
			continue
		}

		row, err := parseTemplateRecord(rec)
		if err != nil {
			var verr *model.ValidationError
			if errors.As(err, &verr) {
				verr.Field = fmt.Sprintf("line %d", line)
				return nil, verr
			}
			return nil, &model.ParseError{Row: line, Reason: err.Error()}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseTemplateRecord(rec []string) (TemplateRow, error) {
	if len(rec) != 4 {
		return TemplateRow{}, fmt.Errorf("expected 4 fields, got %d", len(rec))
	}
	row := TemplateRow{
		Kind:  RowKind(strings.TrimSpace(rec[0])),
		Title: strings.TrimSpace(rec[2]),
	}
	switch row.Kind {
	case KindSpacer, KindHeading, KindGroup, KindDetail, KindTotal:
	default:
		return TemplateRow{}, fmt.Errorf("unknown row kind %q", rec[0])
	}

	level, err := strconv.Atoi(strings.TrimSpace(rec[1]))
	if err != nil {
		return TemplateRow{}, fmt.Errorf("parsing level %q: %w", rec[1], err)
	}
	if level < 0 {
		return TemplateRow{}, fmt.Errorf("negative level %d", level)
	}
	row.Level = level

	for _, tok := range strings.Split(rec[3], ",") {
		tok = strings.TrimSpace(tok)
		switch {
		case tok == "":
		case tok == profitToken:
			row.Profit = true
		default:
			rng, err := parseRange(tok)
			if err != nil {
				return TemplateRow{}, err
			}
			row.Ranges = append(row.Ranges, rng)
		}
	}

	if err := balance.ValidateRanges(row.Ranges); err != nil {
		return TemplateRow{}, err
	}
	switch row.Kind {
	case KindGroup, KindTotal:
		if len(row.Ranges) == 0 && !row.Profit {
			return TemplateRow{}, &model.ValidationError{Reason: fmt.Sprintf("%s row %q has no ranges", row.Kind, row.Title)}
		}
	case KindDetail:
		if len(row.Ranges) == 0 || row.Profit {
			return TemplateRow{}, &model.ValidationError{Reason: "detail rows need account ranges and cannot use P"}
		}
	}
	return row, nil
}

func parseRange(tok string) (balance.Range, error) {
	lo, hi, isRange := strings.Cut(tok, "-")
	from, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return balance.Range{}, fmt.Errorf("parsing range %q: %w", tok, err)
	}
	if !isRange {
		return balance.Range{Lo: from, Hi: from}, nil
	}
	to, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return balance.Range{}, fmt.Errorf("parsing range %q: %w", tok, err)
	}
	return balance.Range{Lo: from, Hi: to}, nil
}

// Template returns a built-in statement template.
func Template(name string, detailed bool) ([]TemplateRow, error) {
	file := name
	if detailed {
		file += "-detailed"
	}
	data, err := templateFS.ReadFile("templates/" + file + ".txt")
	if err != nil {
		return nil, &model.NotFoundError{Kind: "template", ID: file}
	}
	return ParseTemplate(bytes.NewReader(data))
}
