package accounts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/massikone/massikone/internal/model"
)

// Header is the first line of a chart-of-accounts file.
const Header = "row_type;account_id;title;extra_field"

const (
	numFields = 4
	colType   = 0
	colID     = 1
	colTitle  = 2
	colExtra  = 3

	rowAccount = "A"
	rowHeading = "H"
)

const (
	// MaxHeadingDepth caps heading depth so headings always sort before the
	// account sharing their id.
	MaxHeadingDepth = 8
	// AccountSortLevel is the sort level of postable accounts.
	AccountSortLevel = model.AccountNestingLevel
)

// ChartNode is one parsed line of a chart of accounts.
type ChartNode struct {
	model.AccountRow
	SortKey int
}

// LoadChart parses a chart of accounts using the default type rules.
func LoadChart(r io.Reader) ([]ChartNode, error) {
	return LoadChartWithRules(r, DefaultTypeRules())
}

// LoadChartWithRules parses a chart of accounts. Lines are
// "row_type;account_id;title;extra_field" after a header line. For headings
// (H) the extra field is the depth; for accounts (A) it may name an account
// type that overrides rules. Nodes are returned in sort key order. Any bad
// line fails the whole load with a *model.ParseError.
func LoadChartWithRules(r io.Reader, rules TypeRules) ([]ChartNode, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var nodes []ChartNode
	seen := make(map[int]int)
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
			return nil, fmt.Errorf("reading chart of accounts: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if header {
			header = false
			continue
		}

		node, err := parseChartRecord(rec, rules)
		if err != nil {
			return nil, &model.ParseError{Row: line, Reason: err.Error()}
		}
		if prev, dup := seen[node.SortKey]; dup {
			return nil, &model.ParseError{
				Row:    line,
				Reason: fmt.Sprintf("duplicate of line %d (account %d, level %d)", prev, node.RawAccountID, node.NestingLevel),
			}
		}
		seen[node.SortKey] = line
		nodes = append(nodes, node)
	}

	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].SortKey < nodes[j].SortKey })
	return nodes, nil
}

func parseChartRecord(rec []string, rules TypeRules) (ChartNode, error) {
	if len(rec) != numFields {
		return ChartNode{}, fmt.Errorf("expected %d fields, got %d", numFields, len(rec))
	}

	id, err := strconv.Atoi(strings.TrimSpace(rec[colID]))
	if err != nil {
		return ChartNode{}, fmt.Errorf("parsing account_id %q: %w", rec[colID], err)
	}
	title := NormalizeTitle(rec[colTitle])
	extra := strings.TrimSpace(rec[colExtra])

	var nesting int
	typ := rules.TypeOf(id)
	switch strings.TrimSpace(rec[colType]) {
	case rowHeading:
		if id < 0 {
			return ChartNode{}, fmt.Errorf("negative account_id %d", id)
		}
		depth, err := strconv.Atoi(extra)
		if err != nil {
			return ChartNode{}, fmt.Errorf("parsing heading depth %q: %w", extra, err)
		}
		if depth < 0 {
			return ChartNode{}, fmt.Errorf("negative heading depth %d", depth)
		}
		nesting = min(depth, MaxHeadingDepth)
	case rowAccount:
		if id <= 0 {
			return ChartNode{}, fmt.Errorf("account_id must be positive, got %d", id)
		}
		if t, err := model.ParseAccountType(extra); err == nil {
			typ = t
		}
		nesting = AccountSortLevel
	default:
		return ChartNode{}, fmt.Errorf("unknown row type %q", rec[colType])
	}

	return ChartNode{
		AccountRow: displayRow(id, title, typ, nesting),
		SortKey:    10*id + nesting,
	}, nil
}

// displayRow derives the presentation fields of a chart row from its
// stored form. Loading and reading back a seeded period both go through it.
func displayRow(rawID int, title string, typ model.AccountType, nesting int) model.AccountRow {
	row := model.AccountRow{
		RawAccountID: rawID,
		Title:        title,
		Type:         typ,
		NestingLevel: nesting,
	}
	if nesting == model.AccountNestingLevel {
		row.AccountID = rawID
		row.AccountIDStr = strconv.Itoa(rawID)
		row.Prefix = row.AccountIDStr
		return row
	}
	row.Prefix = strings.Repeat("=", nesting+1)
	row.HTagLevel = nesting + 1
	return row
}

// NormalizeTitle trims a title and puts it in Unicode NFC form.
func NormalizeTitle(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// WriteChart writes nodes in the chart-of-accounts file format. Account
// types are written out when they differ from what rules would derive.
func WriteChart(w io.Writer, nodes []ChartNode, rules TypeRules) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ";")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, n := range nodes {
		rec := make([]string, numFields)
		rec[colID] = strconv.Itoa(n.RawAccountID)
		rec[colTitle] = n.Title
		if n.IsHeading() {
			rec[colType] = rowHeading
			rec[colExtra] = strconv.Itoa(n.NestingLevel)
		} else {
			rec[colType] = rowAccount
			rec[colExtra] = "0"
			if n.Type != rules.TypeOf(n.RawAccountID) {
				rec[colExtra] = string(n.Type)
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}
