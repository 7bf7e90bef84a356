package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const indentWidth = 2

// WriteText lays a document out as plain text: indented row text on the
// left and right-aligned amount columns.
func WriteText(w io.Writer, doc Document) error {
	textWidth := utf8.RuneCountInString(doc.Title)
	numCols := len(doc.Headers)
	for _, r := range doc.Rows {
		textWidth = max(textWidth, r.Indent*indentWidth+utf8.RuneCountInString(r.Text))
		numCols = max(numCols, len(amountCells(r)))
	}
	colWidths := make([]int, numCols)
	for i, h := range doc.Headers {
		colWidths[i] = utf8.RuneCountInString(h)
	}
	for _, r := range doc.Rows {
		for i, c := range amountCells(r) {
			colWidths[i] = max(colWidths[i], utf8.RuneCountInString(c))
		}
	}

	bw := bufio.NewWriter(w)
	writeLine(bw, doc.Title, textWidth, colWidths, doc.Headers)
	writeLine(bw, strings.Repeat("=", utf8.RuneCountInString(doc.Title)), textWidth, colWidths, nil)
	for _, r := range doc.Rows {
		text := strings.Repeat(" ", r.Indent*indentWidth) + r.Text
		if r.Kind == KindSpacer {
			text = ""
		}
		writeLine(bw, text, textWidth, colWidths, amountCells(r))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", doc.Name, err)
	}
	return nil
}

func amountCells(r PrintRow) []string {
	if r.Amount != "" {
		return append([]string{r.Amount}, r.Columns...)
	}
	return r.Columns
}

func writeLine(w *bufio.Writer, text string, textWidth int, colWidths []int, cells []string) {
	var b strings.Builder
	b.WriteString(text)
	if len(cells) > 0 {
		b.WriteString(strings.Repeat(" ", textWidth-utf8.RuneCountInString(text)))
		for i, c := range cells {
			b.WriteString("  ")
			b.WriteString(strings.Repeat(" ", colWidths[i]-utf8.RuneCountInString(c)))
			b.WriteString(c)
		}
	}
	b.WriteString("\n")
	_, _ = w.WriteString(strings.TrimRight(b.String(), " \n") + "\n")
}
