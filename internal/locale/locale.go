// Package locale converts amounts and dates between their stored form and
// the Finnish notation used in forms and reports.
package locale

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	isoDateFormat = "2006-01-02"
	fiDateFormat  = "2.1.2006"
)

var amountRe = regexp.MustCompile(`^\d+(,\d\d)?$`)

var maxCents = decimal.NewFromInt(math.MaxInt64)

// ParseAmount converts a euro amount such as "12,34" or "1 200" to cents.
// Whitespace is ignored and an empty string is zero.
func ParseAmount(s string) (int64, error) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return 0, nil
	}
	if !amountRe.MatchString(s) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	cents := d.Shift(2)
	if cents.GreaterThan(maxCents) {
		return 0, fmt.Errorf("amount %q is too large", s)
	}
	return cents.IntPart(), nil
}

// FormatCents renders a positive amount as "12,34". Zero and negative
// amounts render as the empty string, which is how forms show "no amount".
func FormatCents(cents int64) string {
	if cents <= 0 {
		return ""
	}
	return FormatCentsSigned(cents)
}

// FormatCentsSigned renders any amount, e.g. "-12,34" or "0,00".
func FormatCentsSigned(cents int64) string {
	return strings.Replace(decimal.New(cents, -2).StringFixed(2), ".", ",", 1)
}

// ISOFromFi converts "2.1.2006" to "2006-01-02". An empty string stays empty.
func ISOFromFi(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	t, err := time.Parse(fiDateFormat, s)
	if err != nil {
		return "", fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t.Format(isoDateFormat), nil
}

// FiFromISO converts "2006-01-02" to "2.1.2006". Unparseable input yields
// the empty string.
func FiFromISO(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse(isoDateFormat, s)
	if err != nil {
		return ""
	}
	return t.Format(fiDateFormat)
}

// ParseDate accepts either an ISO or a Finnish date and returns it in ISO
// form.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if t, err := time.Parse(isoDateFormat, s); err == nil {
		return t.Format(isoDateFormat), nil
	}
	return ISOFromFi(s)
}

// Today returns the current date in ISO form.
func Today() string {
	return time.Now().Format(isoDateFormat)
}
