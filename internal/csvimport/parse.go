// Package csvimport parses supplier price exports: comma separated, one row
// per (store, product) observation, with a fixed Bulgarian header row.
package csvimport

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseLine splits one CSV line into trimmed fields. A double quote toggles
// quoted mode, "" inside quotes is a literal quote and commas inside quotes
// do not separate fields. Unbalanced quotes are tolerated.
func ParseLine(line string) []string {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
	)
	rs := []rune(line)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '"':
			if inQuotes && i+1 < len(rs) && rs[i+1] == '"' {
				cur.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(cur.String()))
}

var lineBreak = regexp.MustCompile(`\r?\n`)

// ParseTable splits content into lines, drops blank ones and parses the rest.
// Quoted fields cannot span lines.
func ParseTable(content string) [][]string {
	content = strings.TrimPrefix(content, "\ufeff")
	var rows [][]string
	for _, line := range lineBreak.Split(content, -1) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rows = append(rows, ParseLine(line))
	}
	return rows
}

var whitespace = regexp.MustCompile(`\s`)
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)

// ParsePrice reads a supplier amount such as "12,50", "1 234.5" or "3.20 лв".
// Whitespace is removed and the first comma becomes the decimal point; the
// leading number is used and anything after it, exponents included, is
// ignored. ok is false when no number is present.
func ParsePrice(s string) (amount decimal.Decimal, ok bool) {
	norm := strings.Replace(whitespace.ReplaceAllString(s, ""), ",", ".", 1)
	m := leadingNumber.FindString(norm)
	if m == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
