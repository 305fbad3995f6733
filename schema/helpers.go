package schema

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// moneyDigits is the maximum number of decimals shown for currency values.
const moneyDigits = 2

// FormatMoney renders a nullable amount as "$1,234.5", or "N/A" when absent.
// The sign goes before the currency symbol.
func FormatMoney(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return NotAvailable
	}
	s := roundedComma(math.Abs(*v))
	if *v < 0 {
		return "-$" + s
	}
	return "$" + s
}

// FormatNumber renders a nullable amount with thousands separators, or "N/A" when absent.
func FormatNumber(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return NotAvailable
	}
	if *v < 0 {
		return "-" + roundedComma(-*v)
	}
	return roundedComma(*v)
}

// roundedComma rounds to cents before adding separators; humanize truncates.
func roundedComma(v float64) string {
	scale := math.Pow(10, moneyDigits)
	return humanize.CommafWithDigits(math.Round(v*scale)/scale, moneyDigits)
}

// NormalizeHeader lowercases and trims a column header for case-insensitive matching.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
