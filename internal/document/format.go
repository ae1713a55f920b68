package document

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Fixed formats an amount with exactly two decimals and no grouping.
func Fixed(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Grouped formats an amount the way en-IN locale output does: the last
// three integer digits form a group and the rest are grouped in pairs,
// e.g. 1234567 -> "12,34,567". Up to three fraction digits are kept with
// trailing zeros dropped.
func Grouped(d decimal.Decimal) string {
	negative := d.IsNegative()
	s := d.Abs().Round(3).String()

	intPart, frac, _ := strings.Cut(s, ".")
	out := applyIndianGrouping(intPart)
	if frac != "" {
		out += "." + frac
	}
	if negative {
		out = "-" + out
	}
	return out
}

func applyIndianGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]
	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + "," + result
		remaining = remaining[:len(remaining)-2]
	}
	if len(remaining) > 0 {
		result = remaining + "," + result
	}
	return result
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w\s-]`)

// Filename builds a download name such as "Estimate_Acme_Corp.pdf".
func Filename(clientName string, isFinal bool, ext string) string {
	name := unsafeFilenameChars.ReplaceAllString(clientOrPlaceholder(clientName), "")
	name = strings.Join(strings.Fields(name), "_")
	if name == "" {
		name = placeholderClient
	}
	prefix := "Estimate"
	if isFinal {
		prefix = "Invoice"
	}
	return prefix + "_" + name + "." + ext
}
