package parser

import (
	"strconv"
	"strings"
)

// parseInt reads an integer field, defaulting to 0
func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// parseHundredths decodes a value published as percent x 100.
// A comma decimal separator is accepted.
func parseHundredths(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v / 100
}

// FormatPercent renders v with two decimals, a comma separator and a trailing %
func FormatPercent(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1) + "%"
}

// FormatHundredths decodes a percent x 100 field and formats it
func FormatHundredths(s string) string {
	return FormatPercent(parseHundredths(s))
}
