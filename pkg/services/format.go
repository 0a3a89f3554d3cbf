package services

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// formatAmount renders v with two decimals and thousands separators,
// e.g. 45,123.50.
func formatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}

// formatPercent renders a signed percentage without grouping, e.g. +4.20.
func formatPercent(v float64) string {
	return fmt.Sprintf("%+.2f", v)
}
