package eclipse

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var targetPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatTarget renders a numeric goal with en-US grouping, e.g. 45000000 -> "45,000,000".
func FormatTarget(target float64) string {
	return targetPrinter.Sprint(number.Decimal(target, number.MaxFractionDigits(3)))
}
