package charts

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats numbers with thousands separators.
var printer = message.NewPrinter(language.English)

// titleCaser turns target names such as "voltage" into "Voltage".
var titleCaser = cases.Title(language.English)

// grouped formats v with thousands separators and no decimals, e.g. 12,345.
func grouped(v float64) string {
	return printer.Sprintf("%.0f", v)
}

// groupedPrec formats v with thousands separators and 1 to 3 decimals.
func groupedPrec(v float64, prec int) string {
	switch prec {
	case 1:
		return printer.Sprintf("%.1f", v)
	case 2:
		return printer.Sprintf("%.2f", v)
	default:
		return printer.Sprintf("%.3f", v)
	}
}

// percent formats an improvement, e.g. -20.0%.
func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// tickLabel formats an axis tick. Small magnitudes keep enough decimals
// to tell neighboring ticks apart.
func tickLabel(v float64) string {
	av := math.Abs(v)
	switch {
	case v == 0:
		return "0"
	case av >= 100:
		return grouped(v)
	case av >= 10:
		return groupedPrec(v, 1)
	case av >= 1:
		return groupedPrec(v, 2)
	default:
		return groupedPrec(v, 3)
	}
}

// titleCase normalizes a target name for display.
func titleCase(s string) string {
	return titleCaser.String(strings.ToLower(s))
}

// valueWithUnit formats a metric value for the summary table. Unitless
// metrics are large counts shown as grouped integers.
func valueWithUnit(v float64, unit string) string {
	if unit == "" {
		return grouped(v)
	}
	return fmt.Sprintf("%s %s", groupedPrec(v, 1), unit)
}

// signedPercentRange formats a set of percentages as "+22-43%", or "+70%"
// when they round to the same integer.
func signedPercentRange(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, math.Round(v))
		hi = math.Max(hi, math.Round(v))
	}
	if lo == hi {
		return fmt.Sprintf("%+.0f%%", lo)
	}
	return fmt.Sprintf("%+.0f-%.0f%%", lo, hi)
}
