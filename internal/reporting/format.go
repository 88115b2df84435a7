package reporting

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatUSD renders an amount with two decimals, rounding half away from zero.
func FormatUSD(v float64) string {
	return fixed2(v)
}

// FormatPayback renders a payback period, "never" when absent.
func FormatPayback(years *float64) string {
	if years == nil {
		return "never"
	}
	return fixed2(*years)
}

// formatQty renders a physical quantity with two decimals.
func formatQty(v float64) string {
	return fixed2(v)
}

// fixed2 rounds through decimal. NaN and Inf, which decimal cannot hold,
// are spelled out instead.
func fixed2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
