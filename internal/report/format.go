package report

import (
	"math"

	"github.com/shopspring/decimal"
)

const notAvailable = "n/a"

// FormatPrice renders a price as currency with two decimals, e.g. "$10.80".
func FormatPrice(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return notAvailable
	}
	return "$" + decimal.NewFromFloat(p).StringFixed(2)
}

// FormatPercent renders a percentage with two decimals, e.g. "2.86%".
func FormatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return notAvailable
	}
	return decimal.NewFromFloat(p).StringFixed(2) + "%"
}
