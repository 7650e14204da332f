package ingest

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency symbols, grouping separators and spacing that operators type into
// amount cells. Handles: 1,000,000 / $1,000.50 / 1 000 000
var amountNoise = strings.NewReplacer(
	"$", "", "€", "", "£", "",
	",", "", "_", "",
	" ", "", "\u00a0", "", "\u202f", "",
)

// Decimal orders of magnitude outside float64 range.
const (
	maxAmountMagnitude = 310
	minAmountMagnitude = -330
)

// coerceAmount parses an amount cell. It never fails: empty, malformed,
// negative or non-finite input yields 0.
func coerceAmount(text string) float64 {
	clean := amountNoise.Replace(strings.TrimSpace(text))
	if clean == "" {
		return 0
	}
	clean = strings.TrimSuffix(strings.TrimPrefix(strings.ToUpper(clean), "USD"), "USD")

	val, err := decimal.NewFromString(clean)
	if err != nil || val.IsNegative() {
		return 0
	}
	// Converting a huge exponent builds 10^|exp| in full; anything this far
	// outside float64 range is garbage or rounds to zero.
	if mag := len(val.Coefficient().String()) + int(val.Exponent()); mag > maxAmountMagnitude || mag < minAmountMagnitude {
		return 0
	}
	f, _ := val.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// FormatAmount renders an amount the way it is written back to the sheet.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).String()
}
