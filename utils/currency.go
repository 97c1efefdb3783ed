package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders an amount with thousands separators and two decimals.
// Example: 1675.5 -> "$1,675.50", -5 -> "-$5.00"
func FormatCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	formatted := amount.StringFixed(2)
	parts := strings.SplitN(formatted, ".", 2)
	integerPart := parts[0]
	decimalPart := parts[1]

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	return sign + "$" + strings.Join(groups, ",") + "." + decimalPart
}
