package cart

import "github.com/shopspring/decimal"

// BasePrice is the price of one unit before extras.
func BasePrice(originalPrice, comboPrice decimal.Decimal, isCombo bool) decimal.Decimal {
	if isCombo {
		return originalPrice.Add(comboPrice)
	}
	return originalPrice
}

func ExtrasTotal(extras []Extra) decimal.Decimal {
	total := decimal.Zero
	for _, e := range extras {
		total = total.Add(e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity))))
	}
	return total
}

// UnitPrice recomputes a line's unit price from its captured prices and extras.
func UnitPrice(l Line) decimal.Decimal {
	return BasePrice(l.OriginalPrice, l.ComboPrice, l.Key.Combo).Add(ExtrasTotal(l.Extras))
}

func LineTotal(l Line) decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(l))
	}
	return total
}

// Total is the amount charged for the cart. Taxes and discounts are not
// modelled, so it equals the subtotal.
func Total(lines []Line) decimal.Decimal {
	return Subtotal(lines)
}
