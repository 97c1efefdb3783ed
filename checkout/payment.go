package checkout

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/apperrors"
	"github.com/yeremiapane/restaurant-pos/models"
)

type Payment struct {
	Method         string          `json:"payment_method"`
	AmountTendered decimal.Decimal `json:"amount_paid"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
}

// settlement is what the customer actually handed over for a given total.
type settlement struct {
	amountPaid     decimal.Decimal
	change         decimal.Decimal
	exchangeRate   decimal.Decimal
	totalInForeign decimal.Decimal
}

func validMethod(m string) bool {
	for _, known := range models.PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

func settle(p Payment, total decimal.Decimal) (settlement, error) {
	method := strings.ToLower(strings.TrimSpace(p.Method))
	if !validMethod(method) {
		return settlement{}, apperrors.Invalid("payment_method", "unknown payment method "+p.Method)
	}

	switch method {
	case models.PaymentCash:
		if p.AmountTendered.LessThan(total) {
			return settlement{}, apperrors.Invalid("amount_paid", "amount paid must cover the total for cash payments")
		}
		return settlement{
			amountPaid: p.AmountTendered,
			change:     p.AmountTendered.Sub(total),
		}, nil
	case models.PaymentDollars:
		if !p.ExchangeRate.IsPositive() {
			return settlement{}, apperrors.Invalid("exchange_rate", "exchange rate must be greater than zero")
		}
		return settlement{
			amountPaid:     total,
			exchangeRate:   p.ExchangeRate,
			totalInForeign: total.DivRound(p.ExchangeRate, 2),
		}, nil
	default:
		return settlement{amountPaid: total}, nil
	}
}
