package shift

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/apperrors"
	"github.com/yeremiapane/restaurant-pos/models"
)

// MethodOther collects orders whose payment method is not a known one.
const MethodOther = "other"

// Summary is the reconciliation of the open shift at a point in time.
type Summary struct {
	StartTime     time.Time                   `json:"start_time"`
	EndTime       time.Time                   `json:"end_time"`
	InitialFund   decimal.Decimal             `json:"initial_fund"`
	CashSales     decimal.Decimal             `json:"cash_sales"`
	TotalSales    decimal.Decimal             `json:"total_sales"`
	TotalProfit   decimal.Decimal             `json:"total_profit"`
	TotalTickets  int                         `json:"total_tickets"`
	SalesByMethod map[string]decimal.Decimal  `json:"sales_by_method"`
	FundsAdded    decimal.Decimal             `json:"funds_added"`
	Withdrawals   decimal.Decimal             `json:"withdrawals"`
	TotalExpenses decimal.Decimal             `json:"total_expenses"`
	Expenses      []models.CashTransaction    `json:"expenses"`
	ExpectedCash  decimal.Decimal             `json:"expected_cash_in_box"`
	TopProducts   []models.ProductPerformance `json:"top_products"`
	TopProfit     []models.ProductPerformance `json:"top_profit_products"`
}

// CashCut freezes the summary against the cash actually counted.
func (s Summary) CashCut(countedCash decimal.Decimal, notes string) models.CashCut {
	return models.CashCut{
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		InitialFund:   s.InitialFund,
		CashSales:     s.CashSales,
		TotalSales:    s.TotalSales,
		TotalProfit:   s.TotalProfit,
		TotalTickets:  s.TotalTickets,
		TotalExpenses: s.TotalExpenses,
		FundsAdded:    s.FundsAdded,
		Withdrawals:   s.Withdrawals,
		ExpectedCash:  s.ExpectedCash,
		CountedCash:   countedCash,
		Difference:    countedCash.Sub(s.ExpectedCash),
		SalesByMethod: s.SalesByMethod,
		TopProducts:   s.TopProducts,
		TopProfit:     s.TopProfit,
		Notes:         notes,
		CreatedAt:     s.EndTime,
	}
}

// ExpectedCash is the cash that should be in the drawer.
func ExpectedCash(initialFund, cashSales, fundsAdded, withdrawals, expenses decimal.Decimal) decimal.Decimal {
	return initialFund.Add(cashSales).Add(fundsAdded).Sub(withdrawals).Sub(expenses)
}

func (a *Account) Summarize(ctx context.Context) (Summary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.state.IsSet {
		return Summary{}, apperrors.ErrShiftNotOpen
	}
	return a.summarize(ctx)
}

func (a *Account) summarize(ctx context.Context) (Summary, error) {
	since := a.state.StartedAt
	orders, err := a.ledger.QueryOrdersSince(ctx, since)
	if err != nil {
		return Summary{}, &apperrors.ReconciliationError{Err: err}
	}
	txs, err := a.ledger.QueryTransactionsSince(ctx, since,
		models.TxAddFund, models.TxExpense, models.TxWithdrawal)
	if err != nil {
		return Summary{}, &apperrors.ReconciliationError{Err: err}
	}

	s := Summary{
		StartTime:     since,
		EndTime:       a.clock(),
		InitialFund:   a.state.Amount,
		TotalTickets:  len(orders),
		SalesByMethod: make(map[string]decimal.Decimal, len(models.PaymentMethods)+1),
		Expenses:      []models.CashTransaction{},
	}
	for _, m := range models.PaymentMethods {
		s.SalesByMethod[m] = decimal.Zero
	}
	s.SalesByMethod[MethodOther] = decimal.Zero

	perf := map[string]*models.ProductPerformance{}
	credit := func(id, name string, qty int, profit decimal.Decimal) {
		p, ok := perf[id]
		if !ok {
			p = &models.ProductPerformance{ProductID: id, Name: name}
			perf[id] = p
		}
		p.Quantity += qty
		p.Profit = p.Profit.Add(profit)
	}

	for _, o := range orders {
		s.TotalSales = s.TotalSales.Add(o.TotalAmount)
		method := o.PaymentMethod
		if _, known := s.SalesByMethod[method]; !known {
			method = MethodOther
		}
		s.SalesByMethod[method] = s.SalesByMethod[method].Add(o.TotalAmount)

		for _, it := range o.Items {
			qty := decimal.NewFromInt(int64(it.Quantity))
			profit := it.PriceAtPurchase.Sub(it.CostAtPurchase).Mul(qty)
			s.TotalProfit = s.TotalProfit.Add(profit)
			credit(it.ProductID, it.Name, it.Quantity, profit)

			// Complements ship at no charge, so they only add cost.
			for _, c := range it.Complements {
				cprofit := c.CostAtPurchase.Neg().Mul(qty)
				s.TotalProfit = s.TotalProfit.Add(cprofit)
				credit(c.ProductID, c.Name, it.Quantity, cprofit)
			}
		}
	}
	s.CashSales = s.SalesByMethod[models.PaymentCash]

	for _, t := range txs {
		switch t.Type {
		case models.TxAddFund:
			s.FundsAdded = s.FundsAdded.Add(t.Amount)
		case models.TxWithdrawal:
			s.Withdrawals = s.Withdrawals.Add(t.Amount)
		case models.TxExpense:
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount)
			s.Expenses = append(s.Expenses, t)
		}
	}
	s.ExpectedCash = ExpectedCash(s.InitialFund, s.CashSales, s.FundsAdded, s.Withdrawals, s.TotalExpenses)

	ranked := make([]models.ProductPerformance, 0, len(perf))
	for _, p := range perf {
		ranked = append(ranked, *p)
	}
	s.TopProducts = topBy(ranked, a.topN, func(x, y models.ProductPerformance) int {
		return y.Quantity - x.Quantity
	})
	s.TopProfit = topBy(ranked, a.topN, func(x, y models.ProductPerformance) int {
		return y.Profit.Cmp(x.Profit)
	})
	return s, nil
}

// topBy sorts a copy of items with cmp, breaking ties by name, and keeps n.
func topBy(items []models.ProductPerformance, n int, cmp func(x, y models.ProductPerformance) int) []models.ProductPerformance {
	out := append([]models.ProductPerformance(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		if c := cmp(out[i], out[j]); c != 0 {
			return c < 0
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
