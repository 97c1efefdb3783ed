// Package checkout turns a frozen cart into a persisted sale and its stock usage.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-pos/apperrors"
	"github.com/yeremiapane/restaurant-pos/cart"
	"github.com/yeremiapane/restaurant-pos/inventory"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/store"
)

type Policy string

const (
	// PolicySaleFirst saves the order, then applies stock usage one decrement
	// at a time. Failed decrements become a warning.
	PolicySaleFirst Policy = "sale_first"
	// PolicyAtomic saves the order and its stock usage in one transaction.
	PolicyAtomic Policy = "atomic"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicySaleFirst:
		return PolicySaleFirst, nil
	case PolicyAtomic:
		return PolicyAtomic, nil
	default:
		return "", fmt.Errorf("unknown inventory policy %q", s)
	}
}

type Cart interface {
	Freeze() ([]cart.Line, error)
	Thaw(clear bool)
}

type ShiftGate interface {
	IsOpen() bool
}

type OrderWriter interface {
	RecordOrder(ctx context.Context, order *models.Order) error
	MarkInventoryStatus(ctx context.Context, orderID, status string) error
}

type StockLedger interface {
	Resolve(ctx context.Context, consumption map[string]int) (inventory.Plan, []apperrors.StockFailure)
	Apply(ctx context.Context, plan inventory.Plan) []apperrors.StockFailure
}

type Result struct {
	Order   models.Order                `json:"order"`
	Change  decimal.Decimal             `json:"change"`
	Warning *apperrors.InventoryWarning `json:"warning,omitempty"`
}

type Config struct {
	Policy Policy
	// Atomic is required by PolicyAtomic.
	Atomic store.AtomicLedger
	// Outbox receives decrements that failed under PolicySaleFirst. Optional.
	Outbox store.RetryOutbox
	Clock  func() time.Time
}

type Confirmer struct {
	cart   Cart
	shift  ShiftGate
	orders OrderWriter
	ledger StockLedger
	log    logrus.FieldLogger

	policy Policy
	atomic store.AtomicLedger
	outbox store.RetryOutbox
	clock  func() time.Time
}

func NewConfirmer(c Cart, shift ShiftGate, orders OrderWriter, ledger StockLedger, log logrus.FieldLogger, cfg Config) (*Confirmer, error) {
	if cfg.Policy == "" {
		cfg.Policy = PolicySaleFirst
	}
	if cfg.Policy == PolicyAtomic && cfg.Atomic == nil {
		return nil, fmt.Errorf("inventory policy %s needs a store that supports atomic writes", cfg.Policy)
	}
	if cfg.Clock == nil {
		cfg.Clock = func() time.Time { return time.Now().UTC() }
	}
	return &Confirmer{
		cart:   c,
		shift:  shift,
		orders: orders,
		ledger: ledger,
		log:    log,
		policy: cfg.Policy,
		atomic: cfg.Atomic,
		outbox: cfg.Outbox,
		clock:  cfg.Clock,
	}, nil
}

func (c *Confirmer) Policy() Policy { return c.policy }

// Confirm records the sale held in the cart. The cart is cleared only when the
// order was saved; on any error it is left as it was.
func (c *Confirmer) Confirm(ctx context.Context, p Payment) (Result, error) {
	lines, err := c.cart.Freeze()
	if err != nil {
		return Result{}, err
	}
	saved := false
	defer func() { c.cart.Thaw(saved) }()

	if len(lines) == 0 {
		return Result{}, apperrors.Invalid("items", "cannot confirm an empty order")
	}
	total := cart.Total(lines)
	pay, err := settle(p, total)
	if err != nil {
		return Result{}, err
	}
	if c.shift != nil && !c.shift.IsOpen() {
		return Result{}, apperrors.ErrShiftNotOpen
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	order := buildOrder(lines, strings.ToLower(strings.TrimSpace(p.Method)), total, pay, c.clock())

	var res Result
	if c.policy == PolicyAtomic {
		res, err = c.confirmAtomic(ctx, order)
	} else {
		res, err = c.confirmSaleFirst(ctx, order)
	}
	if err != nil {
		return Result{}, err
	}
	res.Change = pay.change
	saved = true

	c.log.WithFields(logrus.Fields{
		"order_id":         res.Order.ID,
		"total":            res.Order.TotalAmount.StringFixed(2),
		"payment_method":   res.Order.PaymentMethod,
		"inventory_status": res.Order.InventoryStatus,
	}).Info("Order confirmed")
	return res, nil
}

func (c *Confirmer) confirmAtomic(ctx context.Context, order *models.Order) (Result, error) {
	plan, failures := c.ledger.Resolve(ctx, inventory.Consumption(order.Items))
	if len(failures) > 0 {
		f := failures[0]
		return Result{}, &apperrors.PersistenceError{
			Op:  "resolve stock usage",
			Err: fmt.Errorf("%s %s: %s", f.Kind, f.TargetID, f.Reason),
		}
	}
	if err := c.atomic.RecordOrderAndConsume(ctx, order, plan.Decrements); err != nil {
		return Result{}, &apperrors.PersistenceError{Op: "save order", Err: err}
	}
	return Result{Order: *order}, nil
}

func (c *Confirmer) confirmSaleFirst(ctx context.Context, order *models.Order) (Result, error) {
	if err := c.orders.RecordOrder(ctx, order); err != nil {
		return Result{}, &apperrors.PersistenceError{Op: "save order", Err: err}
	}

	// The sale exists now. Stock usage runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	plan, failures := c.ledger.Resolve(ctx, inventory.Consumption(order.Items))
	failures = append(failures, c.ledger.Apply(ctx, plan)...)
	if len(failures) == 0 {
		return Result{Order: *order}, nil
	}

	warning := &apperrors.InventoryWarning{Failures: failures}
	c.log.WithField("order_id", order.ID).Warn(warning.Error())
	if c.outbox != nil {
		err := c.outbox.EnqueueStockRetries(ctx, retriesFor(order.ID, failures))
		if err == nil {
			order.InventoryStatus = models.InventoryPartial
			return Result{Order: *order, Warning: warning}, nil
		}
		c.log.WithField("order_id", order.ID).WithError(err).Error("Failed to enqueue stock retries")
	}

	// Without queued retries the order row itself must still say partial.
	if err := c.orders.MarkInventoryStatus(ctx, order.ID, models.InventoryPartial); err != nil {
		c.log.WithFields(logrus.Fields{
			"order_id":         order.ID,
			"inventory_status": order.InventoryStatus,
		}).WithError(err).Error("Inventory status of saved order is stale")
	} else {
		order.InventoryStatus = models.InventoryPartial
	}
	return Result{Order: *order, Warning: warning}, nil
}

func retriesFor(orderID string, failures []apperrors.StockFailure) []models.StockRetry {
	out := make([]models.StockRetry, 0, len(failures))
	for _, f := range failures {
		out = append(out, models.StockRetry{
			OrderID:   orderID,
			Kind:      f.Kind,
			TargetID:  f.TargetID,
			Quantity:  f.Quantity,
			LastError: f.Reason,
		})
	}
	return out
}

// buildOrder captures prices and costs as they are right now. Later catalog
// edits never reach a saved order.
func buildOrder(lines []cart.Line, method string, total decimal.Decimal, pay settlement, now time.Time) *models.Order {
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		item := models.OrderItem{
			ProductID:       l.Key.ProductID,
			Name:            l.Name,
			Quantity:        l.Quantity,
			PriceAtPurchase: l.UnitPrice,
			CostAtPurchase:  l.Cost,
			OriginalPrice:   l.OriginalPrice,
			IsCombo:         l.Key.Combo,
			Extras:          make([]models.ExtraSnapshot, 0, len(l.Extras)),
			Complements:     make([]models.ComplementSnapshot, 0, len(l.Complements)),
		}
		for _, e := range l.Extras {
			item.Extras = append(item.Extras, models.ExtraSnapshot{
				ID:        e.ID,
				Name:      e.Name,
				UnitPrice: e.UnitPrice,
				Quantity:  e.Quantity,
			})
		}
		for _, cp := range l.Complements {
			item.Complements = append(item.Complements, models.ComplementSnapshot{
				ProductID:      cp.ProductID,
				Name:           cp.Name,
				CostAtPurchase: cp.Cost,
			})
		}
		items = append(items, item)
	}
	return &models.Order{
		TotalAmount:     total,
		PaymentMethod:   method,
		AmountPaid:      pay.amountPaid,
		Change:          pay.change,
		ExchangeRate:    pay.exchangeRate,
		TotalInForeign:  pay.totalInForeign,
		Status:          models.OrderStatusCompleted,
		InventoryStatus: models.InventoryApplied,
		Items:           items,
		CreatedAt:       now,
	}
}
