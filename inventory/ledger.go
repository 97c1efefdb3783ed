// Package inventory turns sold order items into stock decrements.
package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-pos/apperrors"
	"github.com/yeremiapane/restaurant-pos/models"
)

type ModeLookup interface {
	StockingMode(productID string) (models.StockingMode, bool)
}

type Store interface {
	GetRecipeLinks(ctx context.Context, productID string) ([]models.RecipeLink, error)
	DecrementProductStock(ctx context.Context, productID string, qty decimal.Decimal) error
	DecrementIngredientStock(ctx context.Context, ingredientID string, qty decimal.Decimal) error
}

// Plan is the ordered list of decrements for one sale.
type Plan struct {
	Decrements []models.StockDecrement `json:"decrements"`
}

func (p Plan) Empty() bool { return len(p.Decrements) == 0 }

type Ledger struct {
	modes ModeLookup
	store Store
	log   logrus.FieldLogger
}

func NewLedger(modes ModeLookup, store Store, log logrus.FieldLogger) *Ledger {
	return &Ledger{modes: modes, store: store, log: log}
}

// Consumption counts units sold per product. A combo credits its main product
// and each complement with the line quantity.
func Consumption(items []models.OrderItem) map[string]int {
	units := make(map[string]int)
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		units[it.ProductID] += it.Quantity
		for _, c := range it.Complements {
			units[c.ProductID] += it.Quantity
		}
	}
	return units
}

// Resolve expands consumption into product and ingredient decrements.
// Products with their own counter are decremented directly, and so are
// products the catalog no longer knows. Every product, whatever its mode,
// also consumes the ingredients of its recipe. A recipe that cannot be read
// is reported as a failure and the remaining products are still planned.
func (l *Ledger) Resolve(ctx context.Context, consumption map[string]int) (Plan, []apperrors.StockFailure) {
	var plan Plan
	for _, id := range sortedProducts(consumption) {
		mode, known := l.modes.StockingMode(id)
		if known && mode != models.StockingDirect {
			continue
		}
		plan.Decrements = append(plan.Decrements, models.StockDecrement{
			Kind:     models.StockKindProduct,
			TargetID: id,
			Quantity: decimal.NewFromInt(int64(consumption[id])),
		})
	}

	recipes, failures := l.ResolveRecipes(ctx, consumption)
	plan.Decrements = append(plan.Decrements, recipes.Decrements...)
	return plan, failures
}

// ResolveRecipes plans only the ingredient side of consumption, merged per
// ingredient and sorted by id.
func (l *Ledger) ResolveRecipes(ctx context.Context, consumption map[string]int) (Plan, []apperrors.StockFailure) {
	var (
		plan     Plan
		failures []apperrors.StockFailure
		perIngr  = map[string]decimal.Decimal{}
	)
	for _, id := range sortedProducts(consumption) {
		units := decimal.NewFromInt(int64(consumption[id]))
		links, err := l.store.GetRecipeLinks(ctx, id)
		if err != nil {
			l.log.WithFields(logrus.Fields{"product_id": id}).WithError(err).Error("Failed to read recipe")
			failures = append(failures, apperrors.StockFailure{
				Kind:     models.StockKindRecipe,
				TargetID: id,
				Quantity: units,
				Reason:   err.Error(),
			})
			continue
		}
		if len(links) == 0 {
			l.log.WithField("product_id", id).Debug("Product has no recipe, nothing to consume")
		}
		for _, link := range links {
			perIngr[link.IngredientID] = perIngr[link.IngredientID].Add(link.QuantityUsed.Mul(units))
		}
	}

	ingredientIDs := make([]string, 0, len(perIngr))
	for id := range perIngr {
		ingredientIDs = append(ingredientIDs, id)
	}
	sort.Strings(ingredientIDs)
	for _, id := range ingredientIDs {
		plan.Decrements = append(plan.Decrements, models.StockDecrement{
			Kind:     models.StockKindIngredient,
			TargetID: id,
			Quantity: perIngr[id],
		})
	}
	return plan, failures
}

func sortedProducts(consumption map[string]int) []string {
	ids := make([]string, 0, len(consumption))
	for id := range consumption {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Apply runs each decrement on its own. A failed decrement does not stop the rest.
func (l *Ledger) Apply(ctx context.Context, plan Plan) []apperrors.StockFailure {
	var failures []apperrors.StockFailure
	for _, d := range plan.Decrements {
		if err := l.ApplyOne(ctx, d); err != nil {
			l.log.WithFields(logrus.Fields{
				"kind":      d.Kind,
				"target_id": d.TargetID,
				"quantity":  d.Quantity.String(),
			}).WithError(err).Error("Failed to decrement stock")
			failures = append(failures, apperrors.StockFailure{
				Kind:     d.Kind,
				TargetID: d.TargetID,
				Quantity: d.Quantity,
				Reason:   err.Error(),
			})
		}
	}
	return failures
}

// ApplyOne sends a single decrement to the catalog store.
func (l *Ledger) ApplyOne(ctx context.Context, d models.StockDecrement) error {
	switch d.Kind {
	case models.StockKindProduct:
		return l.store.DecrementProductStock(ctx, d.TargetID, d.Quantity)
	case models.StockKindIngredient:
		return l.store.DecrementIngredientStock(ctx, d.TargetID, d.Quantity)
	default:
		return apperrors.Invalid("kind", "cannot decrement stock of kind "+d.Kind)
	}
}

// Consume resolves and applies the stock usage of a sale.
func (l *Ledger) Consume(ctx context.Context, items []models.OrderItem) []apperrors.StockFailure {
	plan, failures := l.Resolve(ctx, Consumption(items))
	return append(failures, l.Apply(ctx, plan)...)
}
