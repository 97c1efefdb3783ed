// Package store holds the catalog and ledger persistence used by the engine.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/models"
)

// CatalogStore owns products, ingredients, extras and recipe links.
// Decrements must be atomic and never leave a negative stock.
type CatalogStore interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetIngredients(ctx context.Context) ([]models.Ingredient, error)
	GetExtras(ctx context.Context) ([]models.Extra, error)
	GetRecipeLinks(ctx context.Context, productID string) ([]models.RecipeLink, error)
	DecrementProductStock(ctx context.Context, productID string, qty decimal.Decimal) error
	DecrementIngredientStock(ctx context.Context, ingredientID string, qty decimal.Decimal) error
	AddProductPurchase(ctx context.Context, purchase Purchase) (models.Product, error)
	AdjustIngredientStock(ctx context.Context, ingredientID string, delta decimal.Decimal) (models.Ingredient, error)
}

// LedgerStore owns the append-only sale and cash records.
type LedgerStore interface {
	RecordOrder(ctx context.Context, order *models.Order) error
	MarkInventoryStatus(ctx context.Context, orderID, status string) error
	RecordCashTransaction(ctx context.Context, tx *models.CashTransaction) error
	RecordCashCut(ctx context.Context, cut *models.CashCut) error
	QueryOrdersSince(ctx context.Context, since time.Time) ([]models.Order, error)
	QueryTransactionsSince(ctx context.Context, since time.Time, types ...models.TransactionType) ([]models.CashTransaction, error)
	ListCashCuts(ctx context.Context, limit int) ([]models.CashCut, error)
}

// AtomicLedger writes an order together with its stock consumption, or nothing.
type AtomicLedger interface {
	RecordOrderAndConsume(ctx context.Context, order *models.Order, decrements []models.StockDecrement) error
}

// RetryOutbox keeps decrements that failed after their order was saved.
type RetryOutbox interface {
	EnqueueStockRetries(ctx context.Context, retries []models.StockRetry) error
	PendingStockRetries(ctx context.Context, maxAttempts, limit int) ([]models.StockRetry, error)
	SaveStockRetry(ctx context.Context, retry *models.StockRetry) error
}

// Purchase restocks a product and refreshes its cost and sale price.
// Zero CostPerUnit or SalePrice keeps the current value.
type Purchase struct {
	ProductID   string
	Quantity    decimal.Decimal
	CostPerUnit decimal.Decimal
	SalePrice   decimal.Decimal
}
