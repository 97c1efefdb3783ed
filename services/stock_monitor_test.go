package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-pos/catalog"
	"github.com/yeremiapane/restaurant-pos/inventory"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setupMonitor(t *testing.T, maxAttempts int) (*StockRetryMonitor, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	mem.PutProduct(models.Product{ID: "prod_5", Name: "Hot Dog", Category: "hotdogs", IsAvailable: true})
	mem.PutProduct(models.Product{ID: "prod_11", Name: "Refrescos", Category: "drinks", IsAvailable: true, StockQuantity: dec("10")})
	mem.PutIngredient(models.Ingredient{ID: "ing_5", Name: "Salchicha", StockQuantity: dec("150")})
	mem.PutRecipe("prod_5", models.RecipeLink{IngredientID: "ing_5", QuantityUsed: dec("1")})

	cat := catalog.New(mem, nil)
	require.NoError(t, cat.Load(context.Background()))
	ledger := inventory.NewLedger(cat, mem, utils.DiscardLogger())
	return NewStockRetryMonitor(mem, ledger, utils.DiscardLogger(), time.Hour, maxAttempts), mem
}

func TestRetryAppliesPendingDecrement(t *testing.T) {
	m, mem := setupMonitor(t, 3)
	ctx := context.Background()
	require.NoError(t, mem.EnqueueStockRetries(ctx, []models.StockRetry{
		{OrderID: "o1", Kind: models.StockKindProduct, TargetID: "prod_11", Quantity: dec("2")},
	}))

	called := 0
	m.OnRecovered = func() { called++ }

	assert.Equal(t, 1, m.RunOnce(ctx))
	assert.True(t, mem.ProductStock("prod_11").Equal(dec("8")))
	assert.Equal(t, 1, called)
	assert.Equal(t, int64(1), m.GetMetrics().Recovered)

	assert.Equal(t, 0, m.RunOnce(ctx), "processed rows are not replayed")
	assert.True(t, mem.ProductStock("prod_11").Equal(dec("8")))
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	m, mem := setupMonitor(t, 2)
	ctx := context.Background()
	mem.FailIngredientDec["ing_5"] = errors.New("still locked")
	require.NoError(t, mem.EnqueueStockRetries(ctx, []models.StockRetry{
		{OrderID: "o1", Kind: models.StockKindIngredient, TargetID: "ing_5", Quantity: dec("1")},
	}))

	m.RunOnce(ctx)
	m.RunOnce(ctx)
	m.RunOnce(ctx)

	retries := mem.StockRetries()
	require.Len(t, retries, 1)
	assert.Equal(t, 2, retries[0].Attempts)
	assert.False(t, retries[0].Processed)
	assert.Contains(t, retries[0].LastError, "still locked")
	assert.Equal(t, int64(1), m.GetMetrics().Exhausted)
}

func TestRetryExpandsRecipeRows(t *testing.T) {
	m, mem := setupMonitor(t, 3)
	ctx := context.Background()
	require.NoError(t, mem.EnqueueStockRetries(ctx, []models.StockRetry{
		{OrderID: "o1", Kind: models.StockKindRecipe, TargetID: "prod_5", Quantity: dec("3")},
	}))

	m.RunOnce(ctx)
	retries := mem.StockRetries()
	require.Len(t, retries, 2)
	assert.True(t, retries[0].Processed)
	assert.Equal(t, models.StockKindIngredient, retries[1].Kind)
	assert.True(t, retries[1].Quantity.Equal(dec("3")))

	m.RunOnce(ctx)
	assert.True(t, mem.IngredientStock("ing_5").Equal(dec("147")))
}

func TestMonitorStartStop(t *testing.T) {
	m, _ := setupMonitor(t, 3)
	m.Interval = 10 * time.Millisecond
	m.Start()
	time.Sleep(50 * time.Millisecond)
	m.Stop()
	m.Stop()
	assert.Positive(t, m.GetMetrics().Runs)
}

func TestRetryRecipeRowOfDirectProductLeavesProductStock(t *testing.T) {
	m, mem := setupMonitor(t, 3)
	ctx := context.Background()
	mem.PutRecipe("prod_11", models.RecipeLink{IngredientID: "ing_5", QuantityUsed: dec("1")})
	require.NoError(t, mem.EnqueueStockRetries(ctx, []models.StockRetry{
		{OrderID: "o1", Kind: models.StockKindRecipe, TargetID: "prod_11", Quantity: dec("2")},
	}))

	m.RunOnce(ctx)
	m.RunOnce(ctx)

	assert.True(t, mem.ProductStock("prod_11").Equal(dec("10")))
	assert.True(t, mem.IngredientStock("ing_5").Equal(dec("148")))
}
