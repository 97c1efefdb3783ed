package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-pos/catalog"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setupLedger(t *testing.T) (*Ledger, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	mem.PutProduct(models.Product{ID: "burger", Name: "Hamburguesa", Category: "burgers", IsAvailable: true, ComboAvailable: true})
	mem.PutProduct(models.Product{ID: "hotdog", Name: "Hot Dog", Category: "hotdogs", IsAvailable: true})
	mem.PutProduct(models.Product{ID: "fries", Name: "Papas", Category: "sides", IsAvailable: true, StockQuantity: dec("10")})
	mem.PutProduct(models.Product{ID: "soda", Name: "Refresco", Category: "drinks", IsAvailable: true, StockQuantity: dec("1")})
	mem.PutIngredient(models.Ingredient{ID: "bun", Name: "Pan", StockQuantity: dec("100")})
	mem.PutIngredient(models.Ingredient{ID: "beef", Name: "Carne", StockQuantity: dec("1000")})
	mem.PutRecipe("burger",
		models.RecipeLink{IngredientID: "bun", QuantityUsed: dec("1")},
		models.RecipeLink{IngredientID: "beef", QuantityUsed: dec("150")},
	)
	mem.PutRecipe("hotdog", models.RecipeLink{IngredientID: "bun", QuantityUsed: dec("1")})

	cat := catalog.New(mem, nil)
	require.NoError(t, cat.Load(context.Background()))
	return NewLedger(cat, mem, utils.DiscardLogger()), mem
}

func TestConsumptionCreditsComplements(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: "A", Quantity: 2},
		{ProductID: "X", Quantity: 1, IsCombo: true, Complements: []models.ComplementSnapshot{{ProductID: "B"}}},
	}
	assert.Equal(t, map[string]int{"A": 2, "X": 1, "B": 1}, Consumption(items))
}

func TestConsumptionMultipliesComboQuantity(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: "burger", Quantity: 3, IsCombo: true, Complements: []models.ComplementSnapshot{{ProductID: "fries"}, {ProductID: "soda"}}},
		{ProductID: "soda", Quantity: 1},
	}
	assert.Equal(t, map[string]int{"burger": 3, "fries": 3, "soda": 4}, Consumption(items))
}

func TestResolveSplitsByStockingMode(t *testing.T) {
	l, _ := setupLedger(t)

	plan, failures := l.Resolve(context.Background(), map[string]int{"burger": 2, "hotdog": 1, "soda": 1, "gone": 1})
	require.Empty(t, failures)

	want := []models.StockDecrement{
		{Kind: models.StockKindProduct, TargetID: "gone", Quantity: dec("1")},
		{Kind: models.StockKindProduct, TargetID: "soda", Quantity: dec("1")},
		{Kind: models.StockKindIngredient, TargetID: "beef", Quantity: dec("300")},
		{Kind: models.StockKindIngredient, TargetID: "bun", Quantity: dec("3")},
	}
	require.Len(t, plan.Decrements, len(want))
	for i, d := range want {
		assert.Equal(t, d.Kind, plan.Decrements[i].Kind)
		assert.Equal(t, d.TargetID, plan.Decrements[i].TargetID)
		assert.True(t, d.Quantity.Equal(plan.Decrements[i].Quantity), "%s: got %s", d.TargetID, plan.Decrements[i].Quantity)
	}
}

func TestResolveReportsRecipeFailure(t *testing.T) {
	l, mem := setupLedger(t)
	mem.FailRecipe["burger"] = errors.New("recipe table locked")

	plan, failures := l.Resolve(context.Background(), map[string]int{"burger": 1, "hotdog": 2})
	require.Len(t, failures, 1)
	assert.Equal(t, models.StockKindRecipe, failures[0].Kind)
	assert.Equal(t, "burger", failures[0].TargetID)

	require.Len(t, plan.Decrements, 1)
	assert.Equal(t, "bun", plan.Decrements[0].TargetID)
	assert.True(t, plan.Decrements[0].Quantity.Equal(dec("2")))
}

func TestApplyClampsAndContinuesPastFailures(t *testing.T) {
	l, mem := setupLedger(t)
	mem.FailIngredientDec["beef"] = errors.New("connection reset")

	failures := l.Consume(context.Background(), []models.OrderItem{
		{ProductID: "burger", Quantity: 1, IsCombo: true, Complements: []models.ComplementSnapshot{{ProductID: "soda"}, {ProductID: "fries"}}},
		{ProductID: "soda", Quantity: 2},
	})

	require.Len(t, failures, 1)
	assert.Equal(t, "beef", failures[0].TargetID)
	assert.Contains(t, failures[0].Reason, "connection reset")

	assert.True(t, mem.ProductStock("soda").IsZero(), "stock never goes negative")
	assert.True(t, mem.ProductStock("fries").Equal(dec("9")))
	assert.True(t, mem.IngredientStock("bun").Equal(dec("99")))
	assert.True(t, mem.IngredientStock("beef").Equal(dec("1000")))
}

func TestApplyUnknownProductFails(t *testing.T) {
	l, _ := setupLedger(t)
	failures := l.Consume(context.Background(), []models.OrderItem{{ProductID: "gone", Quantity: 1}})
	require.Len(t, failures, 1)
	assert.Equal(t, models.StockKindProduct, failures[0].Kind)
}

func TestResolveDirectProductAlsoConsumesRecipe(t *testing.T) {
	l, mem := setupLedger(t)
	mem.PutIngredient(models.Ingredient{ID: "potato", Name: "Papa", StockQuantity: dec("50")})
	mem.PutRecipe("fries", models.RecipeLink{IngredientID: "potato", QuantityUsed: dec("2")})

	plan, failures := l.Resolve(context.Background(), map[string]int{"fries": 3})
	require.Empty(t, failures)
	require.Len(t, plan.Decrements, 2)
	assert.Equal(t, models.StockKindProduct, plan.Decrements[0].Kind)
	assert.Equal(t, "fries", plan.Decrements[0].TargetID)
	assert.True(t, plan.Decrements[0].Quantity.Equal(dec("3")))
	assert.Equal(t, models.StockKindIngredient, plan.Decrements[1].Kind)
	assert.Equal(t, "potato", plan.Decrements[1].TargetID)
	assert.True(t, plan.Decrements[1].Quantity.Equal(dec("6")))

	require.Empty(t, l.Apply(context.Background(), plan))
	assert.True(t, mem.ProductStock("fries").Equal(dec("7")))
	assert.True(t, mem.IngredientStock("potato").Equal(dec("44")))
}

func TestResolveRecipesSkipsProductCounters(t *testing.T) {
	l, mem := setupLedger(t)
	mem.PutRecipe("fries", models.RecipeLink{IngredientID: "bun", QuantityUsed: dec("1")})

	plan, failures := l.ResolveRecipes(context.Background(), map[string]int{"fries": 2, "burger": 1})
	require.Empty(t, failures)
	for _, d := range plan.Decrements {
		assert.Equal(t, models.StockKindIngredient, d.Kind)
	}
	require.Len(t, plan.Decrements, 2)
	assert.Equal(t, "bun", plan.Decrements[1].TargetID)
	assert.True(t, plan.Decrements[1].Quantity.Equal(dec("3")))
}
