package catalog_test

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
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func seeded() *store.MemoryStore {
	st := store.NewMemoryStore()
	st.PutProduct(models.Product{ID: "burger", Name: "BigBurger", Category: "Burgers", Price: dec(150), IsAvailable: true})
	st.PutProduct(models.Product{ID: "soda", Name: "Refrescos", Category: "Drinks", Price: dec(30), IsAvailable: true,
		StockQuantity: dec(5), LowStockThreshold: dec(10)})
	st.PutProduct(models.Product{ID: "fries", Name: "Papas fritas", Category: "sides", Price: dec(80), IsAvailable: true,
		StockQuantity: dec(0), LowStockThreshold: dec(10)})
	st.PutIngredient(models.Ingredient{ID: "beef", Name: "Carne", StockQuantity: dec(5000), LowStockThreshold: dec(500)})
	st.PutIngredient(models.Ingredient{ID: "bun", Name: "Pan", StockQuantity: dec(3), LowStockThreshold: dec(10)})
	st.PutExtra(models.Extra{ID: "bacon", Name: "Tocino", Price: dec(20)})
	st.PutExtra(models.Extra{ID: "cheese", Name: "Queso", Price: dec(15)})
	return st
}

func TestStockingModeByCategory(t *testing.T) {
	cat := catalog.New(seeded(), nil)
	require.NoError(t, cat.Load(context.Background()))

	mode, ok := cat.StockingMode("burger")
	require.True(t, ok)
	assert.Equal(t, models.StockingRecipeDerived, mode)

	mode, ok = cat.StockingMode("soda")
	require.True(t, ok)
	assert.Equal(t, models.StockingDirect, mode)

	_, ok = cat.StockingMode("missing")
	assert.False(t, ok)
}

func TestCustomDirectCategories(t *testing.T) {
	cat := catalog.New(seeded(), []string{" burgers "})
	require.NoError(t, cat.Load(context.Background()))

	mode, _ := cat.StockingMode("burger")
	assert.Equal(t, models.StockingDirect, mode)
	mode, _ = cat.StockingMode("soda")
	assert.Equal(t, models.StockingRecipeDerived, mode)
}

func TestListings(t *testing.T) {
	cat := catalog.New(seeded(), nil)
	require.NoError(t, cat.Load(context.Background()))

	assert.Len(t, cat.Products(), 3)
	assert.Len(t, cat.Ingredients(), 2)

	extras := cat.Extras()
	require.Len(t, extras, 2)
	assert.Equal(t, "cheese", extras[0].ID)
}

func TestStockStatus(t *testing.T) {
	cat := catalog.New(seeded(), nil)
	require.NoError(t, cat.Load(context.Background()))

	status := cat.StockStatus()

	var low, out []string
	for _, it := range status.LowStock {
		low = append(low, it.ID)
	}
	for _, it := range status.OutOfStock {
		out = append(out, it.ID)
	}
	assert.ElementsMatch(t, []string{"soda", "bun"}, low)
	assert.Equal(t, []string{"fries"}, out)
}

func TestLoadFailureKeepsPreviousCatalog(t *testing.T) {
	st := seeded()
	cat := catalog.New(st, nil)
	require.NoError(t, cat.Load(context.Background()))

	st.FailCatalogReads = errors.New("db down")
	assert.Error(t, cat.Load(context.Background()))

	_, ok := cat.Product("burger")
	assert.True(t, ok)
}
