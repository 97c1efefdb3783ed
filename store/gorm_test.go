package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-pos/apperrors"
	"github.com/yeremiapane/restaurant-pos/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.Ingredient{}, &models.RecipeLink{}, &models.Extra{},
		&models.Order{}, &models.OrderItem{}, &models.CashTransaction{}, &models.CashCut{},
		&models.StockRetry{},
	))
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedStore(t *testing.T, db *gorm.DB) *GormStore {
	t.Helper()
	require.NoError(t, db.Create(&models.Product{ID: "prod_1", Name: "BigBurger", Category: "burgers", Price: dec("150"), IsAvailable: true}).Error)
	require.NoError(t, db.Create(&models.Product{ID: "prod_11", Name: "Refrescos", Category: "drinks", Price: dec("30"), IsAvailable: true, StockQuantity: dec("3")}).Error)
	require.NoError(t, db.Create(&models.Ingredient{ID: "ing_1", Name: "Carne de res", Unit: "gr", StockQuantity: dec("100")}).Error)
	require.NoError(t, db.Create(&models.RecipeLink{ProductID: "prod_1", IngredientID: "ing_1", QuantityUsed: dec("150")}).Error)
	return NewGormStore(db)
}

func TestDecrementClampsAtZero(t *testing.T) {
	db := setupTestDB(t)
	s := seedStore(t, db)
	ctx := context.Background()

	require.NoError(t, s.DecrementProductStock(ctx, "prod_11", dec("2")))
	require.NoError(t, s.DecrementProductStock(ctx, "prod_11", dec("5")))
	require.NoError(t, s.DecrementIngredientStock(ctx, "ing_1", dec("150")))

	var drink models.Product
	require.NoError(t, db.First(&drink, "id = ?", "prod_11").Error)
	assert.True(t, drink.StockQuantity.IsZero(), "got %s", drink.StockQuantity)

	var meat models.Ingredient
	require.NoError(t, db.First(&meat, "id = ?", "ing_1").Error)
	assert.True(t, meat.StockQuantity.IsZero(), "got %s", meat.StockQuantity)
}

func TestDecrementUnknownTarget(t *testing.T) {
	s := seedStore(t, setupTestDB(t))
	err := s.DecrementIngredientStock(context.Background(), "ing_404", dec("1"))
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRecipeLinkRejectsNonPositiveQuantity(t *testing.T) {
	db := setupTestDB(t)
	err := db.Create(&models.RecipeLink{ProductID: "prod_1", IngredientID: "ing_2", QuantityUsed: decimal.Zero}).Error
	assert.ErrorIs(t, err, models.ErrInvalidRecipeQuantity)
}

func TestRecordAndQueryOrders(t *testing.T) {
	s := seedStore(t, setupTestDB(t))
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	old := &models.Order{TotalAmount: dec("10"), PaymentMethod: models.PaymentCash, CreatedAt: start.Add(-time.Hour)}
	require.NoError(t, s.RecordOrder(ctx, old))

	order := &models.Order{
		TotalAmount:   dec("200"),
		PaymentMethod: models.PaymentCard,
		AmountPaid:    dec("200"),
		CreatedAt:     start.Add(time.Minute),
		Items: []models.OrderItem{{
			ProductID:       "prod_1",
			Name:            "BigBurger (Combo)",
			Quantity:        1,
			PriceAtPurchase: dec("200"),
			IsCombo:         true,
			Extras:          []models.ExtraSnapshot{{ID: "extra_2", Name: "Tocino", UnitPrice: dec("20"), Quantity: 1}},
			Complements:     []models.ComplementSnapshot{{ProductID: "prod_11", Name: "Refrescos", CostAtPurchase: dec("8")}},
		}},
	}
	require.NoError(t, s.RecordOrder(ctx, order))
	assert.NotEmpty(t, order.ID)

	orders, err := s.QueryOrdersSince(ctx, start)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	item := orders[0].Items[0]
	assert.Equal(t, "prod_1", item.ProductID)
	require.Len(t, item.Complements, 1)
	assert.Equal(t, "prod_11", item.Complements[0].ProductID)
	require.Len(t, item.Extras, 1)
	assert.True(t, item.Extras[0].UnitPrice.Equal(dec("20")))
}

func TestRecordOrderAndConsumeRollsBack(t *testing.T) {
	db := setupTestDB(t)
	s := seedStore(t, db)
	ctx := context.Background()

	order := &models.Order{TotalAmount: dec("30"), PaymentMethod: models.PaymentCash, CreatedAt: time.Now().UTC()}
	err := s.RecordOrderAndConsume(ctx, order, []models.StockDecrement{
		{Kind: models.StockKindProduct, TargetID: "prod_11", Quantity: dec("1")},
		{Kind: models.StockKindIngredient, TargetID: "ing_missing", Quantity: dec("1")},
	})
	require.Error(t, err)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
	var drink models.Product
	require.NoError(t, db.First(&drink, "id = ?", "prod_11").Error)
	assert.True(t, drink.StockQuantity.Equal(dec("3")))
}

func TestTransactionsFilteredByType(t *testing.T) {
	s := seedStore(t, setupTestDB(t))
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, tx := range []models.CashTransaction{
		{Type: models.TxInitialFund, Amount: dec("500"), CreatedAt: start},
		{Type: models.TxExpense, Amount: dec("40"), Category: "gas", CreatedAt: start.Add(time.Minute)},
		{Type: models.TxWithdrawal, Amount: dec("100"), CreatedAt: start.Add(2 * time.Minute)},
	} {
		tx := tx
		require.NoError(t, s.RecordCashTransaction(ctx, &tx))
	}

	expenses, err := s.QueryTransactionsSince(ctx, start, models.TxExpense)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "gas", expenses[0].Category)

	all, err := s.QueryTransactionsSince(ctx, start)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPurchaseAndAdjust(t *testing.T) {
	s := seedStore(t, setupTestDB(t))
	ctx := context.Background()

	p, err := s.AddProductPurchase(ctx, Purchase{ProductID: "prod_11", Quantity: dec("24"), CostPerUnit: dec("12"), SalePrice: dec("35")})
	require.NoError(t, err)
	assert.True(t, p.StockQuantity.Equal(dec("27")))
	assert.True(t, p.CostPerUnit.Equal(dec("12")))
	assert.True(t, p.Price.Equal(dec("35")))

	i, err := s.AdjustIngredientStock(ctx, "ing_1", dec("-500"))
	require.NoError(t, err)
	assert.True(t, i.StockQuantity.IsZero())

	_, err = s.AddProductPurchase(ctx, Purchase{ProductID: "nope", Quantity: dec("1")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStockRetryOutbox(t *testing.T) {
	s := seedStore(t, setupTestDB(t))
	ctx := context.Background()

	order := &models.Order{TotalAmount: dec("30"), PaymentMethod: models.PaymentCash, CreatedAt: time.Now().UTC()}
	require.NoError(t, s.RecordOrder(ctx, order))

	require.NoError(t, s.EnqueueStockRetries(ctx, []models.StockRetry{
		{OrderID: order.ID, Kind: models.StockKindProduct, TargetID: "prod_11", Quantity: dec("1")},
		{OrderID: order.ID, Kind: models.StockKindIngredient, TargetID: "ing_1", Quantity: dec("150"), Attempts: 5},
	}))

	var saved models.Order
	require.NoError(t, s.DB.First(&saved, "id = ?", order.ID).Error)
	assert.Equal(t, models.InventoryPartial, saved.InventoryStatus)

	pending, err := s.PendingStockRetries(ctx, 5, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	pending[0].Processed = true
	require.NoError(t, s.SaveStockRetry(ctx, &pending[0]))

	pending, err = s.PendingStockRetries(ctx, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMarkInventoryStatus(t *testing.T) {
	s := seedStore(t, setupTestDB(t))
	ctx := context.Background()

	order := &models.Order{TotalAmount: dec("30"), PaymentMethod: models.PaymentCard, CreatedAt: time.Now().UTC()}
	require.NoError(t, s.RecordOrder(ctx, order))

	require.NoError(t, s.MarkInventoryStatus(ctx, order.ID, models.InventoryPartial))
	var saved models.Order
	require.NoError(t, s.DB.First(&saved, "id = ?", order.ID).Error)
	assert.Equal(t, models.InventoryPartial, saved.InventoryStatus)

	assert.ErrorIs(t, s.MarkInventoryStatus(ctx, "missing", models.InventoryPartial), apperrors.ErrNotFound)
}
