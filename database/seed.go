package database

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func product(id, name, emoji, category string, price, cost float64, combo bool, stock float64) models.Product {
	p := models.Product{
		ID:                id,
		Name:              name,
		Emoji:             emoji,
		Category:          category,
		Price:             d(price),
		CostPerUnit:       d(cost),
		IsAvailable:       true,
		StockQuantity:     d(stock),
		LowStockThreshold: d(10),
		ComboAvailable:    combo,
	}
	if combo {
		p.ComboPrice = d(50)
	}
	return p
}

var seedProducts = []models.Product{
	product("prod_1", "BigBurger", "👑", "burgers", 150, 65, true, 0),
	product("prod_2", "Cheese Burger", "🍔", "burgers", 80, 35, true, 0),
	product("prod_3", "Clásica", "🍔", "burgers", 90, 38, true, 0),
	product("prod_4", "Hawaiana", "🍍", "burgers", 110, 45, true, 0),
	product("prod_5", "Ranchera", "🐮", "burgers", 110, 48, true, 0),
	product("prod_6", "Hot Dog", "🌭", "hotdogs", 38, 15, true, 0),
	product("prod_7", "Aros de cebolla", "🧅", "sides", 75, 25, false, 40),
	product("prod_8", "Máxima Tentación", "✨", "sides", 140, 50, false, 30),
	product("prod_9", "Papas fritas", "🍟", "sides", 80, 20, false, 60),
	product("prod_10", "Salchipapas", "🍟", "sides", 95, 30, false, 40),
	product("prod_11", "Refrescos", "🥤", "drinks", 30, 12, false, 120),
}

var seedIngredients = []models.Ingredient{
	{ID: "ing_1", Name: "Carne de res", Emoji: "🥩", Unit: "gr", Category: "meats", StockQuantity: d(5000), LowStockThreshold: d(500), CostPerUnit: d(0.2)},
	{ID: "ing_2", Name: "Pan de hamburguesa", Emoji: "🍞", Unit: "pza", Category: "bakery", StockQuantity: d(100), LowStockThreshold: d(10), CostPerUnit: d(5)},
	{ID: "ing_3", Name: "Queso amarillo", Emoji: "🧀", Unit: "reb", Category: "dairy", StockQuantity: d(200), LowStockThreshold: d(20), CostPerUnit: d(2)},
	{ID: "ing_4", Name: "Papas", Emoji: "🥔", Unit: "kg", Category: "vegetables", StockQuantity: d(20), LowStockThreshold: d(2), CostPerUnit: d(30)},
	{ID: "ing_5", Name: "Salchicha", Emoji: "🌭", Unit: "pza", Category: "meats", StockQuantity: d(150), LowStockThreshold: d(15), CostPerUnit: d(7)},
}

var seedRecipes = []models.RecipeLink{
	{ProductID: "prod_1", IngredientID: "ing_1", QuantityUsed: d(300)},
	{ProductID: "prod_1", IngredientID: "ing_2", QuantityUsed: d(1)},
	{ProductID: "prod_1", IngredientID: "ing_3", QuantityUsed: d(2)},
	{ProductID: "prod_1", IngredientID: "ing_5", QuantityUsed: d(2)},
	{ProductID: "prod_2", IngredientID: "ing_1", QuantityUsed: d(150)},
	{ProductID: "prod_2", IngredientID: "ing_2", QuantityUsed: d(1)},
	{ProductID: "prod_2", IngredientID: "ing_3", QuantityUsed: d(1)},
	{ProductID: "prod_3", IngredientID: "ing_1", QuantityUsed: d(150)},
	{ProductID: "prod_3", IngredientID: "ing_2", QuantityUsed: d(1)},
	{ProductID: "prod_3", IngredientID: "ing_3", QuantityUsed: d(1)},
	{ProductID: "prod_4", IngredientID: "ing_1", QuantityUsed: d(150)},
	{ProductID: "prod_4", IngredientID: "ing_2", QuantityUsed: d(1)},
	{ProductID: "prod_5", IngredientID: "ing_1", QuantityUsed: d(150)},
	{ProductID: "prod_5", IngredientID: "ing_2", QuantityUsed: d(1)},
	{ProductID: "prod_6", IngredientID: "ing_5", QuantityUsed: d(1)},
	{ProductID: "prod_6", IngredientID: "ing_2", QuantityUsed: d(1)},
	{ProductID: "prod_9", IngredientID: "ing_4", QuantityUsed: d(0.25)},
	{ProductID: "prod_10", IngredientID: "ing_4", QuantityUsed: d(0.2)},
	{ProductID: "prod_10", IngredientID: "ing_5", QuantityUsed: d(1)},
}

var seedExtras = []models.Extra{
	{ID: "extra_1", Name: "Queso extra", Emoji: "🧀", Price: d(15)},
	{ID: "extra_2", Name: "Tocino", Emoji: "🥓", Price: d(20)},
	{ID: "extra_3", Name: "Aguacate", Emoji: "🥑", Price: d(25)},
	{ID: "extra_4", Name: "Jalapeños", Emoji: "🌶️", Price: d(10)},
}

// Seed loads the starter menu into an empty catalog. A catalog that already
// has products is left alone.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&seedProducts).Error; err != nil {
			return err
		}
		if err := tx.Create(&seedIngredients).Error; err != nil {
			return err
		}
		if err := tx.Create(&seedRecipes).Error; err != nil {
			return err
		}
		return tx.Create(&seedExtras).Error
	})
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	utils.InfoLogger.WithField("products", len(seedProducts)).Info("Seeded starter catalog")
	return nil
}
