// Package database creates the schema and loads the starter catalog.
package database

import (
	"fmt"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Product{},
		&models.Ingredient{},
		&models.RecipeLink{},
		&models.Extra{},
		&models.Order{},
		&models.OrderItem{},
		&models.CashTransaction{},
		&models.CashCut{},
		&models.StockRetry{},
		&models.SessionValue{},
	)
	if err != nil {
		return fmt.Errorf("failed to AutoMigrate: %w", err)
	}
	utils.InfoLogger.Info("AutoMigrate completed.")
	return nil
}
