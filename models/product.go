package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockingMode tells the stock ledger whether a product keeps its own stock
// counter or is produced from ingredients on demand.
type StockingMode string

const (
	StockingDirect        StockingMode = "direct"
	StockingRecipeDerived StockingMode = "recipe"
)

type Product struct {
	ID                string          `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name              string          `gorm:"type:varchar(255);not null" json:"name"`
	Description       string          `gorm:"type:text" json:"description"`
	Emoji             string          `gorm:"type:varchar(16)" json:"emoji"`
	Category          string          `gorm:"type:varchar(50);not null;index" json:"category"`
	Price             decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CostPerUnit       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cost_per_unit"`
	IsAvailable       bool            `gorm:"not null;default:true" json:"is_available"`
	StockQuantity     decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0" json:"stock_quantity"`
	LowStockThreshold decimal.Decimal `gorm:"type:decimal(14,3);not null;default:10" json:"low_stock_threshold"`
	ComboAvailable    bool            `gorm:"not null;default:false" json:"combo_available"`
	ComboPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"combo_price"`
	// StockingMode is derived from Category when the catalog is loaded.
	StockingMode StockingMode `gorm:"-" json:"stocking_mode"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type Ingredient struct {
	ID                string          `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name              string          `gorm:"type:varchar(255);not null" json:"name"`
	Emoji             string          `gorm:"type:varchar(16)" json:"emoji"`
	Unit              string          `gorm:"type:varchar(20);not null" json:"unit"`
	Category          string          `gorm:"type:varchar(50)" json:"category"`
	StockQuantity     decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0" json:"stock_quantity"`
	LowStockThreshold decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0" json:"low_stock_threshold"`
	CostPerUnit       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cost_per_unit"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// RecipeLink is one row of a product's bill of materials. QuantityUsed is
// consumed per unit of product sold.
type RecipeLink struct {
	ProductID    string          `gorm:"type:varchar(64);primaryKey" json:"product_id"`
	IngredientID string          `gorm:"type:varchar(64);primaryKey" json:"ingredient_id"`
	QuantityUsed decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity_used"`
}

var ErrInvalidRecipeQuantity = errors.New("recipe quantity_used must be greater than zero")

func (r *RecipeLink) BeforeSave(tx *gorm.DB) error {
	if !r.QuantityUsed.IsPositive() {
		return ErrInvalidRecipeQuantity
	}
	return nil
}

// Extra is a paid modifier that can be attached to a cart line.
type Extra struct {
	ID        string          `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(100);not null" json:"name"`
	Emoji     string          `gorm:"type:varchar(16)" json:"emoji"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
