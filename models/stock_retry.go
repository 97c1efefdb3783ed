package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StockKindProduct    = "product"
	StockKindIngredient = "ingredient"
	// StockKindRecipe marks a product whose recipe could not be read, so its
	// ingredient decrements are still unknown.
	StockKindRecipe = "recipe"
)

// StockRetry is an outbox row for a decrement that failed after its order was saved.
type StockRetry struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	Kind      string          `gorm:"type:varchar(20);not null" json:"kind"`
	TargetID  string          `gorm:"type:varchar(64);not null" json:"target_id"`
	Quantity  decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
	Attempts  int             `gorm:"not null;default:0" json:"attempts"`
	LastError string          `gorm:"type:text" json:"last_error"`
	Processed bool            `gorm:"default:false;index:idx_retry_processed" json:"processed"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
}

// StockDecrement is one floor-clamped subtraction against the catalog store.
type StockDecrement struct {
	Kind     string          `json:"kind"`
	TargetID string          `json:"target_id"`
	Quantity decimal.Decimal `json:"quantity"`
}
