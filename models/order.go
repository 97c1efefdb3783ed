package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentCash        = "cash"
	PaymentCard        = "card"
	PaymentTransfer    = "transfer"
	PaymentMercadoPago = "mercadopago"
	PaymentDollars     = "dollars"
)

// PaymentMethods lists every method a terminal accepts, in display order.
var PaymentMethods = []string{PaymentCash, PaymentCard, PaymentTransfer, PaymentMercadoPago, PaymentDollars}

const (
	OrderStatusCompleted = "completed"

	InventoryApplied = "applied"
	InventoryPartial = "partial"
)

// Order is a confirmed sale. Only InventoryStatus changes after insert, when
// part of its stock usage is handed to the retry outbox.
type Order struct {
	ID              string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null;index" json:"payment_method"`
	AmountPaid      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount_paid"`
	Change          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"change"`
	ExchangeRate    decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0" json:"exchange_rate"`
	TotalInForeign  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_in_foreign"`
	Status          string          `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	InventoryStatus string          `gorm:"type:varchar(20);not null;default:'applied'" json:"inventory_status"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time       `gorm:"not null;index" json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem is the price and cost snapshot of one cart line at purchase time.
type OrderItem struct {
	ID              uint                 `gorm:"primaryKey" json:"-"`
	OrderID         string               `gorm:"type:varchar(36);not null;index" json:"-"`
	ProductID       string               `gorm:"type:varchar(64);not null;index" json:"product_id"`
	Name            string               `gorm:"type:varchar(255);not null" json:"name"`
	Quantity        int                  `gorm:"not null" json:"quantity"`
	PriceAtPurchase decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"price_at_purchase"`
	CostAtPurchase  decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"cost_at_purchase"`
	OriginalPrice   decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"original_price"`
	IsCombo         bool                 `gorm:"not null;default:false" json:"is_combo"`
	Extras          []ExtraSnapshot      `gorm:"type:text;serializer:json" json:"extras"`
	Complements     []ComplementSnapshot `gorm:"type:text;serializer:json" json:"complements"`
}

type ExtraSnapshot struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

type ComplementSnapshot struct {
	ProductID      string          `json:"product_id"`
	Name           string          `json:"name"`
	CostAtPurchase decimal.Decimal `json:"cost_at_purchase"`
}
