package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TxInitialFund TransactionType = "initial_fund"
	TxAddFund     TransactionType = "add_fund"
	TxExpense     TransactionType = "expense"
	TxWithdrawal  TransactionType = "withdrawal"
)

// CashTransaction is an append-only movement of the cash drawer.
type CashTransaction struct {
	ID        string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Type      TransactionType `gorm:"type:varchar(20);not null;index" json:"transaction_type"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Category  string          `gorm:"type:varchar(50)" json:"category,omitempty"`
	Notes     string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time       `gorm:"not null;index" json:"created_at"`
}

func (t *CashTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// CashCut is the frozen reconciliation of one shift.
type CashCut struct {
	ID            string                     `gorm:"type:varchar(36);primaryKey" json:"id"`
	StartTime     time.Time                  `gorm:"not null" json:"start_time"`
	EndTime       time.Time                  `gorm:"not null" json:"end_time"`
	InitialFund   decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"initial_fund"`
	CashSales     decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"cash_sales"`
	TotalSales    decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"total_sales"`
	TotalProfit   decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"total_profit"`
	TotalTickets  int                        `gorm:"not null" json:"total_tickets"`
	TotalExpenses decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"total_expenses"`
	FundsAdded    decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"funds_added"`
	Withdrawals   decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"withdrawals"`
	ExpectedCash  decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"expected_cash_in_box"`
	CountedCash   decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"final_cash_in_box"`
	Difference    decimal.Decimal            `gorm:"type:decimal(12,2);not null" json:"difference"`
	SalesByMethod map[string]decimal.Decimal `gorm:"type:text;serializer:json" json:"sales_by_method"`
	TopProducts   []ProductPerformance       `gorm:"type:text;serializer:json" json:"top_products"`
	TopProfit     []ProductPerformance       `gorm:"type:text;serializer:json" json:"top_profit_products"`
	Notes         string                     `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time                  `json:"created_at"`
}

func (c *CashCut) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type ProductPerformance struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"count"`
	Profit    decimal.Decimal `json:"profit"`
}
