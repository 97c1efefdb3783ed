package catalog

import (
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/models"
)

type StockItem struct {
	Kind      string          `json:"kind"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit,omitempty"`
	Stock     decimal.Decimal `json:"stock_quantity"`
	Threshold decimal.Decimal `json:"low_stock_threshold"`
}

type StockStatus struct {
	LowStock   []StockItem `json:"low_stock"`
	OutOfStock []StockItem `json:"out_of_stock"`
}

// StockStatus lists directly-stocked products and ingredients that are at or
// below their threshold. Recipe-derived products never appear here.
func (c *Catalog) StockStatus() StockStatus {
	var items []StockItem
	for _, p := range c.Products() {
		if p.StockingMode != models.StockingDirect {
			continue
		}
		items = append(items, StockItem{
			Kind:      models.StockKindProduct,
			ID:        p.ID,
			Name:      p.Name,
			Stock:     p.StockQuantity,
			Threshold: p.LowStockThreshold,
		})
	}
	for _, i := range c.Ingredients() {
		items = append(items, StockItem{
			Kind:      models.StockKindIngredient,
			ID:        i.ID,
			Name:      i.Name,
			Unit:      i.Unit,
			Stock:     i.StockQuantity,
			Threshold: i.LowStockThreshold,
		})
	}

	status := StockStatus{LowStock: []StockItem{}, OutOfStock: []StockItem{}}
	for _, it := range items {
		switch {
		case !it.Stock.IsPositive():
			status.OutOfStock = append(status.OutOfStock, it)
		case it.Stock.LessThanOrEqual(it.Threshold):
			status.LowStock = append(status.LowStock, it)
		}
	}
	return status
}
