package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/apperrors"
	"github.com/yeremiapane/restaurant-pos/catalog"
	"github.com/yeremiapane/restaurant-pos/hub"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type CatalogController struct {
	Catalog *catalog.Catalog
	Store   store.CatalogStore
	Hub     *hub.Hub
	Monitor *services.StockRetryMonitor
}

func NewCatalogController(cat *catalog.Catalog, st store.CatalogStore, h *hub.Hub, monitor *services.StockRetryMonitor) *CatalogController {
	return &CatalogController{Catalog: cat, Store: st, Hub: h, Monitor: monitor}
}

func (cc *CatalogController) GetProducts(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "List of products", cc.Catalog.Products())
}

func (cc *CatalogController) GetProduct(c *gin.Context) {
	p, ok := cc.Catalog.Product(c.Param("product_id"))
	if !ok {
		respondErr(c, apperrors.ErrNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product detail", p)
}

func (cc *CatalogController) GetIngredients(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "List of ingredients", cc.Catalog.Ingredients())
}

func (cc *CatalogController) GetExtras(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "List of extras", cc.Catalog.Extras())
}

func (cc *CatalogController) GetStockStatus(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Inventory status", cc.Catalog.StockStatus())
}

func (cc *CatalogController) Reload(c *gin.Context) {
	if err := cc.Catalog.Load(c.Request.Context()); err != nil {
		respondErr(c, err)
		return
	}
	cc.Hub.Broadcast(hub.EventCatalogUpdate, gin.H{"products": len(cc.Catalog.Products())})
	utils.RespondJSON(c, http.StatusOK, "Catalog reloaded", nil)
}

type purchaseRequest struct {
	Quantity    decimal.Decimal `json:"quantity"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	SalePrice   decimal.Decimal `json:"price"`
}

// RegisterPurchase restocks a product and refreshes its cost and sale price.
func (cc *CatalogController) RegisterPurchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.Quantity.IsPositive() {
		respondErr(c, apperrors.Invalid("quantity", "quantity must be greater than zero"))
		return
	}
	if req.CostPerUnit.IsNegative() || req.SalePrice.IsNegative() {
		respondErr(c, apperrors.Invalid("price", "prices cannot be negative"))
		return
	}

	product, err := cc.Store.AddProductPurchase(c.Request.Context(), store.Purchase{
		ProductID:   c.Param("product_id"),
		Quantity:    req.Quantity,
		CostPerUnit: req.CostPerUnit,
		SalePrice:   req.SalePrice,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	cc.refresh(c.Request.Context())
	utils.RespondJSON(c, http.StatusOK, "Purchase registered", product)
}

type adjustRequest struct {
	Delta decimal.Decimal `json:"delta"`
}

// AdjustIngredient adds or removes stock. The result never drops below zero.
func (cc *CatalogController) AdjustIngredient(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Delta.IsZero() {
		respondErr(c, apperrors.Invalid("delta", "delta cannot be zero"))
		return
	}

	ingredient, err := cc.Store.AdjustIngredientStock(c.Request.Context(), c.Param("ingredient_id"), req.Delta)
	if err != nil {
		respondErr(c, err)
		return
	}
	cc.refresh(c.Request.Context())
	utils.RespondJSON(c, http.StatusOK, "Ingredient stock adjusted", ingredient)
}

func (cc *CatalogController) GetRetryMetrics(c *gin.Context) {
	if cc.Monitor == nil {
		utils.RespondJSON(c, http.StatusOK, "Stock retry monitor disabled", services.StockMetrics{})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock retry metrics", cc.Monitor.GetMetrics())
}

// refresh reloads the catalog after a stock change and warns terminals about
// anything that ran low.
func (cc *CatalogController) refresh(ctx context.Context) {
	refreshCatalog(ctx, cc.Catalog, cc.Hub)
}

func refreshCatalog(ctx context.Context, cat *catalog.Catalog, h *hub.Hub) {
	if err := cat.Load(ctx); err != nil {
		utils.ErrorLogger.WithError(err).Error("Failed to reload catalog")
		return
	}
	status := cat.StockStatus()
	if len(status.LowStock) > 0 || len(status.OutOfStock) > 0 {
		h.Broadcast(hub.EventLowStock, status)
	}
}
