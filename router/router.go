package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/cart"
	"github.com/yeremiapane/restaurant-pos/catalog"
	"github.com/yeremiapane/restaurant-pos/checkout"
	"github.com/yeremiapane/restaurant-pos/controllers"
	"github.com/yeremiapane/restaurant-pos/hub"
	"github.com/yeremiapane/restaurant-pos/middlewares"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/session"
	"github.com/yeremiapane/restaurant-pos/shift"
	"github.com/yeremiapane/restaurant-pos/store"
)

// Deps is everything the HTTP layer needs, built once by main.
type Deps struct {
	Catalog      *catalog.Catalog
	CatalogStore store.CatalogStore
	Ledger       store.LedgerStore
	Cart         *cart.Cart
	Confirmer    *checkout.Confirmer
	Shift        *shift.Account
	Sessions     *session.Store
	Hub          *hub.Hub
	Monitor      *services.StockRetryMonitor

	CORSOrigin         string
	RateLimitPerSecond int
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.TerminalID())
	if d.RateLimitPerSecond > 0 {
		r.Use(middlewares.NewRateLimiter(d.RateLimitPerSecond, time.Second).RateLimit())
	}

	catalogCtrl := controllers.NewCatalogController(d.Catalog, d.CatalogStore, d.Hub, d.Monitor)
	posCtrl := controllers.NewPOSController(d.Cart, d.Catalog, d.Sessions, d.Confirmer, d.Hub)
	orderCtrl := controllers.NewOrderController(d.Ledger, d.Shift)
	shiftCtrl := controllers.NewShiftController(d.Shift, d.Ledger, d.Hub)
	settingsCtrl := controllers.NewSettingsController(d.Sessions)
	eventsCtrl := controllers.NewEventsController(d.Hub, d.CORSOrigin)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/ws", eventsCtrl.Stream)

	// Catalog and inventory
	r.GET("/products", catalogCtrl.GetProducts)
	r.GET("/products/:product_id", catalogCtrl.GetProduct)
	r.POST("/products/:product_id/purchases", catalogCtrl.RegisterPurchase)
	r.GET("/ingredients", catalogCtrl.GetIngredients)
	r.POST("/ingredients/:ingredient_id/adjust", catalogCtrl.AdjustIngredient)
	r.GET("/extras", catalogCtrl.GetExtras)
	r.GET("/inventory/status", catalogCtrl.GetStockStatus)
	r.GET("/inventory/retries", catalogCtrl.GetRetryMetrics)
	r.POST("/catalog/reload", catalogCtrl.Reload)

	// Current order
	cartGroup := r.Group("/cart")
	{
		cartGroup.GET("", posCtrl.GetCart)
		cartGroup.DELETE("", posCtrl.ClearCart)
		cartGroup.POST("/lines", posCtrl.AddLine)
		cartGroup.PATCH("/lines", posCtrl.SetQuantity)
		cartGroup.DELETE("/lines", posCtrl.RemoveLine)
		cartGroup.POST("/lines/extras", posCtrl.AddExtra)
		cartGroup.PUT("/lines/extras", posCtrl.SetExtraQuantity)
	}

	r.GET("/orders", orderCtrl.GetOrders)
	r.POST("/orders", middlewares.NoStore(), middlewares.OrderLoggerMiddleware(), middlewares.RequireOpenShift(d.Shift), posCtrl.ConfirmOrder)

	// Cash shift
	r.GET("/shift", shiftCtrl.GetShift)
	r.POST("/shift/open", middlewares.NewStrictRateLimiter(time.Second, 3), shiftCtrl.OpenShift)
	r.GET("/shift/summary", middlewares.NoStore(), shiftCtrl.GetSummary)
	r.GET("/cash-cuts", middlewares.NoStore(), shiftCtrl.ListCashCuts)

	cash := r.Group("/shift")
	cash.Use(middlewares.NoStore(), middlewares.RequireOpenShift(d.Shift))
	cash.Use(middlewares.NewStrictRateLimiter(200*time.Millisecond, 10))
	{
		cash.POST("/funds", shiftCtrl.AddFund)
		cash.POST("/expenses", shiftCtrl.RecordExpense)
		cash.POST("/withdrawals", shiftCtrl.RecordWithdrawal)
		cash.POST("/cut", shiftCtrl.CashCut)
	}

	// Settings
	r.GET("/settings/receipt", settingsCtrl.GetReceiptSettings)
	r.PUT("/settings/receipt", settingsCtrl.UpdateReceiptSettings)

	return r
}
