package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/cart"
	"github.com/yeremiapane/restaurant-pos/catalog"
	"github.com/yeremiapane/restaurant-pos/checkout"
	"github.com/yeremiapane/restaurant-pos/config"
	"github.com/yeremiapane/restaurant-pos/controllers"
	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/hub"
	"github.com/yeremiapane/restaurant-pos/inventory"
	"github.com/yeremiapane/restaurant-pos/router"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/session"
	"github.com/yeremiapane/restaurant-pos/shift"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

func main() {
	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.SetLogLevel(cfg.LogLevel)
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
	if cfg.SeedCatalog {
		if err := database.Seed(db); err != nil {
			utils.ErrorLogger.Fatal(err)
		}
	}

	ctx := context.Background()
	st := store.NewGormStore(db)
	sessions := session.NewStore(db)
	events := hub.New(utils.InfoLogger)

	cat := catalog.New(st, cfg.DirectStockCategories)
	if err := cat.Load(ctx); err != nil {
		utils.ErrorLogger.Fatalf("Failed to load catalog: %v", err)
	}

	account := shift.NewAccount(st, sessions, utils.InfoLogger, shift.Options{TopN: cfg.TopProducts})
	if err := account.Restore(ctx); err != nil {
		utils.ErrorLogger.Errorf("Failed to restore cash shift: %v", err)
	}

	terminalCart := cart.New(cat)
	if err := controllers.RestoreCart(ctx, terminalCart, sessions); err != nil {
		utils.ErrorLogger.Errorf("Failed to restore current order: %v", err)
	}

	ledger := inventory.NewLedger(cat, st, utils.InfoLogger)
	confirmer, err := checkout.NewConfirmer(terminalCart, account, st, ledger, utils.InfoLogger, checkout.Config{
		Policy: cfg.InventoryPolicy,
		Atomic: st,
		Outbox: st,
	})
	if err != nil {
		utils.ErrorLogger.Fatal(err)
	}

	monitor := services.NewStockRetryMonitor(st, ledger, utils.InfoLogger, cfg.StockRetryInterval, cfg.StockRetryMaxAttempts)
	monitor.OnRecovered = func() {
		if err := cat.Load(context.Background()); err != nil {
			utils.ErrorLogger.WithError(err).Error("Failed to reload catalog after stock retry")
			return
		}
		events.Broadcast(hub.EventLowStock, cat.StockStatus())
	}
	monitor.Start()
	defer monitor.Stop()

	r := router.SetupRouter(router.Deps{
		Catalog:            cat,
		CatalogStore:       st,
		Ledger:             st,
		Cart:               terminalCart,
		Confirmer:          confirmer,
		Shift:              account,
		Sessions:           sessions,
		Hub:                events,
		Monitor:            monitor,
		CORSOrigin:         cfg.CORSOrigin,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		utils.InfoLogger.Printf("Listening on port %s (inventory policy %s)", cfg.Port, confirmer.Policy())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Server shutdown: %v", err)
	}
	utils.InfoLogger.Info("Server stopped")
}
