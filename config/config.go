// Package config reads terminal settings from the environment and opens the database.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/restaurant-pos/checkout"
	"github.com/yeremiapane/restaurant-pos/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Config struct {
	Port                  string
	GinMode               string
	LogLevel              string
	DBDriver              string
	DBDSN                 string
	DirectStockCategories []string
	InventoryPolicy       checkout.Policy
	StockRetryInterval    time.Duration
	StockRetryMaxAttempts int
	TopProducts           int
	RateLimitPerSecond    int
	CORSOrigin            string
	SeedCatalog           bool
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && utils.InfoLogger != nil {
		utils.InfoLogger.Debug("No .env file found, using environment only")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, falling back to defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:       get("PORT", "8080"),
		GinMode:    get("GIN_MODE", "debug"),
		LogLevel:   get("LOG_LEVEL", "info"),
		DBDriver:   strings.ToLower(get("DB_DRIVER", DriverSQLite)),
		DBDSN:      get("DB_DSN", "restaurant_pos.db"),
		CORSOrigin: get("CORS_ORIGIN", ""),
	}
	if cfg.DBDriver != DriverSQLite && cfg.DBDriver != DriverMySQL {
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	for _, c := range strings.Split(get("DIRECT_STOCK_CATEGORIES", "drinks,sides"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			cfg.DirectStockCategories = append(cfg.DirectStockCategories, c)
		}
	}

	policy, err := checkout.ParsePolicy(get("INVENTORY_POLICY", string(checkout.PolicySaleFirst)))
	if err != nil {
		return Config{}, err
	}
	cfg.InventoryPolicy = policy

	if cfg.StockRetryInterval, err = time.ParseDuration(get("STOCK_RETRY_INTERVAL", "1m")); err != nil {
		return Config{}, fmt.Errorf("invalid STOCK_RETRY_INTERVAL: %w", err)
	}

	ints := []struct {
		key string
		def string
		dst *int
	}{
		{"STOCK_RETRY_MAX_ATTEMPTS", "5", &cfg.StockRetryMaxAttempts},
		{"TOP_PRODUCTS", "5", &cfg.TopProducts},
		{"RATE_LIMIT_PER_SECOND", "50", &cfg.RateLimitPerSecond},
	}
	for _, it := range ints {
		n, err := strconv.Atoi(get(it.key, it.def))
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid %s: %q", it.key, getenv(it.key))
		}
		*it.dst = n
	}

	if cfg.SeedCatalog, err = strconv.ParseBool(get("SEED_CATALOG", "true")); err != nil {
		return Config{}, fmt.Errorf("invalid SEED_CATALOG: %w", err)
	}
	return cfg, nil
}

// InitDB opens the configured database.
func InitDB(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverMySQL:
		dialector = mysql.Open(cfg.DBDSN)
	default:
		dialector = sqlite.Open(cfg.DBDSN)
	}

	level := logger.Warn
	if cfg.GinMode == "release" {
		level = logger.Error
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.DBDriver, err)
	}
	return db, nil
}
