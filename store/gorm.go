package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/apperrors"
	"github.com/yeremiapane/restaurant-pos/models"
	"gorm.io/gorm"
)

// clampedSub keeps stock at zero or above inside a single UPDATE.
const clampedSub = "CASE WHEN stock_quantity - ? < 0 THEN 0 ELSE stock_quantity - ? END"

type GormStore struct {
	DB *gorm.DB
}

var (
	_ CatalogStore = (*GormStore)(nil)
	_ LedgerStore  = (*GormStore)(nil)
	_ AtomicLedger = (*GormStore)(nil)
	_ RetryOutbox  = (*GormStore)(nil)
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.DB.WithContext(ctx).Order("name asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

func (s *GormStore) GetIngredients(ctx context.Context) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if err := s.DB.WithContext(ctx).Order("name asc").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *GormStore) GetExtras(ctx context.Context) ([]models.Extra, error) {
	var extras []models.Extra
	if err := s.DB.WithContext(ctx).Order("price asc").Find(&extras).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch extras: %w", err)
	}
	return extras, nil
}

func (s *GormStore) GetRecipeLinks(ctx context.Context, productID string) ([]models.RecipeLink, error) {
	var links []models.RecipeLink
	if err := s.DB.WithContext(ctx).Where("product_id = ?", productID).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recipe for product %s: %w", productID, err)
	}
	return links, nil
}

func (s *GormStore) DecrementProductStock(ctx context.Context, productID string, qty decimal.Decimal) error {
	return decrement(s.DB.WithContext(ctx), &models.Product{}, productID, qty)
}

func (s *GormStore) DecrementIngredientStock(ctx context.Context, ingredientID string, qty decimal.Decimal) error {
	return decrement(s.DB.WithContext(ctx), &models.Ingredient{}, ingredientID, qty)
}

func decrement(db *gorm.DB, model interface{}, id string, qty decimal.Decimal) error {
	res := db.Model(model).Where("id = ?", id).
		Update("stock_quantity", gorm.Expr(clampedSub, qty, qty))
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock of %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("decrement stock of %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func applyDecrement(db *gorm.DB, d models.StockDecrement) error {
	switch d.Kind {
	case models.StockKindProduct:
		return decrement(db, &models.Product{}, d.TargetID, d.Quantity)
	case models.StockKindIngredient:
		return decrement(db, &models.Ingredient{}, d.TargetID, d.Quantity)
	default:
		return fmt.Errorf("unknown stock kind %q", d.Kind)
	}
}

func (s *GormStore) AddProductPurchase(ctx context.Context, p Purchase) (models.Product, error) {
	var product models.Product
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, "id = ?", p.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}
		updates := map[string]interface{}{
			"stock_quantity": gorm.Expr("stock_quantity + ?", p.Quantity),
		}
		if p.CostPerUnit.IsPositive() {
			updates["cost_per_unit"] = p.CostPerUnit
		}
		if p.SalePrice.IsPositive() {
			updates["price"] = p.SalePrice
		}
		if err := tx.Model(&product).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&product, "id = ?", p.ProductID).Error
	})
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to register purchase for %s: %w", p.ProductID, err)
	}
	return product, nil
}

func (s *GormStore) AdjustIngredientStock(ctx context.Context, ingredientID string, delta decimal.Decimal) (models.Ingredient, error) {
	var ingredient models.Ingredient
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Ingredient{}).Where("id = ?", ingredientID).
			Update("stock_quantity", gorm.Expr("CASE WHEN stock_quantity + ? < 0 THEN 0 ELSE stock_quantity + ? END", delta, delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return tx.First(&ingredient, "id = ?", ingredientID).Error
	})
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("failed to adjust stock of %s: %w", ingredientID, err)
	}
	return ingredient, nil
}

func (s *GormStore) RecordOrder(ctx context.Context, order *models.Order) error {
	if err := s.DB.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

func (s *GormStore) RecordOrderAndConsume(ctx context.Context, order *models.Order, decrements []models.StockDecrement) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
		for _, d := range decrements {
			if err := applyDecrement(tx, d); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) RecordCashTransaction(ctx context.Context, t *models.CashTransaction) error {
	if err := s.DB.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to save %s transaction: %w", t.Type, err)
	}
	return nil
}

func (s *GormStore) RecordCashCut(ctx context.Context, cut *models.CashCut) error {
	if err := s.DB.WithContext(ctx).Create(cut).Error; err != nil {
		return fmt.Errorf("failed to save cash cut: %w", err)
	}
	return nil
}

func (s *GormStore) QueryOrdersSince(ctx context.Context, since time.Time) ([]models.Order, error) {
	var orders []models.Order
	if err := s.DB.WithContext(ctx).Preload("Items").
		Where("created_at >= ?", since).
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}

func (s *GormStore) QueryTransactionsSince(ctx context.Context, since time.Time, types ...models.TransactionType) ([]models.CashTransaction, error) {
	q := s.DB.WithContext(ctx).Where("created_at >= ?", since)
	if len(types) > 0 {
		q = q.Where("type IN ?", types)
	}
	var txs []models.CashTransaction
	if err := q.Order("created_at asc").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch cash transactions: %w", err)
	}
	return txs, nil
}

func (s *GormStore) ListCashCuts(ctx context.Context, limit int) ([]models.CashCut, error) {
	var cuts []models.CashCut
	q := s.DB.WithContext(ctx).Order("end_time desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&cuts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch cash cuts: %w", err)
	}
	return cuts, nil
}

// MarkInventoryStatus is the only change an order accepts after insert.
func (s *GormStore) MarkInventoryStatus(ctx context.Context, orderID, status string) error {
	res := s.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).
		Update("inventory_status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update inventory status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *GormStore) EnqueueStockRetries(ctx context.Context, retries []models.StockRetry) error {
	if len(retries) == 0 {
		return nil
	}
	orderIDs := make([]string, 0, 1)
	seen := map[string]bool{}
	for _, r := range retries {
		if !seen[r.OrderID] {
			seen[r.OrderID] = true
			orderIDs = append(orderIDs, r.OrderID)
		}
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&retries).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).Where("id IN ?", orderIDs).
			Update("inventory_status", models.InventoryPartial).Error
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue stock retries: %w", err)
	}
	return nil
}

func (s *GormStore) PendingStockRetries(ctx context.Context, maxAttempts, limit int) ([]models.StockRetry, error) {
	var retries []models.StockRetry
	q := s.DB.WithContext(ctx).Where("processed = ?", false)
	if maxAttempts > 0 {
		q = q.Where("attempts < ?", maxAttempts)
	}
	if err := q.Order("created_at asc").Limit(limit).Find(&retries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch stock retries: %w", err)
	}
	return retries, nil
}

func (s *GormStore) SaveStockRetry(ctx context.Context, retry *models.StockRetry) error {
	if err := s.DB.WithContext(ctx).Save(retry).Error; err != nil {
		return fmt.Errorf("failed to update stock retry %d: %w", retry.ID, err)
	}
	return nil
}
