package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/apperrors"
	"github.com/yeremiapane/restaurant-pos/models"
)

// MemoryStore is an in-process CatalogStore and LedgerStore. Tests set the
// Fail* fields to make a given call return an error.
type MemoryStore struct {
	mu sync.Mutex

	products    map[string]models.Product
	ingredients map[string]models.Ingredient
	extras      map[string]models.Extra
	recipes     map[string][]models.RecipeLink

	orders  []models.Order
	cashTxs []models.CashTransaction
	cuts    []models.CashCut
	retries []models.StockRetry

	FailCatalogReads  error
	FailRecordOrder   error
	FailCashWrites    error
	FailQueries       error
	FailEnqueue       error
	FailOrderUpdates  error
	FailRecipe        map[string]error
	FailProductDec    map[string]error
	FailIngredientDec map[string]error

	// Writes counts every successful ledger or stock write.
	Writes int
}

var (
	_ CatalogStore = (*MemoryStore)(nil)
	_ LedgerStore  = (*MemoryStore)(nil)
	_ RetryOutbox  = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:          map[string]models.Product{},
		ingredients:       map[string]models.Ingredient{},
		extras:            map[string]models.Extra{},
		recipes:           map[string][]models.RecipeLink{},
		FailRecipe:        map[string]error{},
		FailProductDec:    map[string]error{},
		FailIngredientDec: map[string]error{},
	}
}

func (m *MemoryStore) PutProduct(p models.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *MemoryStore) PutIngredient(i models.Ingredient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingredients[i.ID] = i
}

func (m *MemoryStore) PutExtra(e models.Extra) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extras[e.ID] = e
}

func (m *MemoryStore) PutRecipe(productID string, links ...models.RecipeLink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range links {
		links[i].ProductID = productID
	}
	m.recipes[productID] = links
}

func (m *MemoryStore) GetProducts(ctx context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCatalogReads != nil {
		return nil, m.FailCatalogReads
	}
	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) GetIngredients(ctx context.Context) ([]models.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCatalogReads != nil {
		return nil, m.FailCatalogReads
	}
	out := make([]models.Ingredient, 0, len(m.ingredients))
	for _, i := range m.ingredients {
		out = append(out, i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) GetExtras(ctx context.Context) ([]models.Extra, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCatalogReads != nil {
		return nil, m.FailCatalogReads
	}
	out := make([]models.Extra, 0, len(m.extras))
	for _, e := range m.extras {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	return out, nil
}

func (m *MemoryStore) GetRecipeLinks(ctx context.Context, productID string) ([]models.RecipeLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailRecipe[productID]; err != nil {
		return nil, err
	}
	return append([]models.RecipeLink(nil), m.recipes[productID]...), nil
}

func clampSub(stock, qty decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, stock.Sub(qty))
}

func (m *MemoryStore) DecrementProductStock(ctx context.Context, productID string, qty decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailProductDec[productID]; err != nil {
		return err
	}
	p, ok := m.products[productID]
	if !ok {
		return fmt.Errorf("decrement stock of %s: %w", productID, apperrors.ErrNotFound)
	}
	p.StockQuantity = clampSub(p.StockQuantity, qty)
	m.products[productID] = p
	m.Writes++
	return nil
}

func (m *MemoryStore) DecrementIngredientStock(ctx context.Context, ingredientID string, qty decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailIngredientDec[ingredientID]; err != nil {
		return err
	}
	i, ok := m.ingredients[ingredientID]
	if !ok {
		return fmt.Errorf("decrement stock of %s: %w", ingredientID, apperrors.ErrNotFound)
	}
	i.StockQuantity = clampSub(i.StockQuantity, qty)
	m.ingredients[ingredientID] = i
	m.Writes++
	return nil
}

func (m *MemoryStore) AddProductPurchase(ctx context.Context, p Purchase) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[p.ProductID]
	if !ok {
		return models.Product{}, apperrors.ErrNotFound
	}
	product.StockQuantity = product.StockQuantity.Add(p.Quantity)
	if p.CostPerUnit.IsPositive() {
		product.CostPerUnit = p.CostPerUnit
	}
	if p.SalePrice.IsPositive() {
		product.Price = p.SalePrice
	}
	m.products[p.ProductID] = product
	m.Writes++
	return product, nil
}

func (m *MemoryStore) AdjustIngredientStock(ctx context.Context, ingredientID string, delta decimal.Decimal) (models.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.ingredients[ingredientID]
	if !ok {
		return models.Ingredient{}, apperrors.ErrNotFound
	}
	i.StockQuantity = decimal.Max(decimal.Zero, i.StockQuantity.Add(delta))
	m.ingredients[ingredientID] = i
	m.Writes++
	return i, nil
}

func (m *MemoryStore) RecordOrder(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRecordOrder != nil {
		return m.FailRecordOrder
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	m.orders = append(m.orders, *order)
	m.Writes++
	return nil
}

func (m *MemoryStore) MarkInventoryStatus(ctx context.Context, orderID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailOrderUpdates != nil {
		return m.FailOrderUpdates
	}
	for i := range m.orders {
		if m.orders[i].ID == orderID {
			m.orders[i].InventoryStatus = status
			m.Writes++
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *MemoryStore) RecordCashTransaction(ctx context.Context, t *models.CashTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCashWrites != nil {
		return m.FailCashWrites
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	m.cashTxs = append(m.cashTxs, *t)
	m.Writes++
	return nil
}

func (m *MemoryStore) RecordCashCut(ctx context.Context, cut *models.CashCut) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCashWrites != nil {
		return m.FailCashWrites
	}
	if cut.ID == "" {
		cut.ID = uuid.NewString()
	}
	m.cuts = append(m.cuts, *cut)
	m.Writes++
	return nil
}

func (m *MemoryStore) QueryOrdersSince(ctx context.Context, since time.Time) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailQueries != nil {
		return nil, m.FailQueries
	}
	var out []models.Order
	for _, o := range m.orders {
		if !o.CreatedAt.Before(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MemoryStore) QueryTransactionsSince(ctx context.Context, since time.Time, types ...models.TransactionType) ([]models.CashTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailQueries != nil {
		return nil, m.FailQueries
	}
	want := map[models.TransactionType]bool{}
	for _, t := range types {
		want[t] = true
	}
	var out []models.CashTransaction
	for _, t := range m.cashTxs {
		if t.CreatedAt.Before(since) {
			continue
		}
		if len(want) > 0 && !want[t.Type] {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *MemoryStore) ListCashCuts(ctx context.Context, limit int) ([]models.CashCut, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.CashCut, 0, len(m.cuts))
	for i := len(m.cuts) - 1; i >= 0; i-- {
		out = append(out, m.cuts[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) EnqueueStockRetries(ctx context.Context, retries []models.StockRetry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailEnqueue != nil {
		return m.FailEnqueue
	}
	for _, r := range retries {
		r.ID = uint(len(m.retries) + 1)
		m.retries = append(m.retries, r)
		for i := range m.orders {
			if m.orders[i].ID == r.OrderID {
				m.orders[i].InventoryStatus = models.InventoryPartial
			}
		}
	}
	return nil
}

func (m *MemoryStore) PendingStockRetries(ctx context.Context, maxAttempts, limit int) ([]models.StockRetry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StockRetry
	for _, r := range m.retries {
		if r.Processed || (maxAttempts > 0 && r.Attempts >= maxAttempts) {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) SaveStockRetry(ctx context.Context, retry *models.StockRetry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.retries {
		if m.retries[i].ID == retry.ID {
			m.retries[i] = *retry
			return nil
		}
	}
	return apperrors.ErrNotFound
}

// Snapshot accessors for assertions.

func (m *MemoryStore) Orders() []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Order(nil), m.orders...)
}

func (m *MemoryStore) CashTransactions() []models.CashTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.CashTransaction(nil), m.cashTxs...)
}

func (m *MemoryStore) CashCuts() []models.CashCut {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.CashCut(nil), m.cuts...)
}

func (m *MemoryStore) StockRetries() []models.StockRetry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.StockRetry(nil), m.retries...)
}

func (m *MemoryStore) ProductStock(id string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].StockQuantity
}

func (m *MemoryStore) IngredientStock(id string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ingredients[id].StockQuantity
}
