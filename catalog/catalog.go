// Package catalog keeps the terminal's read-only view of products, ingredients
// and extras as supplied by the catalog store.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/yeremiapane/restaurant-pos/models"
)

// DefaultDirectCategories are the categories whose products carry their own
// stock counter. Everything else is built from ingredients.
var DefaultDirectCategories = []string{"drinks", "sides"}

type Source interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetIngredients(ctx context.Context) ([]models.Ingredient, error)
	GetExtras(ctx context.Context) ([]models.Extra, error)
}

type Catalog struct {
	source Source
	direct map[string]bool

	mu          sync.RWMutex
	products    map[string]models.Product
	ingredients map[string]models.Ingredient
	extras      map[string]models.Extra
}

func New(source Source, directCategories []string) *Catalog {
	if len(directCategories) == 0 {
		directCategories = DefaultDirectCategories
	}
	direct := make(map[string]bool, len(directCategories))
	for _, c := range directCategories {
		direct[strings.ToLower(strings.TrimSpace(c))] = true
	}
	return &Catalog{
		source:      source,
		direct:      direct,
		products:    map[string]models.Product{},
		ingredients: map[string]models.Ingredient{},
		extras:      map[string]models.Extra{},
	}
}

// Load replaces the snapshot with fresh data from the store. The previous
// snapshot is kept if any read fails.
func (c *Catalog) Load(ctx context.Context) error {
	products, err := c.source.GetProducts(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	ingredients, err := c.source.GetIngredients(ctx)
	if err != nil {
		return fmt.Errorf("load ingredients: %w", err)
	}
	extras, err := c.source.GetExtras(ctx)
	if err != nil {
		return fmt.Errorf("load extras: %w", err)
	}

	pm := make(map[string]models.Product, len(products))
	for _, p := range products {
		p.StockingMode = c.modeFor(p.Category)
		pm[p.ID] = p
	}
	im := make(map[string]models.Ingredient, len(ingredients))
	for _, i := range ingredients {
		im[i.ID] = i
	}
	em := make(map[string]models.Extra, len(extras))
	for _, e := range extras {
		em[e.ID] = e
	}

	c.mu.Lock()
	c.products, c.ingredients, c.extras = pm, im, em
	c.mu.Unlock()
	return nil
}

func (c *Catalog) modeFor(category string) models.StockingMode {
	if c.direct[strings.ToLower(category)] {
		return models.StockingDirect
	}
	return models.StockingRecipeDerived
}

func (c *Catalog) Product(id string) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	return p, ok
}

// StockingMode reports how a product's stock is tracked. Products that are
// no longer in the catalog report false.
func (c *Catalog) StockingMode(productID string) (models.StockingMode, bool) {
	p, ok := c.Product(productID)
	if !ok {
		return "", false
	}
	return p.StockingMode, true
}

func (c *Catalog) Products() []models.Product {
	c.mu.RLock()
	out := make([]models.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *Catalog) Ingredient(id string) (models.Ingredient, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.ingredients[id]
	return i, ok
}

func (c *Catalog) Ingredients() []models.Ingredient {
	c.mu.RLock()
	out := make([]models.Ingredient, 0, len(c.ingredients))
	for _, i := range c.ingredients {
		out = append(out, i)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *Catalog) Extra(id string) (models.Extra, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.extras[id]
	return e, ok
}

func (c *Catalog) Extras() []models.Extra {
	c.mu.RLock()
	out := make([]models.Extra, 0, len(c.extras))
	for _, e := range c.extras {
		out = append(out, e)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	return out
}
