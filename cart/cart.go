// Package cart is the order in progress on a terminal and the pricing rules
// applied to it on every change.
package cart

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/apperrors"
	"github.com/yeremiapane/restaurant-pos/models"
)

type ProductLookup interface {
	Product(id string) (models.Product, bool)
}

// Complement is an item bundled into a combo. It is free on the ticket but
// still leaves stock.
type Complement struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Cost      decimal.Decimal `json:"cost"`
}

type Extra struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

type Line struct {
	Key           LineKey         `json:"key"`
	Name          string          `json:"name"`
	Cost          decimal.Decimal `json:"cost"`
	Quantity      int             `json:"quantity"`
	Complements   []Complement    `json:"complements"`
	Extras        []Extra         `json:"extras"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	ComboPrice    decimal.Decimal `json:"combo_price"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

func (l Line) clone() Line {
	l.Complements = append(make([]Complement, 0, len(l.Complements)), l.Complements...)
	l.Extras = append(make([]Extra, 0, len(l.Extras)), l.Extras...)
	return l
}

type AddOptions struct {
	IsCombo     bool
	Complements []models.Product
}

// Cart is owned by one terminal. Its methods are safe to call from several
// goroutines, but callers should treat it as a single actor.
type Cart struct {
	lookup ProductLookup

	mu     sync.Mutex
	lines  []*Line
	frozen bool
}

func New(lookup ProductLookup) *Cart {
	return &Cart{lookup: lookup}
}

// AddLine adds one unit of product, merging into an equivalent line if there is one.
func (c *Cart) AddLine(product models.Product, opts AddOptions) (Line, error) {
	if product.ID == "" {
		return Line{}, apperrors.Invalid("product_id", "product is required")
	}
	if !product.IsAvailable {
		return Line{}, apperrors.Invalid("product_id", product.Name+" is not available")
	}
	if opts.IsCombo && !product.ComboAvailable {
		return Line{}, apperrors.Invalid("is_combo", product.Name+" is not sold as a combo")
	}

	if strings.Contains(product.ID, complementSep) {
		return Line{}, apperrors.Invalid("product_id", "product id cannot contain "+complementSep)
	}
	for _, comp := range opts.Complements {
		if strings.Contains(comp.ID, complementSep) {
			return Line{}, apperrors.Invalid("complement_ids", "complement id cannot contain "+complementSep)
		}
	}

	key := Single(product.ID)
	if opts.IsCombo {
		ids := make([]string, 0, len(opts.Complements))
		for _, comp := range opts.Complements {
			ids = append(ids, comp.ID)
		}
		key = Combo(product.ID, ids...)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return Line{}, apperrors.ErrCheckoutInProgress
	}

	for _, l := range c.lines {
		if l.Key == key {
			l.Quantity++
			return l.clone(), nil
		}
	}

	name := product.Name
	comboPrice := decimal.Zero
	if opts.IsCombo {
		name = product.Name + " (Combo)"
		comboPrice = product.ComboPrice
	}
	line := &Line{
		Key:           key,
		Name:          name,
		Cost:          product.CostPerUnit,
		Quantity:      1,
		Extras:        []Extra{},
		Complements:   []Complement{},
		OriginalPrice: product.Price,
		ComboPrice:    comboPrice,
	}
	if opts.IsCombo {
		for _, comp := range opts.Complements {
			line.Complements = append(line.Complements, Complement{
				ProductID: comp.ID,
				Name:      comp.Name,
				Cost:      comp.CostPerUnit,
			})
		}
	}
	line.UnitPrice = UnitPrice(*line)
	c.lines = append(c.lines, line)
	return line.clone(), nil
}

// SetQuantity sets a line's quantity, never below 1. Use RemoveLine to drop it.
func (c *Cart) SetQuantity(lineID string, isCombo bool, n int) (Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return Line{}, apperrors.ErrCheckoutInProgress
	}
	l := c.find(lineID, isCombo)
	if l == nil {
		return Line{}, apperrors.ErrLineNotFound
	}
	if n < 1 {
		n = 1
	}
	l.Quantity = n
	return l.clone(), nil
}

// AddExtra changes the quantity of an extra on a line by delta, adding the
// extra when it is new. ok is false when the line's product has left the
// catalog; the line is then left untouched.
func (c *Cart) AddExtra(lineID string, isCombo bool, extra models.Extra, delta int) (line Line, ok bool, err error) {
	return c.updateExtra(lineID, isCombo, extra.ID, func(extras []Extra) []Extra {
		for i := range extras {
			if extras[i].ID == extra.ID {
				extras[i].Quantity += delta
				return extras
			}
		}
		return append(extras, Extra{ID: extra.ID, Name: extra.Name, UnitPrice: extra.Price, Quantity: delta})
	})
}

// SetExtraQuantity sets an existing extra's quantity. Zero or less removes it.
func (c *Cart) SetExtraQuantity(lineID string, isCombo bool, extraID string, n int) (line Line, ok bool, err error) {
	return c.updateExtra(lineID, isCombo, extraID, func(extras []Extra) []Extra {
		for i := range extras {
			if extras[i].ID == extraID {
				extras[i].Quantity = n
			}
		}
		return extras
	})
}

func (c *Cart) updateExtra(lineID string, isCombo bool, extraID string, change func([]Extra) []Extra) (Line, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return Line{}, false, apperrors.ErrCheckoutInProgress
	}
	l := c.find(lineID, isCombo)
	if l == nil {
		return Line{}, false, apperrors.ErrLineNotFound
	}

	current, found := c.lookup.Product(l.Key.ProductID)
	if !found {
		return l.clone(), false, nil
	}

	extras := change(append([]Extra(nil), l.Extras...))
	kept := extras[:0]
	for _, e := range extras {
		if e.Quantity > 0 {
			kept = append(kept, e)
		}
	}

	if l.Key.Combo {
		l.ComboPrice = current.ComboPrice
	}
	l.Extras = kept
	l.UnitPrice = UnitPrice(*l)
	return l.clone(), true, nil
}

func (c *Cart) RemoveLine(lineID string, isCombo bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return apperrors.ErrCheckoutInProgress
	}
	for i, l := range c.lines {
		if l.Key.matches(lineID, isCombo) {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrLineNotFound
}

func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return apperrors.ErrCheckoutInProgress
	}
	c.lines = nil
	return nil
}

func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

func (c *Cart) Subtotal() decimal.Decimal {
	return Subtotal(c.Lines())
}

func (c *Cart) Total() decimal.Decimal {
	return Total(c.Lines())
}

// Freeze hands the current lines to a confirmation and blocks every change,
// including a second Freeze, until Thaw is called.
func (c *Cart) Freeze() ([]Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return nil, apperrors.ErrCheckoutInProgress
	}
	c.frozen = true
	return c.snapshot(), nil
}

// Thaw ends a confirmation. The lines are dropped only when the sale was saved.
func (c *Cart) Thaw(clear bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = false
	if clear {
		c.lines = nil
	}
}

func (c *Cart) Frozen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frozen
}

// Restore replaces the cart with a saved snapshot, recomputing each unit price
// from the captured prices.
func (c *Cart) Restore(lines []Line) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return apperrors.ErrCheckoutInProgress
	}
	c.lines = c.lines[:0]
	for _, l := range lines {
		l = l.clone()
		if l.Quantity < 1 {
			l.Quantity = 1
		}
		l.UnitPrice = UnitPrice(l)
		c.lines = append(c.lines, &l)
	}
	return nil
}

func (c *Cart) find(lineID string, isCombo bool) *Line {
	for _, l := range c.lines {
		if l.Key.matches(lineID, isCombo) {
			return l
		}
	}
	return nil
}

func (c *Cart) snapshot() []Line {
	out := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, l.clone())
	}
	return out
}
