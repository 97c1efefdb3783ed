package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-pos/apperrors"
	"github.com/yeremiapane/restaurant-pos/models"
)

type fakeCatalog map[string]models.Product

func (f fakeCatalog) Product(id string) (models.Product, bool) {
	p, ok := f[id]
	return p, ok
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func product(id, name, price, combo string) models.Product {
	p := models.Product{ID: id, Name: name, Price: dec(price), IsAvailable: true, CostPerUnit: dec("10")}
	if combo != "" {
		p.ComboAvailable = true
		p.ComboPrice = dec(combo)
	}
	return p
}

var (
	bigBurger = product("prod_1", "BigBurger", "150", "50")
	fries     = product("prod_9", "Papas fritas", "80", "")
	soda      = product("prod_11", "Refrescos", "30", "")
	rings     = product("prod_7", "Aros de cebolla", "75", "")
	tocino    = models.Extra{ID: "extra_2", Name: "Tocino", Price: dec("20")}
	queso     = models.Extra{ID: "extra_1", Name: "Queso extra", Price: dec("15")}
)

func newTestCart() (*Cart, fakeCatalog) {
	cat := fakeCatalog{bigBurger.ID: bigBurger, fries.ID: fries, soda.ID: soda, rings.ID: rings}
	return New(cat), cat
}

func TestAddLine_SameProductIncrementsQuantity(t *testing.T) {
	c, _ := newTestCart()

	_, err := c.AddLine(bigBurger, AddOptions{})
	require.NoError(t, err)
	line, err := c.AddLine(bigBurger, AddOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 1, c.Len())
}

func TestAddLine_ComboIdentity(t *testing.T) {
	c, _ := newTestCart()

	_, err := c.AddLine(bigBurger, AddOptions{IsCombo: true, Complements: []models.Product{soda, fries}})
	require.NoError(t, err)
	// Same complements in a different order are the same combo.
	line, err := c.AddLine(bigBurger, AddOptions{IsCombo: true, Complements: []models.Product{fries, soda}})
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)

	// A different side makes a new line, and the plain burger is separate again.
	_, err = c.AddLine(bigBurger, AddOptions{IsCombo: true, Complements: []models.Product{soda, rings}})
	require.NoError(t, err)
	_, err = c.AddLine(bigBurger, AddOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, Combo("prod_1", "prod_9", "prod_11"), line.Key)
	assert.Equal(t, "prod_1|prod_11|prod_9", line.Key.ID())
}

func TestAddLine_ComplementsAreFree(t *testing.T) {
	c, _ := newTestCart()

	line, err := c.AddLine(bigBurger, AddOptions{IsCombo: true, Complements: []models.Product{soda, fries}})
	require.NoError(t, err)

	assert.Equal(t, "BigBurger (Combo)", line.Name)
	assert.True(t, line.UnitPrice.Equal(dec("200")), "got %s", line.UnitPrice)
	require.Len(t, line.Complements, 2)
	assert.True(t, line.Complements[0].Cost.Equal(dec("10")))
}

func TestAddLine_Rejections(t *testing.T) {
	c, _ := newTestCart()

	unavailable := soda
	unavailable.IsAvailable = false
	_, err := c.AddLine(unavailable, AddOptions{})
	assert.True(t, apperrors.IsValidation(err))

	_, err = c.AddLine(fries, AddOptions{IsCombo: true})
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 0, c.Len())
}

func TestBigBurgerWithTocino(t *testing.T) {
	c, _ := newTestCart()

	_, err := c.AddLine(bigBurger, AddOptions{})
	require.NoError(t, err)
	line, ok, err := c.AddExtra("prod_1", false, tocino, 1)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "170.00", line.UnitPrice.StringFixed(2))
	assert.Equal(t, "170.00", c.Subtotal().StringFixed(2))
	assert.Equal(t, "170.00", c.Total().StringFixed(2))
}

func TestComboPriceWithExtras(t *testing.T) {
	c, _ := newTestCart()
	line, err := c.AddLine(bigBurger, AddOptions{IsCombo: true, Complements: []models.Product{soda}})
	require.NoError(t, err)
	id := line.Key.ID()

	_, _, err = c.AddExtra(id, true, tocino, 1)
	require.NoError(t, err)
	_, _, err = c.AddExtra(id, true, queso, 1)
	require.NoError(t, err)
	line, ok, err := c.AddExtra(id, true, queso, 1)
	require.NoError(t, err)
	require.True(t, ok)

	// 150 + 50 + 20 + 2*15
	assert.True(t, line.UnitPrice.Equal(dec("250")), "got %s", line.UnitPrice)
	assert.True(t, line.UnitPrice.Equal(UnitPrice(line)))
}

func TestRemovingLastExtraRestoresBasePrice(t *testing.T) {
	c, _ := newTestCart()
	cheap := models.Extra{ID: "x", Name: "Salsa", Price: dec("0.10")}
	_, err := c.AddLine(bigBurger, AddOptions{IsCombo: true})
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		_, _, err = c.AddExtra("prod_1", true, cheap, 1)
		require.NoError(t, err)
	}
	_, _, err = c.AddExtra("prod_1", true, tocino, 3)
	require.NoError(t, err)

	_, _, err = c.SetExtraQuantity("prod_1", true, "x", 0)
	require.NoError(t, err)
	line, ok, err := c.AddExtra("prod_1", true, tocino, -3)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Empty(t, line.Extras)
	assert.True(t, line.UnitPrice.Equal(dec("200")), "got %s", line.UnitPrice)
}

func TestSetQuantityClampsToOne(t *testing.T) {
	c, _ := newTestCart()
	_, err := c.AddLine(soda, AddOptions{})
	require.NoError(t, err)

	line, err := c.SetQuantity("prod_11", false, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)

	line, err = c.SetQuantity("prod_11", false, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, line.Quantity)

	_, err = c.SetQuantity("prod_11", true, 4)
	assert.ErrorIs(t, err, apperrors.ErrLineNotFound)
}

func TestExtraOnRemovedProductLeavesLineUnchanged(t *testing.T) {
	c, cat := newTestCart()
	_, err := c.AddLine(bigBurger, AddOptions{IsCombo: true})
	require.NoError(t, err)
	delete(cat, bigBurger.ID)

	line, ok, err := c.AddExtra("prod_1", true, tocino, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, line.Extras)
	assert.True(t, line.UnitPrice.Equal(dec("200")))
	// The captured price still counts toward the total.
	assert.True(t, c.Total().Equal(dec("200")))
}

func TestExtraUsesLiveComboPrice(t *testing.T) {
	c, cat := newTestCart()
	_, err := c.AddLine(bigBurger, AddOptions{IsCombo: true})
	require.NoError(t, err)

	updated := bigBurger
	updated.ComboPrice = dec("60")
	cat[bigBurger.ID] = updated

	line, ok, err := c.AddExtra("prod_1", true, tocino, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, line.UnitPrice.Equal(dec("230")), "got %s", line.UnitPrice)
}

func TestRemoveLine(t *testing.T) {
	c, _ := newTestCart()
	_, _ = c.AddLine(soda, AddOptions{})
	_, _ = c.AddLine(fries, AddOptions{})

	require.NoError(t, c.RemoveLine("prod_11", false))
	assert.Equal(t, 1, c.Len())
	assert.ErrorIs(t, c.RemoveLine("prod_11", false), apperrors.ErrLineNotFound)
}

func TestTotalIsSumOfLines(t *testing.T) {
	c, _ := newTestCart()
	_, _ = c.AddLine(bigBurger, AddOptions{IsCombo: true, Complements: []models.Product{soda}})
	_, _, _ = c.AddExtra("prod_1|prod_11", true, queso, 2)
	_, _ = c.SetQuantity("prod_1|prod_11", true, 3)
	_, _ = c.AddLine(fries, AddOptions{})
	_, _ = c.AddLine(fries, AddOptions{})
	_, _ = c.AddLine(models.Product{ID: "odd", Name: "Odd", Price: dec("0.15"), IsAvailable: true}, AddOptions{})
	_, _ = c.SetQuantity("odd", false, 7)

	want := decimal.Zero
	for _, l := range c.Lines() {
		want = want.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	// (150+50+30)*3 + 80*2 + 0.15*7
	assert.Equal(t, "851.05", c.Total().StringFixed(2))
	assert.True(t, c.Total().Equal(want))
}

func TestFreezeBlocksMutations(t *testing.T) {
	c, _ := newTestCart()
	_, _ = c.AddLine(soda, AddOptions{})

	lines, err := c.Freeze()
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	_, err = c.Freeze()
	assert.ErrorIs(t, err, apperrors.ErrCheckoutInProgress)
	_, err = c.AddLine(fries, AddOptions{})
	assert.ErrorIs(t, err, apperrors.ErrCheckoutInProgress)
	assert.ErrorIs(t, c.Clear(), apperrors.ErrCheckoutInProgress)

	c.Thaw(false)
	assert.Equal(t, 1, c.Len())

	_, err = c.Freeze()
	require.NoError(t, err)
	c.Thaw(true)
	assert.Equal(t, 0, c.Len())
}

func TestRestoreRecomputesPrices(t *testing.T) {
	c, _ := newTestCart()
	require.NoError(t, c.Restore([]Line{{
		Key:           Single("prod_1"),
		Name:          "BigBurger",
		Quantity:      0,
		OriginalPrice: dec("150"),
		Extras:        []Extra{{ID: "extra_2", Name: "Tocino", UnitPrice: dec("20"), Quantity: 1}},
		UnitPrice:     dec("999"),
	}}))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.True(t, lines[0].UnitPrice.Equal(dec("170")))
}

func TestAddLine_RejectsSeparatorInIDs(t *testing.T) {
	c, _ := newTestCart()
	piped := product("b|c", "Papas|Refresco", "50", "")

	_, err := c.AddLine(bigBurger, AddOptions{IsCombo: true, Complements: []models.Product{piped}})
	assert.True(t, apperrors.IsValidation(err))

	_, err = c.AddLine(piped, AddOptions{})
	assert.True(t, apperrors.IsValidation(err))
	assert.Zero(t, c.Len())

	_, err = c.AddLine(bigBurger, AddOptions{IsCombo: true, Complements: []models.Product{fries, soda}})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestRestoreWhileFrozen(t *testing.T) {
	c, _ := newTestCart()
	_, err := c.AddLine(bigBurger, AddOptions{})
	require.NoError(t, err)
	_, err = c.Freeze()
	require.NoError(t, err)

	err = c.Restore([]Line{{Key: Single("prod_9"), Name: "Papas fritas", Quantity: 2, OriginalPrice: dec("80")}})
	assert.ErrorIs(t, err, apperrors.ErrCheckoutInProgress)

	c.Thaw(false)
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "prod_1", lines[0].Key.ProductID)
}
