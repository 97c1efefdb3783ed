package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/apperrors"
	"github.com/yeremiapane/restaurant-pos/cart"
	"github.com/yeremiapane/restaurant-pos/catalog"
	"github.com/yeremiapane/restaurant-pos/checkout"
	"github.com/yeremiapane/restaurant-pos/hub"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/session"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// POSController drives the cart of the terminal and confirms sales.
type POSController struct {
	Cart      *cart.Cart
	Catalog   *catalog.Catalog
	Sessions  *session.Store
	Confirmer *checkout.Confirmer
	Hub       *hub.Hub
}

func NewPOSController(c *cart.Cart, cat *catalog.Catalog, sessions *session.Store, confirmer *checkout.Confirmer, h *hub.Hub) *POSController {
	return &POSController{Cart: c, Catalog: cat, Sessions: sessions, Confirmer: confirmer, Hub: h}
}

type cartView struct {
	Lines    []cart.Line     `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Total    decimal.Decimal `json:"total"`
}

func viewOf(lines []cart.Line) cartView {
	return cartView{Lines: lines, Subtotal: cart.Subtotal(lines), Total: cart.Total(lines)}
}

func (pc *POSController) GetCart(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Current order", viewOf(pc.Cart.Lines()))
}

type addLineRequest struct {
	ProductID     string   `json:"product_id" binding:"required"`
	IsCombo       bool     `json:"is_combo"`
	ComplementIDs []string `json:"complement_ids"`
}

func (pc *POSController) AddLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	product, ok := pc.Catalog.Product(req.ProductID)
	if !ok {
		respondErr(c, apperrors.ErrNotFound)
		return
	}
	opts := cart.AddOptions{IsCombo: req.IsCombo}
	for _, id := range req.ComplementIDs {
		comp, ok := pc.Catalog.Product(id)
		if !ok {
			respondErr(c, apperrors.Invalid("complement_ids", "unknown complement "+id))
			return
		}
		opts.Complements = append(opts.Complements, comp)
	}

	line, err := pc.Cart.AddLine(product, opts)
	if err != nil {
		respondErr(c, err)
		return
	}
	pc.persist(c.Request.Context())
	utils.RespondJSON(c, http.StatusCreated, "Item added", line)
}

type lineRef struct {
	LineID  string `json:"line_id" form:"line_id" binding:"required"`
	IsCombo bool   `json:"is_combo" form:"is_combo"`
}

type quantityRequest struct {
	lineRef
	Quantity int `json:"quantity"`
}

func (pc *POSController) SetQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	line, err := pc.Cart.SetQuantity(req.LineID, req.IsCombo, req.Quantity)
	if err != nil {
		respondErr(c, err)
		return
	}
	pc.persist(c.Request.Context())
	utils.RespondJSON(c, http.StatusOK, "Quantity updated", line)
}

func (pc *POSController) RemoveLine(c *gin.Context) {
	var ref lineRef
	if err := c.ShouldBindQuery(&ref); err != nil {
		badRequest(c, err)
		return
	}
	if err := pc.Cart.RemoveLine(ref.LineID, ref.IsCombo); err != nil {
		respondErr(c, err)
		return
	}
	pc.persist(c.Request.Context())
	utils.RespondJSON(c, http.StatusOK, "Item removed", viewOf(pc.Cart.Lines()))
}

type extraRequest struct {
	lineRef
	ExtraID  string `json:"extra_id" binding:"required"`
	Delta    int    `json:"delta"`
	Quantity int    `json:"quantity"`
}

// AddExtra changes an extra's quantity on a line by delta.
func (pc *POSController) AddExtra(c *gin.Context) {
	pc.changeExtra(c, func(req extraRequest, extra models.Extra) (cart.Line, bool, error) {
		if req.Delta == 0 {
			req.Delta = 1
		}
		return pc.Cart.AddExtra(req.LineID, req.IsCombo, extra, req.Delta)
	})
}

// SetExtraQuantity sets an extra's quantity on a line. Zero removes it.
func (pc *POSController) SetExtraQuantity(c *gin.Context) {
	pc.changeExtra(c, func(req extraRequest, extra models.Extra) (cart.Line, bool, error) {
		return pc.Cart.SetExtraQuantity(req.LineID, req.IsCombo, extra.ID, req.Quantity)
	})
}

func (pc *POSController) changeExtra(c *gin.Context, apply func(extraRequest, models.Extra) (cart.Line, bool, error)) {
	var req extraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	extra, ok := pc.Catalog.Extra(req.ExtraID)
	if !ok {
		respondErr(c, apperrors.ErrNotFound)
		return
	}
	line, changed, err := apply(req, extra)
	if err != nil {
		respondErr(c, err)
		return
	}
	if !changed {
		utils.RespondJSON(c, http.StatusOK, "Product no longer in catalog, line unchanged", line)
		return
	}
	pc.persist(c.Request.Context())
	utils.RespondJSON(c, http.StatusOK, "Extras updated", line)
}

func (pc *POSController) ClearCart(c *gin.Context) {
	if err := pc.Cart.Clear(); err != nil {
		respondErr(c, err)
		return
	}
	pc.persist(c.Request.Context())
	utils.RespondJSON(c, http.StatusOK, "Order cleared", viewOf(nil))
}

type confirmRequest struct {
	PaymentMethod string          `json:"payment_method" binding:"required"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`
}

// ConfirmOrder turns the current cart into a sale.
func (pc *POSController) ConfirmOrder(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := pc.Confirmer.Confirm(c.Request.Context(), checkout.Payment{
		Method:         req.PaymentMethod,
		AmountTendered: req.AmountPaid,
		ExchangeRate:   req.ExchangeRate,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	pc.persist(ctx)
	pc.Hub.Broadcast(hub.EventOrderConfirmed, res.Order)
	refreshCatalog(ctx, pc.Catalog, pc.Hub)

	if res.Warning != nil {
		pc.Hub.Broadcast(hub.EventInventoryWarning, gin.H{"order_id": res.Order.ID, "failures": res.Warning.Failures})
		utils.RespondWarning(c, http.StatusCreated, "Order confirmed", res, res.Warning.Error())
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order confirmed", res)
}

// persist saves the cart so a restart does not lose the order in progress.
func (pc *POSController) persist(ctx context.Context) {
	if pc.Sessions == nil {
		return
	}
	if err := pc.Sessions.Set(ctx, session.KeyCurrentOrder, pc.Cart.Lines()); err != nil {
		utils.ErrorLogger.WithError(err).Error("Failed to save current order")
	}
}

// RestoreCart loads the cart saved before the last shutdown.
func RestoreCart(ctx context.Context, c *cart.Cart, sessions *session.Store) error {
	var lines []cart.Line
	ok, err := sessions.Get(ctx, session.KeyCurrentOrder, &lines)
	if err != nil || !ok {
		return err
	}
	if err := c.Restore(lines); err != nil {
		return err
	}
	utils.InfoLogger.WithField("lines", strconv.Itoa(len(lines))).Info("Restored current order")
	return nil
}
