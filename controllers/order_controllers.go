package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/shift"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

var (
	errInvalidLimit = errors.New("limit must be a non-negative number")
	errInvalidSince = errors.New("since must be an RFC3339 timestamp")
)

type OrderController struct {
	Ledger store.LedgerStore
	Shift  *shift.Account
}

func NewOrderController(ledger store.LedgerStore, account *shift.Account) *OrderController {
	return &OrderController{Ledger: ledger, Shift: account}
}

// GetOrders lists tickets since a timestamp. Without one it lists the open
// shift, or the last 24 hours when no shift is open.
func (oc *OrderController) GetOrders(c *gin.Context) {
	since := time.Now().UTC().Add(-24 * time.Hour)
	if st := oc.Shift.State(); st.IsSet {
		since = st.StartedAt
	}
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, errInvalidSince)
			return
		}
		since = t.UTC()
	}

	orders, err := oc.Ledger.QueryOrdersSince(c.Request.Context(), since)
	if err != nil {
		respondErr(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}
