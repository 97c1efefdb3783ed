package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-pos/hub"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/shift"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type ShiftController struct {
	Account *shift.Account
	Ledger  store.LedgerStore
	Hub     *hub.Hub
}

func NewShiftController(account *shift.Account, ledger store.LedgerStore, h *hub.Hub) *ShiftController {
	return &ShiftController{Account: account, Ledger: ledger, Hub: h}
}

func (sc *ShiftController) GetShift(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Cash shift", sc.Account.State())
}

type openShiftRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (sc *ShiftController) OpenShift(c *gin.Context) {
	var req openShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	state, err := sc.Account.Open(c.Request.Context(), req.Amount)
	if err != nil {
		respondErr(c, err)
		return
	}
	sc.Hub.Broadcast(hub.EventShiftOpened, state)
	utils.RespondJSON(c, http.StatusCreated, "Shift opened", state)
}

type movementRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Notes    string          `json:"notes"`
}

func (sc *ShiftController) AddFund(c *gin.Context) {
	sc.movement(c, "Funds added", func(req movementRequest) (models.CashTransaction, error) {
		return sc.Account.AddFund(c.Request.Context(), req.Amount, req.Notes)
	})
}

func (sc *ShiftController) RecordExpense(c *gin.Context) {
	sc.movement(c, "Expense recorded", func(req movementRequest) (models.CashTransaction, error) {
		return sc.Account.RecordExpense(c.Request.Context(), req.Amount, req.Category, req.Notes)
	})
}

func (sc *ShiftController) RecordWithdrawal(c *gin.Context) {
	sc.movement(c, "Withdrawal recorded", func(req movementRequest) (models.CashTransaction, error) {
		return sc.Account.RecordWithdrawal(c.Request.Context(), req.Amount, req.Notes)
	})
}

func (sc *ShiftController) movement(c *gin.Context, message string, record func(movementRequest) (models.CashTransaction, error)) {
	var req movementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tx, err := record(req)
	if err != nil {
		respondErr(c, err)
		return
	}
	sc.Hub.Broadcast(hub.EventCashMovement, tx)
	utils.RespondJSON(c, http.StatusCreated, message, tx)
}

func (sc *ShiftController) GetSummary(c *gin.Context) {
	sum, err := sc.Account.Summarize(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shift summary", sum)
}

type cutRequest struct {
	CountedCash decimal.Decimal `json:"final_cash_in_box"`
	Notes       string          `json:"notes"`
}

func (sc *ShiftController) CashCut(c *gin.Context) {
	var req cutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cut, err := sc.Account.Cut(c.Request.Context(), req.CountedCash, req.Notes)
	if err != nil {
		respondErr(c, err)
		return
	}
	sc.Hub.Broadcast(hub.EventCashCut, cut)
	utils.RespondJSON(c, http.StatusCreated, "Cash cut completed, difference "+utils.FormatCurrency(cut.Difference), cut)
}

func (sc *ShiftController) ListCashCuts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		badRequest(c, errInvalidLimit)
		return
	}
	cuts, err := sc.Ledger.ListCashCuts(c.Request.Context(), limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of cash cuts", cuts)
}
