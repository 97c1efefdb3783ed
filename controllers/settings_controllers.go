package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/apperrors"
	"github.com/yeremiapane/restaurant-pos/session"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type SettingsController struct {
	Sessions *session.Store
}

func NewSettingsController(sessions *session.Store) *SettingsController {
	return &SettingsController{Sessions: sessions}
}

type receiptSettings struct {
	PaperWidth string `json:"paper_width" binding:"required"`
}

func (sc *SettingsController) GetReceiptSettings(c *gin.Context) {
	width, err := sc.Sessions.PaperWidth(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Receipt settings", receiptSettings{PaperWidth: width})
}

func (sc *SettingsController) UpdateReceiptSettings(c *gin.Context) {
	var req receiptSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !session.ValidPaperWidth(req.PaperWidth) {
		respondErr(c, apperrors.Invalid("paper_width", "paper width must be 58mm or 80mm"))
		return
	}
	if err := sc.Sessions.SetPaperWidth(c.Request.Context(), req.PaperWidth); err != nil {
		respondErr(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Receipt settings updated", req)
}
