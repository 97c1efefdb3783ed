package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/apperrors"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type ShiftState interface {
	IsOpen() bool
}

// RequireOpenShift blocks sales and cash movements until a cash fund is set.
func RequireOpenShift(shift ShiftState) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !shift.IsOpen() {
			utils.RespondError(c, http.StatusConflict, apperrors.ErrShiftNotOpen)
			c.Abort()
			return
		}
		c.Next()
	}
}
