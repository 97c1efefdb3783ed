package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/apperrors"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// respondErr maps engine errors onto HTTP status codes.
func respondErr(c *gin.Context, err error) {
	var (
		validation *apperrors.ValidationError
		reconcile  *apperrors.ReconciliationError
		persist    *apperrors.PersistenceError
	)
	code := http.StatusInternalServerError
	switch {
	case errors.As(err, &validation):
		code = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrLineNotFound):
		code = http.StatusNotFound
	case errors.Is(err, apperrors.ErrCheckoutInProgress),
		errors.Is(err, apperrors.ErrShiftNotOpen),
		errors.Is(err, apperrors.ErrShiftAlreadyOpen):
		code = http.StatusConflict
	case errors.As(err, &reconcile):
		code = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = http.StatusRequestTimeout
	case errors.As(err, &persist):
		code = http.StatusInternalServerError
	}
	if code >= http.StatusInternalServerError {
		utils.ErrorLogger.WithField("path", c.FullPath()).Error(err)
	}
	utils.RespondError(c, code, err)
}

func badRequest(c *gin.Context, err error) {
	utils.RespondError(c, http.StatusBadRequest, err)
}
