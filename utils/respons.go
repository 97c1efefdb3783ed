package utils

import (
	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Warning interface{} `json:"warning,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondWarning is a success response that carries a non-fatal problem,
// such as a sale whose stock update did not fully apply.
func RespondWarning(c *gin.Context, code int, message string, data interface{}, warning interface{}) {
	c.JSON(code, JSONResponse{
		Status:  true,
		Message: message,
		Data:    data,
		Warning: warning,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}
