package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const (
	TerminalHeader = "X-Terminal-ID"
	TerminalKey    = "terminal"
)

// TerminalID resolves which register is calling: the terminal query param
// (websocket clients), then the X-Terminal-ID header, then the client IP.
func TerminalID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Query("terminal")
		if id == "" {
			id = c.GetHeader(TerminalHeader)
		}
		if id == "" {
			id = c.ClientIP()
		}
		c.Set(TerminalKey, id)
		c.Next()
	}
}

// OrderLoggerMiddleware records every checkout attempt and its outcome.
func OrderLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		entry := utils.InfoLogger.WithFields(logrus.Fields{
			"terminal": c.GetString(TerminalKey),
			"client":   c.ClientIP(),
		})
		entry.Info("Confirming order")

		c.Next()

		status := c.Writer.Status()
		if status < 300 {
			entry.WithField("status", status).Info("Order confirmed")
			return
		}
		utils.ErrorLogger.WithFields(logrus.Fields{
			"terminal": c.GetString(TerminalKey),
			"status":   status,
		}).Error("Order confirmation failed")
	}
}
