package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-pos/hub"
	"github.com/yeremiapane/restaurant-pos/middlewares"
)

type EventsController struct {
	Hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewEventsController accepts websocket clients from origin, or from anywhere
// when origin is empty.
func NewEventsController(h *hub.Hub, origin string) *EventsController {
	return &EventsController{
		Hub: h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return origin == "" || origin == "*" || r.Header.Get("Origin") == origin
			},
		},
	}
}

// Stream upgrades to a websocket and keeps the client registered until it
// disconnects.
func (ec *EventsController) Stream(c *gin.Context) {
	terminal := c.GetString(middlewares.TerminalKey)

	ws, err := ec.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	ec.Hub.Register(ws, terminal)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	ec.Hub.Unregister(ws)
}
