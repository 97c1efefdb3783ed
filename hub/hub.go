// Package hub pushes terminal events to connected websocket clients.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Event types
const (
	EventOrderConfirmed   = "order_confirmed"
	EventInventoryWarning = "inventory_warning"
	EventLowStock         = "low_stock"
	EventShiftOpened      = "shift_opened"
	EventCashMovement     = "cash_movement"
	EventCashCut          = "cash_cut"
	EventCatalogUpdate    = "catalog_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub keeps every connected client together with the terminal it belongs to.
type Hub struct {
	clients map[*websocket.Conn]string
	mutex   sync.Mutex
	log     logrus.FieldLogger
}

func New(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]string),
		log:     log,
	}
}

func (h *Hub) Register(conn *websocket.Conn, terminal string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = terminal
	h.log.WithField("terminal", terminal).Debug("Websocket client registered")
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) Broadcast(event string, data interface{}) {
	h.broadcast(Message{Event: event, Data: data})
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.WithField("event", msg.Event).WithError(err).Error("Error marshaling message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn, terminal := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.WithFields(logrus.Fields{"event": msg.Event, "terminal": terminal}).
				WithError(err).Warn("Error sending message to client")
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
