// Package feed pushes audit events to websocket clients. The hub is an audit
// sink: every recorded ledger fact is fanned out to whoever is connected.
package feed

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/agroledger/internal/audit"
)

type wsEvent struct {
	Type string      `json:"type"`
	Data audit.Event `json:"data"`
}

// Hub tracks connected clients and broadcasts audit events to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

// Publish implements audit.Sink. Gorilla connections allow one concurrent
// writer, so the full lock is held for the broadcast: publishes from parallel
// ledger operations are serialized here.
func (h *Hub) Publish(evt audit.Event) {
	payload, _ := json.Marshal(wsEvent{Type: "ledger_event", Data: evt})
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.WriteMessage(websocket.TextMessage, payload)
	}
}

func (h *Hub) register(c *websocket.Conn) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *Hub) unregister(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventsWS - websocket for realtime ledger events
func (h *Hub) EventsWS(c echo.Context) error {
	wallet, ok := c.Get("wallet").(string)
	if !ok || wallet == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	h.register(ws)

	// Read loop (discard client messages; protocol is server push)
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			h.unregister(ws)
			_ = ws.Close()
			break
		}
	}
	return nil
}
