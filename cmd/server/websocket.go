// Package main provides the competition server for scoring platforms.
// WebSocket connections carry live sync and results events between stations.
package main

import (
	"encoding/json"
	"net/http"
	stdsync "sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mateo-brl/powerlifting-manager-sub001/internal/logging"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/uuid"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Scoring stations live on the venue LAN; origin checks add nothing.
		return true
	},
}

// WSClient represents one connected scoring station.
type WSClient struct {
	id         string
	platformID string // empty for observers (announcer screens, stream overlays)
	conn       *websocket.Conn
	send       chan []byte
	hub        *WSHub
}

// WSHub maintains active connections. Broadcasts go to everyone; deliveries
// go to the stations registered for one platform.
type WSHub struct {
	clients    map[string]*WSClient
	broadcast  chan []byte
	register   chan *WSClient
	unregister chan *WSClient
	mu         stdsync.RWMutex
}

// WSEnvelope wraps all WebSocket messages.
type WSEnvelope struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}

// WebSocket event types.
const (
	EventSyncEntry        = "sync.entry"
	EventSyncCompleted    = "sync.completed"
	EventResultsUpdated   = "results.updated"
	EventPlatformUpdated  = "platform.updated"
	EventConflictDetected = "sync.conflict_detected"
)

// NewWSHub creates a hub and starts its dispatch loop.
func NewWSHub() *WSHub {
	hub := &WSHub{
		clients:    make(map[string]*WSClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
	}
	go hub.run()
	return hub
}

func (h *WSHub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			total := len(h.clients)
			h.mu.Unlock()
			logging.Debug("WebSocket client connected", map[string]interface{}{
				"client_id":   client.id,
				"platform_id": client.platformID,
				"total":       total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logging.Debug("WebSocket client disconnected", map[string]interface{}{
				"client_id": client.id,
				"total":     total,
			})

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Send buffer full, drop the connection
					close(client.send)
					delete(h.clients, id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends an event to every connected client.
func (h *WSHub) Broadcast(messageType string, data map[string]interface{}) {
	payload, err := json.Marshal(WSEnvelope{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		logging.Error("Failed to marshal WebSocket message", err, nil)
		return
	}
	h.broadcast <- payload
}

// DeliverTo pushes an event to every station registered for one platform.
// It reports whether at least one station received the message; a platform
// with no live connections cannot take delivery.
func (h *WSHub) DeliverTo(platformID string, messageType string, data map[string]interface{}) bool {
	payload, err := json.Marshal(WSEnvelope{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		logging.Error("Failed to marshal WebSocket message", err, nil)
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := false
	for id, client := range h.clients {
		if client.platformID != platformID {
			continue
		}
		select {
		case client.send <- payload:
			delivered = true
		default:
			close(client.send)
			delete(h.clients, id)
		}
	}
	return delivered
}

// HandleWebSocket upgrades GET /ws connections. Stations identify their
// platform with the platform_id query parameter; omitting it joins as an
// observer that receives broadcasts only.
func (h *WSHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	client := &WSClient{
		id:         uuid.New(),
		platformID: r.URL.Query().Get("platform_id"),
		conn:       conn,
		send:       make(chan []byte, 64),
		hub:        h,
	}
	h.register <- client

	go client.writeLoop()
	go client.readLoop()
}

func (c *WSClient) writeLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WSClient) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	for {
		// Inbound messages are ignored; stations talk over the REST API.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
