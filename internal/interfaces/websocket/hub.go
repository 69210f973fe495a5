package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/domain/entity"
	"github.com/colmeia/hive/internal/domain/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Local console; origin restriction left to deployment
	},
}

// EventType tags the events pushed to console clients.
type EventType string

const (
	EventTypeMessage EventType = "message"
	EventTypePing    EventType = "ping"
)

// Event is the wire format pushed over /ws.
type Event struct {
	Type           EventType       `json:"type"`
	ConversationID string          `json:"conversation_id,omitempty"`
	Message        *entity.Message `json:"message,omitempty"`
	Timestamp      int64           `json:"timestamp"`
}

// Client is one connected console tab.
type Client struct {
	ID     string
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
	logger *zap.Logger
}

// Hub fans appended-message events out to every connected console
// client, so a second browser tab sees agent replies live.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	logger     *zap.Logger
}

// NewHub creates the connection hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(zap.String("component", "websocket")),
	}
}

// Compile-time interface check
var _ service.Broadcaster = (*Hub)(nil)

// MessageAppended broadcasts a message event. Non-blocking: if the hub
// loop is saturated the event is dropped rather than stalling the send
// flow.
func (h *Hub) MessageAppended(conversationID string, msg entity.Message) {
	payload, err := json.Marshal(Event{
		Type:           EventTypeMessage,
		ConversationID: conversationID,
		Message:        &msg,
		Timestamp:      time.Now().Unix(),
	})
	if err != nil {
		h.logger.Warn("Failed to encode broadcast event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("Broadcast buffer full, dropping event")
	}
}

// Run owns the client registry until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.logger.Info("Console client connected", zap.String("client_id", client.ID))
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("Console client disconnected", zap.String("client_id", client.ID))
		case message := <-h.broadcast:
			h.mu.Lock()
			for _, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client: drop it rather than block the hub
					delete(h.clients, client.ID)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Serve upgrades an HTTP request to a WebSocket client connection.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		ID:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, 16),
		hub:    h,
		logger: h.logger,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains (and discards) inbound frames; the console API is
// HTTP-only, the socket is push-only.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
