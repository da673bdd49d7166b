package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Event types broadcast over the live feed.
const (
	EventHello        = "hello"
	EventGameStarted  = "gameStarted"
	EventGameUpdated  = "gameUpdated"
	EventGameFinished = "gameFinished"
	EventGameAbandon  = "gameAbandoned"
	EventPageEnhanced = "pageEnhanced"
)

// Event is one message on the live feed.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Hub fans game-progress events out to connected websocket clients.
//
// Clients are spectators: the hub reads their messages only to detect
// disconnects. A client whose write fails is dropped; a slow spectator
// must not stall the game routes.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates a Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		// The feed is public read-only data; any origin may watch.
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		logger:   logger,
		clients:  make(map[*websocket.Conn]struct{}),
	}
}

// ServeWS upgrades the request and registers the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Debug("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("websocket client connected", "remote", r.RemoteAddr)
	if err := conn.WriteJSON(Event{Type: EventHello}); err != nil {
		h.drop(conn)
		return
	}

	go h.reader(conn)
}

// reader drains the connection until it closes, then unregisters it.
func (h *Hub) reader(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.drop(conn)
			return
		}
	}
}

// Broadcast sends the event to every connected client. Clients whose
// write fails are dropped.
//
// Writes happen under the hub lock so that two broadcasts never
// interleave on one connection; gorilla connections allow only a
// single concurrent writer.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Debug("websocket write failed, dropping client", "error", err)
			delete(h.clients, conn)
			_ = conn.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}

// drop unregisters and closes one connection.
func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, present := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()

	if present {
		_ = conn.Close()
	}
}
