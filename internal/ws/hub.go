package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Event is the envelope pushed to connected clients: friend requests,
// private messages, unread-badge updates.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Hub manages active WebSocket connections keyed by user ID and pushes
// events to one or more users. A user may hold several connections.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]map[*websocket.Conn]struct{}),
	}
}

// Register adds a connection for the given user.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]struct{})
	}
	h.conns[userID][conn] = struct{}{}
}

// Unregister removes a connection for the given user.
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.conns[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.conns, userID)
		}
	}
}

// NotifyUser sends an event to all active connections of one user. A user
// with no connections is not an error; delivery is best-effort.
func (h *Hub) NotifyUser(userID string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.conns[userID] {
		if err := conn.WriteJSON(ev); err != nil {
			conn.Close()
			// stale conns are dropped on the next Register/Unregister
		}
	}
}

// Broadcast sends an event to every connected user.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conns := range h.conns {
		for conn := range conns {
			if err := conn.WriteJSON(ev); err != nil {
				conn.Close()
			}
		}
	}
}
