package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// Event is the envelope pushed to a client's socket
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Pusher is the delivery contract the notification emitter depends on.
// Delivery is best-effort; a push to a user with no active connections is a
// silent no-op.
type Pusher interface {
	EmitToUser(userID uint, event string, payload interface{})
}

// Hub is the process-wide registry of active socket connections, keyed by
// user ID. A user may hold several connections (multiple tabs/devices); an
// emit reaches all of them. The raw connection map is never exposed.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{}
	log     *zap.SugaredLogger
}

// NewHub creates an empty connection registry
func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		clients: make(map[uint]map[*Client]struct{}),
		log:     log,
	}
}

// Register adds a connection under the user's identity
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.userID]; !ok {
		h.clients[c.userID] = make(map[*Client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
	h.log.Debugw("realtime client registered", "user_id", c.userID, "conn_id", c.id)
}

// Unregister removes a connection; the user's room disappears with its last
// connection. Safe to call more than once for the same client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[c.userID]; ok {
		if _, ok := conns[c]; ok {
			delete(conns, c)
			close(c.send)
			if len(conns) == 0 {
				delete(h.clients, c.userID)
			}
		}
	}
}

// EmitToUser pushes an event to every active connection of the user. A slow
// connection's full buffer drops the event rather than blocking the caller;
// a user with no connections is a no-op.
func (h *Hub) EmitToUser(userID uint, event string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns, ok := h.clients[userID]
	if !ok {
		return
	}
	msg := Event{Event: event, Payload: payload}
	for c := range conns {
		select {
		case c.send <- msg:
		default:
			h.log.Debugw("realtime event dropped, send buffer full", "user_id", userID, "event", event)
		}
	}
}

// ConnectionCount reports the number of active connections for a user
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
