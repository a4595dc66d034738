package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks active WebSocket connections keyed by user ID so new chat
// messages can be pushed to a thread's participants.
type Hub struct {
	mu    sync.RWMutex
	conns map[int64]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[int64]map[*websocket.Conn]struct{}),
	}
}

// Register adds a connection for the given user.
func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]struct{})
	}
	h.conns[userID][conn] = struct{}{}
}

// Unregister removes a connection for the given user.
func (h *Hub) Unregister(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.conns[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.conns, userID)
		}
	}
}

// BroadcastToUsers sends the payload to all active connections of the
// given users. Failed connections are closed and dropped from the hub
// once the read lock is released.
func (h *Hub) BroadcastToUsers(userIDs []int64, payload any) {
	type deadConn struct {
		userID int64
		conn   *websocket.Conn
	}
	var dead []deadConn

	h.mu.RLock()
	for _, uid := range userIDs {
		for conn := range h.conns[uid] {
			if err := conn.WriteJSON(payload); err != nil {
				conn.Close()
				dead = append(dead, deadConn{userID: uid, conn: conn})
			}
		}
	}
	h.mu.RUnlock()

	for _, d := range dead {
		h.Unregister(d.userID, d.conn)
	}
}
