package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Event is what dashboards receive when bookings or payments change.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Hub fans events out to every websocket subscribed to a club channel.
// Publishing is best-effort: a dead connection is dropped, never an error
// surfaced to the caller.
type Hub struct {
	mutex sync.RWMutex
	subs  map[string]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Subscribe(clubID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.subs[clubID] == nil {
		h.subs[clubID] = make(map[*websocket.Conn]struct{})
	}
	h.subs[clubID][conn] = struct{}{}
}

func (h *Hub) Unsubscribe(clubID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conns, ok := h.subs[clubID]; ok {
		if _, exists := conns[conn]; exists {
			_ = conn.Close()
			delete(conns, conn)
		}
		if len(conns) == 0 {
			delete(h.subs, clubID)
		}
	}
}

// Publish delivers the event to every subscriber of the club. Returns
// the number of connections reached.
func (h *Hub) Publish(clubID string, event Event) int {
	h.mutex.RLock()
	conns := make([]*websocket.Conn, 0, len(h.subs[clubID]))
	for conn := range h.subs[clubID] {
		conns = append(conns, conn)
	}
	h.mutex.RUnlock()

	delivered := 0
	for _, conn := range conns {
		if err := conn.WriteJSON(event); err != nil {
			h.Unsubscribe(clubID, conn)
			continue
		}
		delivered++
	}
	return delivered
}

func (h *Hub) SubscriberCount(clubID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.subs[clubID])
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for clubID, conns := range h.subs {
		for conn := range conns {
			_ = conn.Close()
		}
		delete(h.subs, clubID)
	}
}
