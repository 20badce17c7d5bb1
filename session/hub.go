package session

import "sync"

// Hub is the room-scoped publish/subscribe group: one subscriber set per
// room code. Broadcast is fire-and-forget; a failed delivery to one member
// never affects the others or the room state.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Conn
}

func NewHub() *Hub {
	return &Hub{rooms: map[string]map[string]*Conn{}}
}

func (h *Hub) Subscribe(code string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.rooms[code]
	if !ok {
		group = map[string]*Conn{}
		h.rooms[code] = group
	}
	group[c.ID] = c
}

func (h *Hub) Unsubscribe(code, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.rooms[code]
	if !ok {
		return
	}
	delete(group, connID)
	if len(group) == 0 {
		delete(h.rooms, code)
	}
}

// Member returns the live connection for a player in a room, if any.
func (h *Hub) Member(code, connID string) (*Conn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.rooms[code][connID]
	return c, ok
}

func (h *Hub) Broadcast(code string, ev Event) {
	h.mu.RLock()
	conns := make([]*Conn, 0, len(h.rooms[code]))
	for _, c := range h.rooms[code] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	for _, c := range conns {
		c.Send(ev)
	}
}
