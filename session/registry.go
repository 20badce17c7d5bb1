package session

import "sync"

// Registry maps live connection ids to the room each one occupies. Owned by
// the adapter and written only on join/leave/disconnect/rejoin; the engine
// never reads it.
type Registry struct {
	mu         sync.RWMutex
	roomByConn map[string]string
}

func NewRegistry() *Registry {
	return &Registry{roomByConn: map[string]string{}}
}

func (r *Registry) Bind(connID, roomCode string) {
	r.mu.Lock()
	r.roomByConn[connID] = roomCode
	r.mu.Unlock()
}

// Lookup resolves the room a connection is in. A connection with no room is
// simply not in a game; actions from it are no-ops.
func (r *Registry) Lookup(connID string) (string, bool) {
	r.mu.RLock()
	code, ok := r.roomByConn[connID]
	r.mu.RUnlock()
	return code, ok
}

func (r *Registry) Unbind(connID string) {
	r.mu.Lock()
	delete(r.roomByConn, connID)
	r.mu.Unlock()
}
