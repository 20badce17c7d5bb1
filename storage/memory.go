package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"storyparty/game"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryRoomStore is an in-process stand-in for the Redis store, used in
// development and tests. Snapshots go through JSON so callers get the same
// fresh-copy-per-Get semantics as the real store; expiry is checked lazily.
type MemoryRoomStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	rooms map[string]memoryEntry
}

func NewMemoryRoomStore(ttl time.Duration) *MemoryRoomStore {
	return &MemoryRoomStore{
		ttl:   ttl,
		now:   time.Now,
		rooms: map[string]memoryEntry{},
	}
}

func (s *MemoryRoomStore) Save(_ context.Context, room *game.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encoding room %s: %w", room.Code, err)
	}
	s.mu.Lock()
	s.rooms[room.Code] = memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryRoomStore) Get(_ context.Context, code string) (*game.Room, error) {
	s.mu.RLock()
	entry, ok := s.rooms[code]
	s.mu.RUnlock()
	if !ok || s.now().After(entry.expiresAt) {
		return nil, game.ErrRoomNotFound
	}
	room := &game.Room{}
	if err := json.Unmarshal(entry.data, room); err != nil {
		return nil, fmt.Errorf("decoding room %s: %w", code, err)
	}
	return room, nil
}

func (s *MemoryRoomStore) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	delete(s.rooms, code)
	s.mu.Unlock()
	return nil
}

func (s *MemoryRoomStore) Exists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	entry, ok := s.rooms[code]
	s.mu.RUnlock()
	return ok && !s.now().After(entry.expiresAt), nil
}
