package game

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// --- RoomStore ---

type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) Save(ctx context.Context, room *Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockRoomStore) Get(ctx context.Context, code string) (*Room, error) {
	args := m.Called(ctx, code)
	room, _ := args.Get(0).(*Room)
	return room, args.Error(1)
}

func (m *MockRoomStore) Delete(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockRoomStore) Exists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// fakeStore mimics the real store's semantics for engine tests: snapshots
// round-trip through JSON so every Get hands back a fresh copy, and an
// optional delay widens the load-mutate-save window for the race test.
type fakeStore struct {
	mu       sync.Mutex
	rooms    map[string][]byte
	getDelay time.Duration
	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rooms: map[string][]byte{}}
}

func (s *fakeStore) Save(_ context.Context, room *Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	s.rooms[room.Code] = data
	return nil
}

func (s *fakeStore) Get(_ context.Context, code string) (*Room, error) {
	s.mu.Lock()
	data, ok := s.rooms[code]
	fail := s.failWith
	delay := s.getDelay
	s.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	if !ok {
		return nil, ErrRoomNotFound
	}
	time.Sleep(delay)
	room := &Room{}
	if err := json.Unmarshal(data, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *fakeStore) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
	return nil
}

func (s *fakeStore) Exists(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rooms[code]
	return ok, nil
}
