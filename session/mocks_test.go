package session

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"storyparty/game"
	"storyparty/storage"
)

// stubSocket satisfies Socket without a network. Pumps are not started in
// adapter tests; events are read straight from the conn outbox.
type stubSocket struct {
	mu     sync.Mutex
	closed bool
	reason string
}

func (s *stubSocket) Write(data []byte) error { return nil }
func (s *stubSocket) Read() ([]byte, error)   { select {} }
func (s *stubSocket) Ping() error             { return nil }

func (s *stubSocket) Close(reason string) {
	s.mu.Lock()
	s.closed = true
	s.reason = reason
	s.mu.Unlock()
}

func (s *stubSocket) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func newTestConn(id string) (*Conn, *stubSocket) {
	sock := &stubSocket{}
	return NewConn(id, sock), sock
}

func newTestAdapter(grace, revealDelay time.Duration) (*Adapter, *game.Engine) {
	store := storage.NewMemoryRoomStore(time.Hour)
	validator := game.NewAnswerValidator(100, nil)
	engine := game.NewEngine(store, game.NewLockedRand(1), validator, zerolog.Nop())
	return NewAdapter(engine, grace, revealDelay, zerolog.Nop()), engine
}

// waitForEvent drains a conn's outbox until an event of the wanted type
// shows up.
func waitForEvent(t *testing.T, c *Conn, eventType string) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case data := <-c.outbox:
			ev := Event{}
			require.NoError(t, json.Unmarshal(data, &ev))
			if ev.Type == eventType {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q on conn %s", eventType, c.ID)
			return Event{}
		}
	}
}

func assertNoEvent(t *testing.T, c *Conn) {
	t.Helper()
	select {
	case data := <-c.outbox:
		t.Fatalf("conn %s received unexpected event: %s", c.ID, data)
	case <-time.After(50 * time.Millisecond):
	}
}

func drain(c *Conn) {
	for {
		select {
		case <-c.outbox:
		default:
			return
		}
	}
}
