package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	outboxSize   = 64
	pingInterval = 30 * time.Second
)

// Conn is one live connection: a transport socket plus a buffered outbox
// drained by WritePump. The ID doubles as the player id inside rooms; a
// reconnecting player gets a new Conn (and a new id) that the engine
// rebinds onto the old player record.
type Conn struct {
	ID     string
	sock   Socket
	outbox chan []byte
	done   chan struct{}
	once   sync.Once
}

func NewConn(id string, sock Socket) *Conn {
	return &Conn{
		ID:     id,
		sock:   sock,
		outbox: make(chan []byte, outboxSize),
		done:   make(chan struct{}),
	}
}

// Send queues an event without blocking. A member that cannot keep up gets
// its connection closed; the room state is the source of truth, not the
// delivery.
func (c *Conn) Send(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event", ev.Type).Msg("encoding event")
		return
	}
	select {
	case c.outbox <- data:
	case <-c.done:
	default:
		log.Warn().Str("conn", c.ID).Msg("outbox full, dropping connection")
		c.Close("slow consumer")
	}
}

func (c *Conn) Close(reason string) {
	c.once.Do(func() {
		close(c.done)
		c.sock.Close(reason)
	})
}

// WritePump drains the outbox and keeps the socket alive with pings. Runs
// in its own goroutine per connection.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case data := <-c.outbox:
			if err := c.sock.Write(data); err != nil {
				c.Close("write failed")
				return
			}
		case <-ticker.C:
			if err := c.sock.Ping(); err != nil {
				c.Close("ping failed")
				return
			}
		case <-c.done:
			return
		}
	}
}
