package session

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Per-connection inbound budget: sustained 5 actions/s, bursts of 10.
// Anything past that is dropped, not queued.
const (
	inboundRate  = 5
	inboundBurst = 10
)

type Handler struct {
	adapter        *Adapter
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

func NewHandler(adapter *Adapter, allowedOrigins []string) *Handler {
	h := &Handler{adapter: adapter, allowedOrigins: allowedOrigins}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(h.allowedOrigins) == 0 {
				return true
			}
			return slices.Contains(h.allowedOrigins, r.Header.Get("Origin"))
		},
	}
	return h
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws", h.serveWS)
}

func (h *Handler) serveWS(ctx *gin.Context) {
	sock, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	conn := NewConn(uuid.NewString(), NewWebsocketConnection(sock))
	go conn.WritePump()
	go h.readPump(conn)
}

// readPump drives the adapter from one connection until it drops, then
// hands the connection to the disconnect path.
func (h *Handler) readPump(c *Conn) {
	limiter := rate.NewLimiter(rate.Limit(inboundRate), inboundBurst)
	for {
		data, err := c.sock.Read()
		if err != nil {
			break
		}
		if !limiter.Allow() {
			continue
		}
		act := Action{}
		if err := json.Unmarshal(data, &act); err != nil {
			c.Send(errorEvent("malformed action"))
			continue
		}
		h.adapter.Dispatch(context.Background(), c, act)
	}
	h.adapter.HandleDisconnect(c)
	c.Close("")
}
