package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"ChatCRM/entity"
	"ChatCRM/internal/lib/sl"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one upgraded WebSocket connection bound to a resolved user.
// Outbound frames go through a buffered channel drained by writePump; the
// channel is never closed, the context guards it instead, so a concurrent
// Send during teardown cannot panic.
type Client struct {
	router *Router
	conn   *websocket.Conn
	user   *entity.User
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger
}

func newClient(router *Router, conn *websocket.Conn, log *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		router: router,
		conn:   conn,
		send:   make(chan []byte, 256),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
}

// Send queues a frame for delivery. Reports false when the connection is
// closing or the buffer is full; the hub treats both as a dead subscriber.
func (c *Client) Send(data []byte) bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	case <-c.ctx.Done():
		return false
	default:
		return false
	}
}

// readPump consumes inbound frames and hands them to the router. It owns
// the teardown: when the read loop ends for any reason the connection is
// disconnected exactly once.
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		c.router.Disconnect(c.user.UserID, c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("unexpected socket close", slog.String("user", c.user.UserID), sl.Err(err))
			}
			break
		}
		c.router.RouteEvent(c.ctx, c.user, c, raw)
	}
}

// writePump drains the send channel to the socket and keeps the connection
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades GET /ws/chat/{visitorId} and runs the join sequence.
// The identity comes from the path, not a bearer token: guest visitors
// connect before they ever authenticate. Presence is broadcast before the
// pumps start so the joining client's first frame is the snapshot that
// already includes itself.
func ServeWs(router *Router, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitorID := chi.URLParam(r, "visitorId")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("websocket upgrade failed", sl.Err(err))
			return
		}

		client := newClient(router, conn, log)
		user, err := router.Connect(r.Context(), visitorID, client)
		if err != nil {
			log.Warn("connection rejected", slog.String("visitor", visitorID), sl.Err(err))
			client.cancel()
			conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "identity rejected"),
				time.Now().Add(writeWait),
			)
			conn.Close()
			return
		}
		client.user = user

		go client.writePump()
		go client.readPump()
	}
}
