// Package ws is the live session transport: it upgrades HTTP requests to
// WebSocket connections, runs the handshake, and interprets the
// action-based protocol over each connection.
package ws

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

// Conn funnels every outbound payload of one websocket connection through a
// buffered queue drained by a single writer goroutine, so broadcasts from
// other connections' goroutines and the session's own replies never write
// to the socket concurrently.
type Conn struct {
	id              uuid.UUID
	ws              *websocket.Conn
	send            chan any
	deliveryTimeout time.Duration
	done            chan struct{}
	closeOnce       sync.Once
	log             *slog.Logger
}

func newConn(log *slog.Logger, ws *websocket.Conn, bufferSize int, deliveryTimeout time.Duration) *Conn {
	return &Conn{
		id:              uuid.New(),
		ws:              ws,
		send:            make(chan any, bufferSize),
		deliveryTimeout: deliveryTimeout,
		done:            make(chan struct{}),
		log:             log,
	}
}

// Send queues a payload for delivery. It fails once the connection is
// closed, or when the queue stays full for deliveryTimeout, which marks a
// peer that stopped draining as dead.
func (c *Conn) Send(payload any) error {
	select {
	case <-c.done:
		return fmt.Errorf("connection %s closed", c.id)
	default:
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return fmt.Errorf("connection %s closed", c.id)
	case <-time.After(c.deliveryTimeout):
		return fmt.Errorf("connection %s backpressured", c.id)
	}
}

// Close is idempotent and safe from any goroutine. It stops the write pump
// and tears the transport down; a blocked reader wakes up with an error.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
	return nil
}

// writePump drains the queue to the peer and keeps the connection alive
// with pings. Any write failure closes the connection; the registry notices
// through the next failed Send.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(payload); err != nil {
				c.log.Debug("write failed, closing connection", "conn_id", c.id, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
