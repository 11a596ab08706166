package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/hububba/hubcalls/internal/core"
)

var (
	ErrBackpressure = errors.New("backpressure")
	errClosed       = errors.New("connection closed")
)

// wsConn owns one websocket plus its buffered outbound queue. The write
// pump is the only goroutine touching the socket for writes.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWSConn(conn *websocket.Conn, buf int) *wsConn {
	return &wsConn{conn: conn, send: make(chan core.Frame, buf)}
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}
