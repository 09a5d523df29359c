// Package ws adapts gorilla websockets to the core's Sender interface:
// one buffered outbound queue per connection, a write pump draining it and
// a read pump feeding the dispatcher.
package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

// Conn wraps one websocket. TrySend never blocks: a full queue means the
// frame is dropped and the caller decides what to do about it.
type Conn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func NewConn(conn *websocket.Conn, queueSize int) *Conn {
	return &Conn{
		conn: conn,
		send: make(chan []byte, queueSize),
	}
}

func (c *Conn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *Conn) Close() {
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
