package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	sendQueueSize  = 64
)

var errSlowConsumer = errors.New("send queue full, frame dropped")

// clientConn wraps one live socket. Outbound frames go through a buffered
// queue drained by writePump so a blocked peer never stalls a broadcast.
type clientConn struct {
	raw  *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	mu     sync.Mutex
	userID string
	alive  bool
}

func newClientConn(raw *websocket.Conn) *clientConn {
	return &clientConn{
		raw:   raw,
		send:  make(chan []byte, sendQueueSize),
		done:  make(chan struct{}),
		alive: true,
	}
}

// Send marshals and enqueues, never blocking. Implements room.Peer.
func (c *clientConn) Send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case c.send <- b:
		return nil
	default:
		return errSlowConsumer
	}
}

func (c *clientConn) writePump() {
	defer c.raw.Close()
	for {
		select {
		case <-c.done:
			_ = c.raw.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait),
			)
			return
		case b := <-c.send:
			_ = c.raw.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.raw.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}

// ping is safe concurrently with writePump; gorilla allows WriteControl from
// any goroutine.
func (c *clientConn) ping() {
	_ = c.raw.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *clientConn) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

func (c *clientConn) setUser(userID string) {
	c.mu.Lock()
	c.userID = userID
	c.mu.Unlock()
}

func (c *clientConn) user() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *clientConn) touch() {
	c.mu.Lock()
	c.alive = true
	c.mu.Unlock()
}

// markStale flips the liveness flag and reports whether the connection had
// responded since the previous sweep.
func (c *clientConn) markStale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	was := c.alive
	c.alive = false
	return was
}
