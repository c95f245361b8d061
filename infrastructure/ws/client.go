package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gaming-hub/observability"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxFrameSize   = 16 * 1024
	defaultBufSize = 64
)

// Client wraps one websocket connection. It satisfies contract.Conn: Send
// queues onto a buffered channel drained by the write pump and never blocks
// a publisher. A full queue drops the frame; durable state lives in the
// store, not in this buffer.
type Client struct {
	log     *slog.Logger
	conn    *websocket.Conn
	userID  string
	send    chan []byte
	monitor *observability.Monitor

	closeOnce sync.Once
}

func newClient(log *slog.Logger, conn *websocket.Conn, userID string, bufferSize int,
	monitor *observability.Monitor) *Client {
	if bufferSize <= 0 {
		bufferSize = defaultBufSize
	}
	return &Client{
		log:     log.With("user_id", userID),
		conn:    conn,
		userID:  userID,
		send:    make(chan []byte, bufferSize),
		monitor: monitor,
	}
}

func (c *Client) UserID() string {
	return c.userID
}

// Send queues a frame for the write pump. Never blocks.
func (c *Client) Send(payload []byte) error {
	select {
	case c.send <- payload:
		return nil
	default:
		c.monitor.IncrFramesDropped()
		c.log.Warn("outbound queue full, dropping event")
		return nil
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// readPump reads frames until the connection dies and hands each one to the
// gateway's handler table. Runs on the connection's own goroutine.
func (c *Client) readPump(g *Gateway) {
	defer func() {
		g.teardown(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket read failed", "err", err)
			}
			return
		}
		g.handle(c, frame)
	}
}

// writePump drains the send queue to the socket and keeps the connection
// alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
