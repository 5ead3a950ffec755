package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

// conn owns one detection-channel socket. The reader goroutine drives the
// session; the writer goroutine owns all socket writes.
type conn struct {
	ws       *websocket.Conn
	session  *Session
	reporter Reporter
	logger   *slog.Logger
	send     chan []byte

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func newConn(ws *websocket.Conn, session *Session, reporter Reporter, logger *slog.Logger) *conn {
	return &conn{
		ws:       ws,
		session:  session,
		reporter: reporter,
		logger:   logger.With("session_id", session.ID),
		send:     make(chan []byte, 64),
		done:     make(chan struct{}),
	}
}

func (c *conn) enqueue(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to marshal outbound message", "error", err)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	select {
	case c.send <- data:
	default:
		c.logger.Warn("send buffer full, dropping message")
	}
}

func (c *conn) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	_ = c.ws.Close()
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
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

// readPump processes inbound messages. Binary frames run through the session
// synchronously so detection messages keep frame order; the post-frame
// reporting runs in the background.
func (c *conn) readPump(ctx context.Context) {
	defer c.close()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read error", "error", err)
			}
			return
		}

		switch msgType {
		case websocket.TextMessage:
			c.enqueue(c.session.HandleControl(data))

		case websocket.BinaryMessage:
			out, result, required := c.session.HandleFrame(ctx, data)
			c.enqueue(out)

			if result != nil && result.NonCompliant > 0 && c.reporter != nil {
				res := *result
				go c.reporter.Report(context.WithoutCancel(ctx), res, required)
			}
		}
	}
}
