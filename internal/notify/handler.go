package notify

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/safesight/safesight-backend/internal/shared"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler serves the notification WebSocket endpoint.
type Handler struct {
	hub    *Hub
	logger *slog.Logger
}

func NewHandler(hub *Hub, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		hub:    hub,
		logger: logger.With("component", "notify-handler"),
	}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/ws/notifications", h.handleNotifications)
}

type client struct {
	ws     *websocket.Conn
	send   chan []byte
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func newClient(ws *websocket.Conn, logger *slog.Logger) *client {
	return &client{
		ws:     ws,
		send:   make(chan []byte, 64),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Deliver queues a payload for the write pump, dropping it when the client
// cannot keep up.
func (c *client) Deliver(payload []byte) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	select {
	case c.send <- payload:
	default:
		c.logger.Warn("notification buffer full, dropping message")
	}
}

func (c *client) deliverEnvelope(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		c.logger.Error("failed to marshal envelope", "error", err)
		return
	}
	c.Deliver(data)
}

func (c *client) close() {
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

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
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

type clientMessage struct {
	Type           string `json:"type"`
	NotificationID string `json:"notification_id,omitempty"`
}

func (c *client) readPump() {
	defer c.close()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read error", "error", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Warn("invalid client message", "error", err)
			continue
		}

		switch msg.Type {
		case TypePing:
			c.deliverEnvelope(Envelope{Type: TypePong, Timestamp: time.Now().UTC()})
		case TypeMarkRead:
			// Read state lives client side; acknowledged for protocol symmetry.
			c.logger.Debug("notification marked read", "notification_id", msg.NotificationID)
		default:
			c.logger.Debug("ignoring client message", "type", msg.Type)
		}
	}
}

type connectedData struct {
	Role   string   `json:"role"`
	Groups []string `json:"groups"`
}

func (h *Handler) handleNotifications(c echo.Context) error {
	role := shared.Role(c.QueryParam("role"))
	workerID := c.QueryParam("worker_id")

	groups := GroupsForRole(role, workerID)

	ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}

	// An unrecognized role still gets a connection and the connected ack; it
	// just subscribes to nothing.
	cl := newClient(ws, h.logger.With("role", string(role)))
	if len(groups) > 0 {
		h.hub.Join(cl, groups)
	}

	h.logger.Info("notification client connected", "role", string(role), "groups", groups)

	cl.deliverEnvelope(Envelope{
		Type:      TypeConnected,
		Data:      connectedData{Role: string(role), Groups: groups},
		Timestamp: time.Now().UTC(),
	})

	go cl.writePump()
	cl.readPump()

	h.hub.Leave(cl)
	h.logger.Info("notification client disconnected", "role", string(role))
	return nil
}
