package stream

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/safesight/safesight-backend/internal/detection"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler serves the detection WebSocket endpoint.
type Handler struct {
	pipeline *detection.Pipeline
	pool     *detection.Pool
	manager  *Manager
	reporter Reporter
	logger   *slog.Logger
}

func NewHandler(pipeline *detection.Pipeline, pool *detection.Pool, manager *Manager, reporter Reporter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		pipeline: pipeline,
		pool:     pool,
		manager:  manager,
		reporter: reporter,
		logger:   logger.With("component", "stream-handler"),
	}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/ws/detection", h.handleDetection)
}

func (h *Handler) handleDetection(c echo.Context) error {
	ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}

	session := NewSession(h.pipeline, h.pool, h.logger)
	h.manager.Register(session)

	conn := newConn(ws, session, h.reporter, h.logger)
	conn.enqueue(session.ConnectedMessage())

	ctx := c.Request().Context()
	go conn.writePump()
	conn.readPump(ctx)

	h.manager.Unregister(session.ID)
	h.logger.Info("detection session closed",
		"session_id", session.ID,
		"frames", session.FrameCount())
	return nil
}
