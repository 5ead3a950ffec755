package violation

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/safesight/safesight-backend/internal/notify"
	"github.com/safesight/safesight-backend/internal/shared"
)

type Handler struct {
	store    *Store
	notifier *notify.Notifier
	logger   *slog.Logger
}

func NewHandler(store *Store, notifier *notify.Notifier, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:    store,
		notifier: notifier,
		logger:   logger.With("component", "violation-handler"),
	}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/violations", h.ListViolations)
	api.POST("/violations/:id/resolve", h.Resolve)
	api.GET("/detections", h.ListDetections)
	api.POST("/alerts/system", h.SystemAlert)
}

func (h *Handler) ListViolations(c echo.Context) error {
	filter := ViolationFilter{
		WorkerID: c.QueryParam("worker_id"),
		Status:   Status(c.QueryParam("status")),
		Severity: c.QueryParam("severity"),
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.QueryParam("from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return shared.BadRequest("invalid_from", "from must be RFC3339")
		}
		filter.From = &ts
	}
	if v := c.QueryParam("to"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return shared.BadRequest("invalid_to", "to must be RFC3339")
		}
		filter.To = &ts
	}

	records, err := h.store.ListViolations(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("failed to list violations", "error", err)
		return shared.InternalError("list_failed", "failed to list violations")
	}
	return c.JSON(http.StatusOK, map[string]any{"violations": records})
}

type resolveRequest struct {
	ResolvedBy string `json:"resolved_by"`
}

func (h *Handler) Resolve(c echo.Context) error {
	var req resolveRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_body", "invalid request body")
	}

	record, err := h.store.Resolve(c.Request().Context(), c.Param("id"), req.ResolvedBy)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			return shared.NotFound("violation_not_found", "violation not found")
		case errors.Is(err, shared.ErrConflict):
			return shared.Conflict("already_resolved", "violation is already resolved")
		default:
			h.logger.Error("failed to resolve violation", "error", err, "violation_id", c.Param("id"))
			return shared.InternalError("resolve_failed", "failed to resolve violation")
		}
	}

	h.notifier.SendAlertResolved(c.Request().Context(), notify.ResolvedAlert{
		ViolationID: record.ID,
		WorkerID:    record.WorkerID,
		ResolvedBy:  record.ResolvedBy,
	})

	return c.JSON(http.StatusOK, record)
}

func (h *Handler) ListDetections(c echo.Context) error {
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	records, err := h.store.ListDetections(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("failed to list detections", "error", err)
		return shared.InternalError("list_failed", "failed to list detections")
	}
	return c.JSON(http.StatusOK, map[string]any{"detections": records})
}

type systemAlertRequest struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

func (h *Handler) SystemAlert(c echo.Context) error {
	var req systemAlertRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_body", "invalid request body")
	}
	if req.Message == "" {
		return shared.BadRequest("missing_message", "message is required")
	}
	if req.Severity == "" {
		req.Severity = "low"
	}

	h.notifier.SendSystemAlert(c.Request().Context(), notify.SystemAlert{
		Title:    req.Title,
		Message:  req.Message,
		Severity: req.Severity,
	})

	return c.JSON(http.StatusAccepted, map[string]any{"status": "sent"})
}
