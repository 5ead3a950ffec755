package worker

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/safesight/safesight-backend/internal/identity"
	"github.com/safesight/safesight-backend/internal/shared"
)

type Handler struct {
	store   *Store
	encoder *identity.Encoder
	gallery *identity.Gallery
	logger  *slog.Logger
}

func NewHandler(store *Store, encoder *identity.Encoder, gallery *identity.Gallery, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:   store,
		encoder: encoder,
		gallery: gallery,
		logger:  logger.With("component", "worker-handler"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Register)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/retrain", h.Retrain)
	g.POST("/similar", h.Similar)
}

type registerRequest struct {
	EmployeeID  string   `json:"employee_id"`
	Name        string   `json:"name"`
	Department  string   `json:"department"`
	Role        string   `json:"role"`
	RequiredPPE []string `json:"required_ppe"`
	Photo       string   `json:"photo"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_body", "invalid request body")
	}
	if req.EmployeeID == "" || req.Name == "" {
		return shared.BadRequest("missing_fields", "employee_id and name are required")
	}

	ctx := c.Request().Context()

	if _, err := h.store.GetByEmployeeID(ctx, req.EmployeeID); err == nil {
		return shared.Conflict("employee_exists", "a worker with this employee_id already exists")
	}

	w := &Worker{
		EmployeeID:  req.EmployeeID,
		Name:        req.Name,
		Department:  req.Department,
		Role:        shared.RoleWorker,
		RequiredPPE: req.RequiredPPE,
		IsActive:    true,
	}
	if req.Role != "" {
		w.Role = shared.Role(req.Role)
	}

	if req.Photo != "" {
		encoding, httpErr := h.encodePhoto(c, req.Photo)
		if httpErr != nil {
			return httpErr
		}
		w.FaceEncoding = encoding
		w.FacePhotoValid = true
	}

	if err := h.store.Create(ctx, w); err != nil {
		h.logger.Error("failed to create worker", "error", err, "employee_id", req.EmployeeID)
		return shared.InternalError("create_failed", "failed to create worker")
	}

	if w.FacePhotoValid {
		h.gallery.AddWorker(w.ID, w.Name, w.FaceEncoding)
	}

	h.logger.Info("worker registered",
		"worker_id", w.ID,
		"employee_id", w.EmployeeID,
		"face_photo_valid", w.FacePhotoValid)
	return c.JSON(http.StatusCreated, w)
}

// encodePhoto decodes a base64 photo and extracts its face encoding. A photo
// without a detectable face is a client error and must not touch the gallery.
func (h *Handler) encodePhoto(c echo.Context, photo string) ([]float64, *echo.HTTPError) {
	image, err := base64.StdEncoding.DecodeString(photo)
	if err != nil {
		return nil, shared.BadRequest("invalid_photo", "photo is not valid base64")
	}

	encoding, err := h.encoder.Encode(c.Request().Context(), image)
	if err != nil {
		h.logger.Error("face encoding failed", "error", err)
		return nil, shared.InternalError("encoding_failed", "face encoding service failed")
	}
	if encoding == nil {
		return nil, shared.BadRequest("no_face", "no detectable face in photo")
	}
	return encoding, nil
}

func (h *Handler) List(c echo.Context) error {
	activeOnly := c.QueryParam("active") == "true"

	workers, err := h.store.List(c.Request().Context(), activeOnly)
	if err != nil {
		h.logger.Error("failed to list workers", "error", err)
		return shared.InternalError("list_failed", "failed to list workers")
	}
	return c.JSON(http.StatusOK, map[string]any{"workers": workers})
}

func (h *Handler) Get(c echo.Context) error {
	w, err := h.store.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("worker_not_found", "worker not found")
		}
		return shared.InternalError("get_failed", "failed to load worker")
	}
	return c.JSON(http.StatusOK, w)
}

type updateRequest struct {
	Name        *string   `json:"name"`
	Department  *string   `json:"department"`
	Role        *string   `json:"role"`
	RequiredPPE *[]string `json:"required_ppe"`
	IsActive    *bool     `json:"is_active"`
	Photo       *string   `json:"photo"`
}

func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	w, err := h.store.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("worker_not_found", "worker not found")
		}
		return shared.InternalError("get_failed", "failed to load worker")
	}

	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_body", "invalid request body")
	}

	if req.Name != nil {
		w.Name = *req.Name
	}
	if req.Department != nil {
		w.Department = *req.Department
	}
	if req.Role != nil {
		w.Role = shared.Role(*req.Role)
	}
	if req.RequiredPPE != nil {
		w.RequiredPPE = *req.RequiredPPE
	}
	if req.IsActive != nil {
		w.IsActive = *req.IsActive
	}
	if req.Photo != nil && *req.Photo != "" {
		encoding, httpErr := h.encodePhoto(c, *req.Photo)
		if httpErr != nil {
			return httpErr
		}
		w.FaceEncoding = encoding
		w.FacePhotoValid = true
	}

	if err := h.store.Update(ctx, w); err != nil {
		h.logger.Error("failed to update worker", "error", err, "worker_id", w.ID)
		return shared.InternalError("update_failed", "failed to update worker")
	}

	if w.FacePhotoValid && w.IsActive {
		h.gallery.AddWorker(w.ID, w.Name, w.FaceEncoding)
	} else {
		h.gallery.RemoveWorker(w.ID)
	}

	return c.JSON(http.StatusOK, w)
}

func (h *Handler) Delete(c echo.Context) error {
	id := c.Param("id")

	if err := h.store.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("worker_not_found", "worker not found")
		}
		h.logger.Error("failed to delete worker", "error", err, "worker_id", id)
		return shared.InternalError("delete_failed", "failed to delete worker")
	}

	h.gallery.RemoveWorker(id)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Retrain(c echo.Context) error {
	entries, err := h.store.GalleryEntries(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to load gallery entries", "error", err)
		return shared.InternalError("retrain_failed", "failed to load worker encodings")
	}

	loaded := h.gallery.RetrainAll(entries)
	h.logger.Info("gallery retrained", "workers_loaded", loaded)
	return c.JSON(http.StatusOK, map[string]any{"workers_loaded": loaded})
}

type similarRequest struct {
	Photo string `json:"photo"`
	Limit int    `json:"limit"`
}

func (h *Handler) Similar(c echo.Context) error {
	var req similarRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_body", "invalid request body")
	}
	if req.Photo == "" {
		return shared.BadRequest("missing_photo", "photo is required")
	}
	if req.Limit <= 0 || req.Limit > 50 {
		req.Limit = 5
	}

	encoding, httpErr := h.encodePhoto(c, req.Photo)
	if httpErr != nil {
		return httpErr
	}

	workers, err := h.store.SearchByEmbedding(c.Request().Context(), encoding, req.Limit)
	if err != nil {
		h.logger.Error("similarity search failed", "error", err)
		return shared.InternalError("search_failed", "similarity search failed")
	}
	return c.JSON(http.StatusOK, map[string]any{"workers": workers})
}
