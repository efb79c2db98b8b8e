package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"notes-service/internal/middleware"
	"notes-service/internal/quota"
	"notes-service/internal/scope"
	"notes-service/internal/store"
	"notes-service/pkg/logger"
	"notes-service/prometheus"
)

// NoteRequest defines the structure for note creation/update requests
type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// validate checks the request body bounds before it reaches the core.
func (r *NoteRequest) validate() string {
	if len(r.Title) < 1 || len(r.Title) > 200 {
		return "title must be between 1 and 200 characters"
	}
	if len(r.Content) < 1 || len(r.Content) > 10000 {
		return "content must be between 1 and 10000 characters"
	}
	return ""
}

// NoteHandler serves tenant-scoped note CRUD. All operations take their
// tenant boundary from the principal resolved by the auth middleware.
type NoteHandler struct {
	filter   *scope.Filter
	enforcer *quota.Enforcer
}

// NewNoteHandler creates a note handler with its collaborators.
func NewNoteHandler(filter *scope.Filter, enforcer *quota.Enforcer) *NoteHandler {
	return &NoteHandler{filter: filter, enforcer: enforcer}
}

// CreateNote handles creating a new note, subject to the plan quota.
func (h *NoteHandler) CreateNote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNoteOperation("create")
	principal := middleware.GetPrincipal(c)

	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if msg := req.validate(); msg != "" {
		log.Warn("Note validation failed", zap.String("reason", msg))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	note, err := h.enforcer.CreateNote(c.Request().Context(), principal, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, store.ErrQuotaExceeded) {
			log.Warn("Note quota exceeded",
				zap.Uint("tenant_id", principal.TenantID),
				zap.String("plan", string(principal.TenantPlan)))
			prometheus.RecordQuotaRejection(principal.TenantID)
			return c.JSON(http.StatusForbidden, echo.Map{
				"error": "Note limit reached. Upgrade to Pro plan for unlimited notes.",
				"code":  "NOTE_LIMIT_REACHED",
			})
		}
		log.Error("Failed to create note", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create note"})
	}

	log.Info("Note created",
		zap.Uint("note_id", note.ID),
		zap.Uint("tenant_id", note.TenantID))
	return c.JSON(http.StatusCreated, note)
}

// ListNotes handles retrieving all notes for the caller's tenant,
// newest first.
func (h *NoteHandler) ListNotes(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNoteOperation("list")
	principal := middleware.GetPrincipal(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	notes, err := h.filter.ListNotes(c.Request().Context(), principal)
	if err != nil {
		log.Error("Failed to list notes", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve notes"})
	}

	log.Info("Notes retrieved",
		zap.Uint("tenant_id", principal.TenantID),
		zap.Int("count", len(notes)))
	return c.JSON(http.StatusOK, notes)
}

// GetNote handles retrieving a single note by ID within the caller's
// tenant. A note under another tenant is indistinguishable from a
// missing one.
func (h *NoteHandler) GetNote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNoteOperation("get")
	principal := middleware.GetPrincipal(c)

	id, err := parseNoteID(c)
	if err != nil {
		log.Warn("Invalid note ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	note, err := h.filter.FindNote(c.Request().Context(), principal, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("Note not found",
				zap.Uint("note_id", id),
				zap.Uint("tenant_id", principal.TenantID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		log.Error("Failed to get note", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve note"})
	}

	return c.JSON(http.StatusOK, note)
}

// UpdateNote handles updating a note within the caller's tenant.
func (h *NoteHandler) UpdateNote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNoteOperation("update")
	principal := middleware.GetPrincipal(c)

	id, err := parseNoteID(c)
	if err != nil {
		log.Warn("Invalid note ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	}

	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if msg := req.validate(); msg != "" {
		log.Warn("Note validation failed", zap.String("reason", msg))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	note, err := h.filter.UpdateNote(c.Request().Context(), principal, id, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("Note not found for update",
				zap.Uint("note_id", id),
				zap.Uint("tenant_id", principal.TenantID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		log.Error("Failed to update note", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update note"})
	}

	log.Info("Note updated",
		zap.Uint("note_id", note.ID),
		zap.Uint("tenant_id", note.TenantID))
	return c.JSON(http.StatusOK, note)
}

// DeleteNote handles deleting a note within the caller's tenant.
func (h *NoteHandler) DeleteNote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNoteOperation("delete")
	principal := middleware.GetPrincipal(c)

	id, err := parseNoteID(c)
	if err != nil {
		log.Warn("Invalid note ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.filter.DeleteNote(c.Request().Context(), principal, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("Note not found for delete",
				zap.Uint("note_id", id),
				zap.Uint("tenant_id", principal.TenantID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		log.Error("Failed to delete note", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete note"})
	}

	log.Info("Note deleted",
		zap.Uint("note_id", id),
		zap.Uint("tenant_id", principal.TenantID))
	return c.NoContent(http.StatusNoContent)
}

func parseNoteID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
