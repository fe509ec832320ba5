// Panel HTTP handler.
//
// This file exposes the aggregated coverage panel:
//   - GET /api/panel?fecha=YYYY-MM-DD
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jotasones/guardias-backend/internal/domain"
	"github.com/jotasones/guardias-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// PanelService builds the merged coverage panel for a date.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PanelService interface {
	Panel(ctx context.Context, date string) (*services.PanelResponse, error)
}

// AbsenceService defines the absence and assignment lifecycle operations
// consumed by HTTP handlers.
type AbsenceService interface {
	// Create validates and stores a new absence.
	Create(ctx context.Context, in services.CreateAbsenceInput) (domain.Absence, error)
	// Delete removes an absence and its assignments.
	Delete(ctx context.Context, id string) error
	// Assign stores a cover assignment.
	Assign(ctx context.Context, absenceID, teacher string, period int, date string) (domain.Assignment, error)
	// Unassign removes a cover assignment.
	Unassign(ctx context.Context, assignmentID string) error
	// AvailableTeachers lists teachers free to cover a period on a date.
	AvailableTeachers(ctx context.Context, date string, period int) ([]domain.Teacher, error)
}

// DirectoryService serves the merged staff directory and the group list.
type DirectoryService interface {
	Teachers(ctx context.Context) ([]domain.TeacherProfile, error)
	Groups(ctx context.Context) ([]domain.Group, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the guardias API. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	panelSvc   PanelService
	absenceSvc AbsenceService
	dirSvc     DirectoryService
	idem       IdempotencyRecorder
}

// IdempotencyRecorder persists a completed write under its idempotency key
// so later retries can be detected as replays.
type IdempotencyRecorder interface {
	Record(ctx context.Context, key, date, absenceID string) error
}

// New constructs a Handlers instance bound to the given services.
func New(panelSvc PanelService, absenceSvc AbsenceService, dirSvc DirectoryService) *Handlers {
	return &Handlers{panelSvc: panelSvc, absenceSvc: absenceSvc, dirSvc: dirSvc}
}

// WithIdempotency enables idempotency recording for the write endpoints.
// Without it, Idempotency-Key headers are validated but never recorded.
func (h *Handlers) WithIdempotency(rec IdempotencyRecorder) *Handlers {
	h.idem = rec
	return h
}

// fechaOrToday returns the fecha query parameter, defaulting to today.
func fechaOrToday(c *gin.Context) string {
	if f := strings.TrimSpace(c.Query("fecha")); f != "" {
		return f
	}
	return time.Now().Format("2006-01-02")
}

// Panel returns the merged coverage panel for a date: the absences from
// every source, a per-source summary, and the stored cover assignments.
func (h *Handlers) Panel(c *gin.Context) {
	resp, err := h.panelSvc.Panel(c.Request.Context(), fechaOrToday(c))
	switch {
	case errors.Is(err, services.ErrInvalidDate):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodePanelFailed, err.Error())
	default:
		ok(c, http.StatusOK, resp)
	}
}
