// Absence HTTP handlers.
//
// This file exposes the absence lifecycle:
//   - POST   /api/ausencias      (create)
//   - DELETE /api/ausencias/:id  (delete, cascades to assignments)
//
// These write endpoints answer with the {ok, ...} envelope the staff room
// frontends consume.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jotasones/guardias-backend/internal/domain"
	"github.com/jotasones/guardias-backend/internal/http/middleware"
	"github.com/jotasones/guardias-backend/internal/services"
)

// CreateAbsenceRequest is the JSON payload for reporting an absence.
// tarea, fecha, and hora_fin are optional; hora_fin defaults to hora_inicio,
// fecha to today, and tarea to a fixed placeholder.
type CreateAbsenceRequest struct {
	Teacher     string `json:"profesor"`
	Group       string `json:"grupo"`
	PeriodStart int    `json:"hora_inicio"`
	PeriodEnd   int    `json:"hora_fin"`
	Task        string `json:"tarea"`
	Date        string `json:"fecha"`
}

// CreateAbsenceResponse wraps a newly stored absence.
type CreateAbsenceResponse struct {
	OK      bool           `json:"ok"`
	Absence domain.Absence `json:"ausencia"`
}

// CreateAbsence stores a new locally reported absence. When the request
// carries an Idempotency-Key already recorded for the same date, the write
// is skipped and the response marked as a replay.
func (h *Handlers) CreateAbsence(c *gin.Context) {
	if middleware.IsReplay(c) {
		c.Header("Idempotency-Replayed", "true")
		ok(c, http.StatusOK, StatusResponse{OK: true})
		return
	}

	var req CreateAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failStatus(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	a, err := h.absenceSvc.Create(c.Request.Context(), services.CreateAbsenceInput{
		Teacher:     req.Teacher,
		Group:       req.Group,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Task:        req.Task,
		Date:        req.Date,
	})
	switch {
	case isValidationError(err):
		failStatus(c, http.StatusBadRequest, err.Error())
	case err != nil:
		failStatus(c, http.StatusInternalServerError, err.Error())
	default:
		h.recordIdempotency(c, a.ID)
		ok(c, http.StatusCreated, CreateAbsenceResponse{OK: true, Absence: a})
	}
}

// recordIdempotency stores the request's idempotency key, if any, against
// the created absence. Failures are logged and otherwise ignored; the write
// already succeeded.
func (h *Handlers) recordIdempotency(c *gin.Context, absenceID string) {
	if h.idem == nil {
		return
	}
	key, present := middleware.GetIdempotencyKey(c)
	if !present {
		return
	}
	date := middleware.IdempotencyDate(c)
	if err := h.idem.Record(c.Request.Context(), key, date, absenceID); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record failed")
	}
}

// DeleteAbsence removes an absence and all assignments covering it.
func (h *Handlers) DeleteAbsence(c *gin.Context) {
	err := h.absenceSvc.Delete(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, services.ErrAbsenceNotFound):
		failStatus(c, http.StatusNotFound, err.Error())
	case err != nil:
		failStatus(c, http.StatusInternalServerError, err.Error())
	default:
		ok(c, http.StatusOK, StatusResponse{OK: true})
	}
}

// isValidationError reports whether err is one of the request validation
// sentinels, as opposed to a storage failure.
func isValidationError(err error) bool {
	return errors.Is(err, services.ErrInvalidDate) ||
		errors.Is(err, services.ErrMissingTeacher) ||
		errors.Is(err, services.ErrMissingGroup) ||
		errors.Is(err, services.ErrMissingAbsence) ||
		errors.Is(err, services.ErrInvalidPeriod)
}
