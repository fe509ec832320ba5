// Assignment HTTP handlers.
//
// This file exposes the cover assignment (guardia) lifecycle:
//   - POST   /api/guardias      (assign a cover teacher)
//   - DELETE /api/guardias/:id  (release a cover assignment)
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jotasones/guardias-backend/internal/domain"
	"github.com/jotasones/guardias-backend/internal/services"
)

// flexID decodes an id sent as either a JSON string or a number. The systems
// feeding the panel disagree on the representation, so both are accepted.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexID(n.String())
		return nil
	}
	return errors.New("ausencia_id must be a string or a number")
}

// CreateAssignmentRequest is the JSON payload for assigning a cover teacher
// to an absence. fecha defaults to today.
type CreateAssignmentRequest struct {
	AbsenceID flexID `json:"ausencia_id"`
	Teacher   string `json:"profesor_nombre"`
	Period    int    `json:"hora"`
	Date      string `json:"fecha"`
}

// CreateAssignmentResponse wraps a newly stored assignment.
type CreateAssignmentResponse struct {
	OK         bool              `json:"ok"`
	Assignment domain.Assignment `json:"guardia"`
}

// CreateAssignment stores a cover assignment. The referenced absence is not
// checked for existence; assignments to external or vanished records are kept
// and surface on the panel only when their id matches a merged record.
func (h *Handlers) CreateAssignment(c *gin.Context) {
	var req CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failStatus(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	g, err := h.absenceSvc.Assign(c.Request.Context(), string(req.AbsenceID), req.Teacher, req.Period, req.Date)
	switch {
	case isValidationError(err):
		failStatus(c, http.StatusBadRequest, err.Error())
	case err != nil:
		failStatus(c, http.StatusInternalServerError, err.Error())
	default:
		ok(c, http.StatusCreated, CreateAssignmentResponse{OK: true, Assignment: g})
	}
}

// DeleteAssignment releases a cover assignment. Deleting an id that no
// longer exists still answers ok; the release is idempotent.
func (h *Handlers) DeleteAssignment(c *gin.Context) {
	err := h.absenceSvc.Unassign(c.Request.Context(), c.Param("id"))
	if err != nil && !isNotFound(err) {
		failStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, http.StatusOK, StatusResponse{OK: true})
}

// isNotFound reports whether err is one of the not-found sentinels.
func isNotFound(err error) bool {
	return errors.Is(err, services.ErrAbsenceNotFound) ||
		errors.Is(err, services.ErrAssignmentNotFound)
}
