// Directory HTTP handlers.
//
// This file exposes the merged staff directory and its derived lookups:
//   - GET /api/profesores              (merged teacher directory)
//   - GET /api/grupos                  (group list, with built-in fallback)
//   - GET /api/profesores-disponibles  (teachers free to cover a period)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jotasones/guardias-backend/internal/services"
	"github.com/jotasones/guardias-backend/internal/utils"
)

// Teachers returns the merged teacher directory: the local table first,
// then every remote feed, deduplicated by full name.
func (h *Handlers) Teachers(c *gin.Context) {
	profiles, err := h.dirSvc.Teachers(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, profiles)
}

// Groups returns the group list.
func (h *Handlers) Groups(c *gin.Context) {
	groups, err := h.dirSvc.Groups(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, groups)
}

// AvailableTeachers returns the teachers free to cover the given period on
// the given date: present (not absent) and not already covering a guardia.
func (h *Handlers) AvailableTeachers(c *gin.Context) {
	fecha := fechaOrToday(c)
	hora := utils.AtoiDefault(c.Query("hora"), 0)

	teachers, err := h.absenceSvc.AvailableTeachers(c.Request.Context(), fecha, hora)
	switch {
	case errors.Is(err, services.ErrInvalidDate), errors.Is(err, services.ErrInvalidPeriod):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
	default:
		ok(c, http.StatusOK, teachers)
	}
}
