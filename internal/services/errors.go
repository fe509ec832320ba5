// Package services implements the business logic of the guardias tracker:
// panel aggregation, the absence and assignment lifecycle, and the merged
// staff directory. This file centralizes common service-level error values
// so they can be consistently returned by service methods and checked by
// callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"

	"github.com/jotasones/guardias-backend/internal/store"
)

var (
	// ErrInvalidDate is returned when a fecha value is not a YYYY-MM-DD date.
	ErrInvalidDate = errors.New("fecha must be a YYYY-MM-DD date")

	// ErrMissingTeacher is returned when an absence or assignment names no
	// teacher.
	ErrMissingTeacher = errors.New("profesor is required")

	// ErrMissingGroup is returned when an absence names no group.
	ErrMissingGroup = errors.New("grupo is required")

	// ErrInvalidPeriod is returned when a class period is missing, below 1,
	// or the period range is inverted.
	ErrInvalidPeriod = errors.New("hora must be a period number >= 1")

	// ErrMissingAbsence is returned when an assignment references no
	// absence id.
	ErrMissingAbsence = errors.New("ausencia_id is required")

	// ErrAbsenceNotFound indicates the requested absence does not exist in
	// the local store. Aliased from the store so handlers need a single
	// import to classify errors.
	ErrAbsenceNotFound = store.ErrAbsenceNotFound

	// ErrAssignmentNotFound indicates the requested cover assignment does
	// not exist in the local store.
	ErrAssignmentNotFound = store.ErrAssignmentNotFound
)
