// Package store holds locally created absences and cover assignments behind
// an injected Store interface. Two implementations exist: an in-memory store
// that lives for the process lifetime, and a GORM/SQLite-backed store for
// deployments that want the rows to survive restarts. Handlers and the panel
// aggregator only ever see the interface, so tests swap in whichever is
// convenient.
package store

import (
	"context"
	"errors"

	"github.com/jotasones/guardias-backend/internal/domain"
)

// DefaultTask is stored when an absence is created without one.
const DefaultTask = "Sin tarea asignada"

var (
	// ErrAbsenceNotFound is returned by Delete for an unknown absence id.
	ErrAbsenceNotFound = errors.New("ausencia no encontrada")

	// ErrAssignmentNotFound is returned by Unassign for an unknown assignment id.
	ErrAssignmentNotFound = errors.New("guardia no encontrada")
)

// CreateInput carries the fields of a new local absence. Zero values get
// defaults on create: PeriodEnd falls back to PeriodStart, Date to today,
// Task to DefaultTask.
type CreateInput struct {
	Teacher     string
	Group       string
	PeriodStart int
	PeriodEnd   int
	Task        string
	Date        string
}

// Store is the register of locally created absences and assignments.
//
// Assign deliberately does not check that absenceID exists: an assignment may
// dangle (reference a deleted or never-existing absence) and is then simply
// never matched during panel reconciliation. Delete cascades to all
// assignments referencing the removed absence.
type Store interface {
	Create(ctx context.Context, in CreateInput) (domain.Absence, error)
	Delete(ctx context.Context, id string) error
	ListByDate(ctx context.Context, date string) ([]domain.Absence, error)
	Assign(ctx context.Context, absenceID, teacher string, period int, date string) (domain.Assignment, error)
	Unassign(ctx context.Context, assignmentID string) error
	AssignmentsByDate(ctx context.Context, date string) ([]domain.Assignment, error)
}
