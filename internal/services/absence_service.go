// Package services – AbsenceService
//
// This file implements the absence and cover-assignment lifecycle on top of
// the injected store, plus the available-teachers lookup that backs the
// assignment picker in the staff room UI.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/jotasones/guardias-backend/internal/domain"
	"github.com/jotasones/guardias-backend/internal/repo"
	"github.com/jotasones/guardias-backend/internal/store"
)

// AbsenceService validates and executes absence and assignment operations.
type AbsenceService struct {
	// Store holds the absence and assignment records.
	Store store.Store
	// DB is the optional directory handle for the available-teachers
	// lookup; nil yields empty availability.
	DB *gorm.DB
}

// NewAbsenceService constructs an AbsenceService. db may be nil.
func NewAbsenceService(st store.Store, db *gorm.DB) *AbsenceService {
	return &AbsenceService{Store: st, DB: db}
}

// CreateAbsenceInput carries a new absence request. Task, Date, and
// PeriodEnd are optional; the store applies their defaults.
type CreateAbsenceInput struct {
	Teacher     string
	Group       string
	PeriodStart int
	PeriodEnd   int
	Task        string
	Date        string
}

// Create validates and stores a new absence.
func (s *AbsenceService) Create(ctx context.Context, in CreateAbsenceInput) (domain.Absence, error) {
	in.Teacher = strings.TrimSpace(in.Teacher)
	in.Group = strings.TrimSpace(in.Group)
	switch {
	case in.Teacher == "":
		return domain.Absence{}, ErrMissingTeacher
	case in.Group == "":
		return domain.Absence{}, ErrMissingGroup
	case in.PeriodStart < 1:
		return domain.Absence{}, ErrInvalidPeriod
	case in.PeriodEnd != 0 && in.PeriodEnd < in.PeriodStart:
		return domain.Absence{}, ErrInvalidPeriod
	}
	if in.Date != "" {
		if _, err := time.Parse("2006-01-02", in.Date); err != nil {
			return domain.Absence{}, ErrInvalidDate
		}
	}
	return s.Store.Create(ctx, store.CreateInput{
		Teacher:     in.Teacher,
		Group:       in.Group,
		PeriodStart: in.PeriodStart,
		PeriodEnd:   in.PeriodEnd,
		Task:        strings.TrimSpace(in.Task),
		Date:        in.Date,
	})
}

// Delete removes an absence and its assignments. Returns
// ErrAbsenceNotFound when the id does not exist.
func (s *AbsenceService) Delete(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, strings.TrimSpace(id))
}

// Assign validates and stores a cover assignment. The absence id is not
// checked for existence; an assignment to an unknown id is kept and simply
// never marks a panel record.
func (s *AbsenceService) Assign(ctx context.Context, absenceID, teacher string, period int, date string) (domain.Assignment, error) {
	absenceID = strings.TrimSpace(absenceID)
	teacher = strings.TrimSpace(teacher)
	switch {
	case absenceID == "":
		return domain.Assignment{}, ErrMissingAbsence
	case teacher == "":
		return domain.Assignment{}, ErrMissingTeacher
	case period < 1:
		return domain.Assignment{}, ErrInvalidPeriod
	}
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return domain.Assignment{}, ErrInvalidDate
	}
	return s.Store.Assign(ctx, absenceID, teacher, period, date)
}

// Unassign removes a cover assignment by id.
func (s *AbsenceService) Unassign(ctx context.Context, assignmentID string) error {
	return s.Store.Unassign(ctx, strings.TrimSpace(assignmentID))
}

// AvailableTeachers returns the directory teachers who are neither absent
// during the given period nor already covering one on that date. Without a
// backing store there is no directory to draw from, so the result is empty.
func (s *AbsenceService) AvailableTeachers(ctx context.Context, date string, period int) ([]domain.Teacher, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrInvalidDate
	}
	if period < 1 {
		return nil, ErrInvalidPeriod
	}
	if s.DB == nil {
		return []domain.Teacher{}, nil
	}

	// A broken lookup degrades to "nobody available" rather than an error;
	// the picker stays usable while the directory recovers.
	teachers, err := repo.ListTeachers(ctx, s.DB)
	if err != nil {
		log.Warn().Err(err).Str("fecha", date).Msg("available teachers: directory lookup failed")
		return []domain.Teacher{}, nil
	}
	absences, err := s.Store.ListByDate(ctx, date)
	if err != nil {
		log.Warn().Err(err).Str("fecha", date).Msg("available teachers: absence lookup failed")
		return []domain.Teacher{}, nil
	}
	assignments, err := s.Store.AssignmentsByDate(ctx, date)
	if err != nil {
		log.Warn().Err(err).Str("fecha", date).Msg("available teachers: assignment lookup failed")
		return []domain.Teacher{}, nil
	}

	fold := cases.Lower(language.Spanish)
	busy := make(map[string]struct{})
	for _, a := range absences {
		if a.PeriodStart <= period && period <= a.PeriodEnd {
			busy[fold.String(strings.TrimSpace(a.Teacher))] = struct{}{}
		}
	}
	for _, g := range assignments {
		if g.Period == period {
			busy[fold.String(strings.TrimSpace(g.Teacher))] = struct{}{}
		}
	}

	out := []domain.Teacher{}
	for _, t := range teachers {
		if _, taken := busy[fold.String(strings.TrimSpace(t.FullName()))]; !taken {
			out = append(out, t)
		}
	}
	return out, nil
}
