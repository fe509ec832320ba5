package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jotasones/guardias-backend/internal/domain"
	"github.com/jotasones/guardias-backend/internal/repo"
)

// GormStore persists absences and assignments through the SQLite backing
// store, so they survive process restarts. The id sequence is seeded from
// the highest persisted id on construction.
type GormStore struct {
	db         *gorm.DB
	replicator Replicator

	mu  sync.Mutex
	seq int
	now func() time.Time
}

// NewGormStore builds a store over an already migrated database. replicator
// may be nil.
func NewGormStore(db *gorm.DB, replicator Replicator) (*GormStore, error) {
	s := &GormStore{db: db, replicator: replicator, seq: idSeqStart, now: time.Now}

	// Continue the local-<n> sequence across restarts.
	var last string
	err := db.Model(&domain.Absence{}).
		Select("id").
		Where("id LIKE ?", "local-%").
		Order("length(id) desc, id desc").
		Limit(1).
		Scan(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if last != "" {
		var n int
		if _, err := fmt.Sscanf(last, "local-%d", &n); err == nil && n >= s.seq {
			s.seq = n + 1
		}
	}
	return s, nil
}

// Create persists a new absence, applying CreateInput defaults, and kicks
// off best-effort replication.
func (s *GormStore) Create(ctx context.Context, in CreateInput) (domain.Absence, error) {
	s.mu.Lock()
	id := fmt.Sprintf("local-%d", s.seq)
	s.seq++
	s.mu.Unlock()

	a := domain.Absence{
		ID:          id,
		Teacher:     in.Teacher,
		Group:       in.Group,
		PeriodStart: in.PeriodStart,
		PeriodEnd:   in.PeriodEnd,
		Task:        in.Task,
		Date:        in.Date,
		CreatedAt:   s.now().UTC(),
	}
	applyDefaults(&a, s.now)

	if err := repo.InsertAbsence(ctx, s.db, &a); err != nil {
		return domain.Absence{}, err
	}
	fireAndForget(s.replicator, a)
	return a, nil
}

// Delete removes an absence and cascades to its assignments.
func (s *GormStore) Delete(ctx context.Context, id string) error {
	err := repo.DeleteAbsence(ctx, s.db, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrAbsenceNotFound
	}
	return err
}

// ListByDate returns the absences persisted for a date in creation order.
func (s *GormStore) ListByDate(ctx context.Context, date string) ([]domain.Absence, error) {
	return repo.ListAbsencesByDate(ctx, s.db, date)
}

// Assign persists a cover assignment. The absence id is not validated.
func (s *GormStore) Assign(ctx context.Context, absenceID, teacher string, period int, date string) (domain.Assignment, error) {
	g := domain.Assignment{
		ID:        uuid.NewString(),
		AbsenceID: absenceID,
		Teacher:   teacher,
		Period:    period,
		Date:      date,
		CreatedAt: s.now().UTC(),
	}
	if err := repo.InsertAssignment(ctx, s.db, &g); err != nil {
		return domain.Assignment{}, err
	}
	return g, nil
}

// Unassign removes one assignment by id.
func (s *GormStore) Unassign(ctx context.Context, assignmentID string) error {
	err := repo.DeleteAssignment(ctx, s.db, assignmentID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrAssignmentNotFound
	}
	return err
}

// AssignmentsByDate returns the assignments persisted for a date.
func (s *GormStore) AssignmentsByDate(ctx context.Context, date string) ([]domain.Assignment, error) {
	return repo.ListAssignmentsByDate(ctx, s.db, date)
}
