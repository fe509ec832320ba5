package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jotasones/guardias-backend/internal/domain"
)

// idSeqStart is the first synthetic absence id, so the first created record
// is "local-1000".
const idSeqStart = 1000

// MemoryStore keeps absences and assignments in process memory. Records live
// until the process exits. All methods are safe for concurrent use; writes
// are applied in arrival order with no further isolation, which is fine for
// the low write concurrency of a single staff room.
type MemoryStore struct {
	mu          sync.Mutex
	seq         int
	absences    []domain.Absence
	assignments []domain.Assignment

	replicator Replicator
	now        func() time.Time
}

// NewMemoryStore returns an empty store. replicator may be nil to disable
// write replication.
func NewMemoryStore(replicator Replicator) *MemoryStore {
	return &MemoryStore{
		seq:        idSeqStart,
		replicator: replicator,
		now:        time.Now,
	}
}

// Create registers a new absence, applying CreateInput defaults, and kicks
// off best-effort replication. The local record is returned regardless of
// the replication outcome.
func (s *MemoryStore) Create(ctx context.Context, in CreateInput) (domain.Absence, error) {
	s.mu.Lock()
	a := domain.Absence{
		ID:          fmt.Sprintf("local-%d", s.seq),
		Teacher:     in.Teacher,
		Group:       in.Group,
		PeriodStart: in.PeriodStart,
		PeriodEnd:   in.PeriodEnd,
		Task:        in.Task,
		Date:        in.Date,
		CreatedAt:   s.now().UTC(),
	}
	s.seq++
	applyDefaults(&a, s.now)
	s.absences = append(s.absences, a)
	s.mu.Unlock()

	fireAndForget(s.replicator, a)
	return a, nil
}

// Delete removes an absence and every assignment referencing it.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, a := range s.absences {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrAbsenceNotFound
	}
	s.absences = append(s.absences[:idx], s.absences[idx+1:]...)

	kept := s.assignments[:0]
	for _, g := range s.assignments {
		if g.AbsenceID != id {
			kept = append(kept, g)
		}
	}
	s.assignments = kept
	return nil
}

// ListByDate returns the absences stored for a date in creation order.
func (s *MemoryStore) ListByDate(ctx context.Context, date string) ([]domain.Absence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Absence
	for _, a := range s.absences {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return out, nil
}

// Assign appends a cover assignment. The absence id is not validated.
func (s *MemoryStore) Assign(ctx context.Context, absenceID, teacher string, period int, date string) (domain.Assignment, error) {
	g := domain.Assignment{
		ID:        uuid.NewString(),
		AbsenceID: absenceID,
		Teacher:   teacher,
		Period:    period,
		Date:      date,
		CreatedAt: s.now().UTC(),
	}
	s.mu.Lock()
	s.assignments = append(s.assignments, g)
	s.mu.Unlock()
	return g, nil
}

// Unassign removes one assignment by id.
func (s *MemoryStore) Unassign(ctx context.Context, assignmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, g := range s.assignments {
		if g.ID == assignmentID {
			s.assignments = append(s.assignments[:i], s.assignments[i+1:]...)
			return nil
		}
	}
	return ErrAssignmentNotFound
}

// AssignmentsByDate returns the assignments stored for a date in creation order.
func (s *MemoryStore) AssignmentsByDate(ctx context.Context, date string) ([]domain.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Assignment
	for _, g := range s.assignments {
		if g.Date == date {
			out = append(out, g)
		}
	}
	return out, nil
}

// applyDefaults fills the optional absence fields in place.
func applyDefaults(a *domain.Absence, now func() time.Time) {
	if a.PeriodEnd == 0 {
		a.PeriodEnd = a.PeriodStart
	}
	if a.Date == "" {
		a.Date = now().Format("2006-01-02")
	}
	if a.Task == "" {
		a.Task = DefaultTask
	}
}
