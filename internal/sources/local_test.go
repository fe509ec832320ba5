package sources

import (
	"context"
	"errors"
	"testing"

	"github.com/jotasones/guardias-backend/internal/domain"
	"github.com/jotasones/guardias-backend/internal/store"
)

// listStore stubs the store for the local adapter; only ListByDate matters.
type listStore struct {
	absences []domain.Absence
	err      error
}

func (s *listStore) Create(ctx context.Context, in store.CreateInput) (domain.Absence, error) {
	return domain.Absence{}, errors.New("not implemented")
}
func (s *listStore) Delete(ctx context.Context, id string) error { return errors.New("not implemented") }
func (s *listStore) ListByDate(ctx context.Context, date string) ([]domain.Absence, error) {
	return s.absences, s.err
}
func (s *listStore) Assign(ctx context.Context, absenceID, teacher string, period int, date string) (domain.Assignment, error) {
	return domain.Assignment{}, errors.New("not implemented")
}
func (s *listStore) Unassign(ctx context.Context, assignmentID string) error {
	return errors.New("not implemented")
}
func (s *listStore) AssignmentsByDate(ctx context.Context, date string) ([]domain.Assignment, error) {
	return nil, errors.New("not implemented")
}

func TestLocalAdapter_Fetch(t *testing.T) {
	a := NewLocalAdapter(&listStore{absences: []domain.Absence{
		{ID: "local-1000", Teacher: "Ana Martín", Group: "1ºA", PeriodStart: 2, PeriodEnd: 3, Task: "Ejercicios", Date: "2024-05-10"},
	}})

	got := a.Fetch(context.Background(), "2024-05-10", "Viernes")
	if len(got) != 1 {
		t.Fatalf("got %d records", len(got))
	}
	r := got[0]
	if r.ID != "local-1000" || r.Source != domain.SourceLocal || r.External {
		t.Fatalf("local record misnormalized: %+v", r)
	}
	if r.Teacher != "Ana Martín" || r.PeriodEnd != 3 || r.Date != "2024-05-10" {
		t.Fatalf("fields lost in conversion: %+v", r)
	}
}

func TestLocalAdapter_StoreErrorYieldsEmpty(t *testing.T) {
	a := NewLocalAdapter(&listStore{err: errors.New("db gone")})
	if got := a.Fetch(context.Background(), "2024-05-10", "Viernes"); len(got) != 0 {
		t.Fatalf("expected no records on store error, got %+v", got)
	}
}
