package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jotasones/guardias-backend/internal/domain"
	"github.com/jotasones/guardias-backend/internal/sources"
	"github.com/jotasones/guardias-backend/internal/store"
)

// fakeAdapter serves canned records, optionally panicking instead.
type fakeAdapter struct {
	src     domain.Source
	records []domain.AbsenceRecord
	panics  bool
}

func (f *fakeAdapter) Source() domain.Source { return f.src }

func (f *fakeAdapter) Fetch(ctx context.Context, date, dayName string) []domain.AbsenceRecord {
	if f.panics {
		panic("adapter exploded")
	}
	return f.records
}

// failingStore wraps a working store but fails the assignment lookup.
type failingStore struct {
	store.Store
}

func (f *failingStore) AssignmentsByDate(ctx context.Context, date string) ([]domain.Assignment, error) {
	return nil, errors.New("db gone")
}

func rec(id string, src domain.Source, teacher string) domain.AbsenceRecord {
	return domain.AbsenceRecord{ID: id, Source: src, Teacher: teacher, External: src != domain.SourceLocal}
}

func TestPanel_MergesInPrecedenceOrder(t *testing.T) {
	st := store.NewMemoryStore(nil)
	svc := NewPanelService(st,
		&fakeAdapter{src: domain.SourceLocal, records: []domain.AbsenceRecord{rec("local-1000", domain.SourceLocal, "Ana")}},
		&fakeAdapter{src: domain.SourceRemote, records: []domain.AbsenceRecord{rec("m-1", domain.SourceRemote, "Marta"), rec("m-2", domain.SourceRemote, "Pedro")}},
		&fakeAdapter{src: domain.SourceScript, records: []domain.AbsenceRecord{rec("c-1", domain.SourceScript, "Elena")}},
		&fakeAdapter{src: domain.SourceCSV, records: []domain.AbsenceRecord{rec("d-1", domain.SourceCSV, "Juan")}},
	)

	resp, err := svc.Panel(context.Background(), "2024-05-10")
	if err != nil {
		t.Fatalf("Panel: %v", err)
	}

	wantIDs := []string{"local-1000", "m-1", "m-2", "c-1", "d-1"}
	if len(resp.Absences) != len(wantIDs) {
		t.Fatalf("got %d records; want %d", len(resp.Absences), len(wantIDs))
	}
	for i, id := range wantIDs {
		if resp.Absences[i].ID != id {
			t.Fatalf("position %d = %q; want %q (precedence broken)", i, resp.Absences[i].ID, id)
		}
	}
	sum := resp.Summary
	if sum.Local != 1 || sum.Remote != 2 || sum.Script != 1 || sum.CSV != 1 || sum.Total != 5 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestPanel_InvalidDate(t *testing.T) {
	svc := NewPanelService(store.NewMemoryStore(nil))
	if _, err := svc.Panel(context.Background(), "10/05/2024"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestPanel_AllSourcesFailingYieldsEmptyPanel(t *testing.T) {
	st := store.NewMemoryStore(nil)
	svc := NewPanelService(st,
		&fakeAdapter{src: domain.SourceLocal},
		&fakeAdapter{src: domain.SourceRemote, panics: true},
		&fakeAdapter{src: domain.SourceScript},
	)

	resp, err := svc.Panel(context.Background(), "2024-05-10")
	if err != nil {
		t.Fatalf("failing sources must not fail the panel: %v", err)
	}
	if resp.Absences == nil || len(resp.Absences) != 0 {
		t.Fatalf("want empty non-nil ausencias, got %#v", resp.Absences)
	}
	if resp.Assignments == nil || len(resp.Assignments) != 0 {
		t.Fatalf("want empty non-nil guardias, got %#v", resp.Assignments)
	}
	if resp.Summary.Total != 0 {
		t.Fatalf("summary = %+v", resp.Summary)
	}
}

func TestPanel_PanickingAdapterContributesNothing(t *testing.T) {
	st := store.NewMemoryStore(nil)
	svc := NewPanelService(st,
		&fakeAdapter{src: domain.SourceRemote, panics: true},
		&fakeAdapter{src: domain.SourceCSV, records: []domain.AbsenceRecord{rec("d-1", domain.SourceCSV, "Juan")}},
	)

	resp, err := svc.Panel(context.Background(), "2024-05-10")
	if err != nil {
		t.Fatalf("Panel: %v", err)
	}
	if len(resp.Absences) != 1 || resp.Absences[0].ID != "d-1" {
		t.Fatalf("got %+v", resp.Absences)
	}
	if resp.Summary.Remote != 0 || resp.Summary.Total != 1 {
		t.Fatalf("summary = %+v", resp.Summary)
	}
}

func TestPanel_ReconciliationMarksMatchedRecords(t *testing.T) {
	st := store.NewMemoryStore(nil)
	a, _ := st.Create(context.Background(), store.CreateInput{Teacher: "Ana", Group: "1ºA", PeriodStart: 2, Date: "2024-05-10"})
	g, _ := st.Assign(context.Background(), a.ID, "Carlos Sánchez", 2, "2024-05-10")
	// Orphaned assignment: references an id no source produced.
	st.Assign(context.Background(), "ghost-1", "Eva", 3, "2024-05-10")

	svc := NewPanelService(st,
		sources.NewLocalAdapter(st),
		&fakeAdapter{src: domain.SourceRemote, records: []domain.AbsenceRecord{rec("m-1", domain.SourceRemote, "Marta")}},
	)
	resp, err := svc.Panel(context.Background(), "2024-05-10")
	if err != nil {
		t.Fatalf("Panel: %v", err)
	}

	if len(resp.Absences) != 2 {
		t.Fatalf("got %d records", len(resp.Absences))
	}
	matched := resp.Absences[0]
	if matched.CoverTeacher == nil || *matched.CoverTeacher != "Carlos Sánchez" {
		t.Fatalf("local record not reconciled: %+v", matched)
	}
	if matched.CoverID == nil || *matched.CoverID != g.ID {
		t.Fatalf("guardia_id not set: %+v", matched)
	}
	if resp.Absences[1].CoverTeacher != nil {
		t.Fatalf("unmatched record must stay unmarked: %+v", resp.Absences[1])
	}
	// The orphan stays in the assignment list.
	if len(resp.Assignments) != 2 {
		t.Fatalf("orphaned assignment dropped: %+v", resp.Assignments)
	}
}

func TestPanel_MergeFailureIsAnError(t *testing.T) {
	st := &failingStore{Store: store.NewMemoryStore(nil)}
	svc := NewPanelService(st, &fakeAdapter{src: domain.SourceLocal})
	if _, err := svc.Panel(context.Background(), "2024-05-10"); err == nil {
		t.Fatalf("assignment lookup failure must surface")
	}
}

func TestWeekdayName(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2024-05-06", "Lunes"},
		{"2024-05-08", "Miércoles"},
		{"2024-05-11", "Sábado"},
		{"2024-05-12", "Domingo"},
	}
	for _, c := range cases {
		got, err := WeekdayName(c.date)
		if err != nil || got != c.want {
			t.Fatalf("WeekdayName(%s) = %q, %v; want %q", c.date, got, err, c.want)
		}
	}
	if _, err := WeekdayName("not-a-date"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate")
	}
}
