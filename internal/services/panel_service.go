// Package services – PanelService
//
// This file implements the coverage panel aggregation. The panel fans out to
// every configured source adapter concurrently, concatenates their results in
// a fixed precedence order, and reconciles the stored cover assignments onto
// the merged records. Source failures never fail the panel; a source that
// errors, times out, or panics simply contributes nothing. Only a failure of
// the merge step itself (the assignment lookup) is an error.
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jotasones/guardias-backend/internal/domain"
	"github.com/jotasones/guardias-backend/internal/sources"
	"github.com/jotasones/guardias-backend/internal/store"
)

// panelBuilds counts panel aggregations by outcome: "ok" or "merge_error"
// (the assignment lookup failed).
var panelBuilds = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "panel_builds_total",
		Help: "Total number of panel aggregations, by outcome.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(panelBuilds)
}

// spanishDays maps time.Weekday (Sunday = 0) to the Spanish day names the
// upstream feeds filter on.
var spanishDays = [...]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}

// WeekdayName derives the Spanish weekday name from a YYYY-MM-DD date.
func WeekdayName(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", ErrInvalidDate
	}
	return spanishDays[t.Weekday()], nil
}

// PanelSummary counts the merged records per source.
type PanelSummary struct {
	Local  int `json:"local"`
	Remote int `json:"remota"`
	Script int `json:"script"`
	CSV    int `json:"csv"`
	Total  int `json:"total"`
}

func (s *PanelSummary) add(src domain.Source) {
	switch src {
	case domain.SourceLocal:
		s.Local++
	case domain.SourceRemote:
		s.Remote++
	case domain.SourceScript:
		s.Script++
	case domain.SourceCSV:
		s.CSV++
	}
	s.Total++
}

// PanelResponse is the merged panel for one date.
type PanelResponse struct {
	Absences    []domain.AbsenceRecord `json:"ausencias"`
	Summary     PanelSummary           `json:"resumen"`
	Assignments []domain.Assignment    `json:"guardias_asignadas"`
}

// PanelService aggregates absence records from every configured source and
// reconciles stored cover assignments onto them.
type PanelService struct {
	// Adapters are queried concurrently; their results are concatenated in
	// slice order, so construction order fixes the panel precedence.
	Adapters []sources.Adapter
	// Store resolves the cover assignments for the reconciliation pass.
	Store store.Store
}

// NewPanelService constructs a PanelService over the given adapters, in
// precedence order.
func NewPanelService(st store.Store, adapters ...sources.Adapter) *PanelService {
	return &PanelService{Adapters: adapters, Store: st}
}

// Panel builds the merged panel for a date. date must be YYYY-MM-DD.
func (s *PanelService) Panel(ctx context.Context, date string) (*PanelResponse, error) {
	tr := otel.Tracer("services/PanelService")
	ctx, span := tr.Start(ctx, "Panel",
		trace.WithAttributes(attribute.String("panel.fecha", date)))
	defer span.End()

	dayName, err := WeekdayName(date)
	if err != nil {
		return nil, err
	}

	// Fan out. Each adapter writes only its own slot, so no further
	// synchronization is needed beyond the WaitGroup.
	results := make([][]domain.AbsenceRecord, len(s.Adapters))
	var wg sync.WaitGroup
	for i, ad := range s.Adapters {
		wg.Add(1)
		go func(i int, ad sources.Adapter) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Warn().
						Str("source", string(ad.Source())).
						Str("panic", fmt.Sprint(r)).
						Msg("panel source panicked")
					results[i] = nil
				}
			}()
			results[i] = ad.Fetch(ctx, date, dayName)
		}(i, ad)
	}
	wg.Wait()

	resp := &PanelResponse{
		Absences:    []domain.AbsenceRecord{},
		Assignments: []domain.Assignment{},
	}
	for _, recs := range results {
		for _, r := range recs {
			resp.Summary.add(r.Source)
			resp.Absences = append(resp.Absences, r)
		}
	}

	assignments, err := s.Store.AssignmentsByDate(ctx, date)
	if err != nil {
		panelBuilds.WithLabelValues("merge_error").Inc()
		return nil, err
	}
	if assignments != nil {
		resp.Assignments = assignments
	}
	reconcile(resp.Absences, assignments)

	span.SetAttributes(attribute.Int("panel.total", resp.Summary.Total))
	panelBuilds.WithLabelValues("ok").Inc()
	return resp, nil
}

// reconcile marks each record whose id matches an assignment's absence id.
// Ids are compared after trimming surrounding whitespace. Assignments whose
// absence id matches nothing are kept in the response but mark no record; a
// record matched by several assignments shows the most recent one.
func reconcile(records []domain.AbsenceRecord, assignments []domain.Assignment) {
	if len(records) == 0 || len(assignments) == 0 {
		return
	}
	byID := make(map[string]int, len(records))
	for i, r := range records {
		byID[strings.TrimSpace(r.ID)] = i
	}
	for _, g := range assignments {
		i, ok := byID[strings.TrimSpace(g.AbsenceID)]
		if !ok {
			continue
		}
		teacher, id := g.Teacher, g.ID
		records[i].CoverTeacher = &teacher
		records[i].CoverID = &id
	}
}
