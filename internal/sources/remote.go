package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jotasones/guardias-backend/internal/domain"
)

// RemoteAdapter reads the sibling school group's JSON API. Its panel endpoint
// mirrors ours: GET {base}/api/panel?fecha=&diaSemana= returning an
// {ausencias: [...]} envelope. It also exposes the group's teacher directory
// for the merged /api/profesores listing.
type RemoteAdapter struct {
	base   string
	client *http.Client
}

// NewRemoteAdapter builds an adapter for the given API base URL.
func NewRemoteAdapter(base string, timeout time.Duration) *RemoteAdapter {
	return &RemoteAdapter{
		base:   strings.TrimRight(base, "/"),
		client: newClient(timeout),
	}
}

// Source implements Adapter.
func (a *RemoteAdapter) Source() domain.Source { return domain.SourceRemote }

type remoteAbsence struct {
	Teacher flexName `json:"profesor"`
	Group   string   `json:"grupo"`
	Period  flexInt  `json:"hora"`
	Task    string   `json:"tarea"`
}

// Fetch implements Adapter.
func (a *RemoteAdapter) Fetch(ctx context.Context, date, dayName string) []domain.AbsenceRecord {
	defer observe(domain.SourceRemote, time.Now())

	u := fmt.Sprintf("%s/api/panel?fecha=%s&diaSemana=%s",
		a.base, url.QueryEscape(date), url.QueryEscape(dayName))
	body, err := getBody(ctx, a.client, u)
	if err != nil {
		fail(domain.SourceRemote, err)
		return nil
	}

	var envelope struct {
		Absences []remoteAbsence `json:"ausencias"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		fail(domain.SourceRemote, err)
		return nil
	}

	out := make([]domain.AbsenceRecord, 0, len(envelope.Absences))
	for _, ra := range envelope.Absences {
		period := periodOr1(int(ra.Period))
		out = append(out, domain.AbsenceRecord{
			ID:          "m-" + uuid.NewString(),
			Source:      domain.SourceRemote,
			Teacher:     orQuestionMark(string(ra.Teacher)),
			Group:       ra.Group,
			PeriodStart: period,
			PeriodEnd:   period,
			Task:        ra.Task,
			External:    true,
		})
	}
	return out
}

// Teachers fetches the sibling group's directory for the merged listing.
// The endpoint has shipped both a bare array and a {data: [...]} envelope
// over time; both are accepted. Failures yield an empty slice.
func (a *RemoteAdapter) Teachers(ctx context.Context) []domain.TeacherProfile {
	body, err := getBody(ctx, a.client, a.base+"/api/profesores")
	if err != nil {
		fail(domain.SourceRemote, err)
		return nil
	}

	type entry struct {
		FirstName string `json:"nombre"`
		LastName  string `json:"apellidos"`
	}
	var entries []entry
	if err := json.Unmarshal(body, &entries); err != nil {
		var envelope struct {
			Data []entry `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			fail(domain.SourceRemote, err)
			return nil
		}
		entries = envelope.Data
	}

	out := make([]domain.TeacherProfile, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.TeacherProfile{
			FirstName: e.FirstName,
			LastName:  e.LastName,
			Origin:    string(domain.SourceRemote),
		})
	}
	return out
}
