package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/jotasones/guardias-backend/internal/domain"
)

// scriptTask is the fixed task shown for script-sourced rows; the upstream
// spreadsheet holds the real task text and is not mirrored here.
const scriptTask = "Ver web original"

// ScriptAdapter reads the spreadsheet-backed web script. The script takes
// the Spanish weekday name and answers {faltas: [{profesor, aula, hora}]}.
type ScriptAdapter struct {
	url    string
	client *http.Client
}

// NewScriptAdapter builds an adapter for the given script URL.
func NewScriptAdapter(scriptURL string, timeout time.Duration) *ScriptAdapter {
	return &ScriptAdapter{url: scriptURL, client: newClient(timeout)}
}

// Source implements Adapter.
func (a *ScriptAdapter) Source() domain.Source { return domain.SourceScript }

// Fetch implements Adapter. The script is keyed by weekday, not date, so
// date is ignored.
func (a *ScriptAdapter) Fetch(ctx context.Context, date, dayName string) []domain.AbsenceRecord {
	defer observe(domain.SourceScript, time.Now())

	body, err := getBody(ctx, a.client, a.url+"?dia="+url.QueryEscape(dayName))
	if err != nil {
		fail(domain.SourceScript, err)
		return nil
	}

	var envelope struct {
		Faults []struct {
			Teacher flexName `json:"profesor"`
			Room    string   `json:"aula"`
			Period  flexInt  `json:"hora"`
		} `json:"faltas"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		fail(domain.SourceScript, err)
		return nil
	}

	out := make([]domain.AbsenceRecord, 0, len(envelope.Faults))
	for _, f := range envelope.Faults {
		period := periodOr1(int(f.Period))
		out = append(out, domain.AbsenceRecord{
			ID:          "c-" + uuid.NewString(),
			Source:      domain.SourceScript,
			Teacher:     orQuestionMark(string(f.Teacher)),
			Group:       f.Room,
			PeriodStart: period,
			PeriodEnd:   period,
			Task:        scriptTask,
			External:    true,
		})
	}
	return out
}
