package sources

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jotasones/guardias-backend/internal/domain"
)

// CSVAdapter reads a published CSV export. Columns are located by header
// name rather than position, so the sheet can reorder or add columns without
// breaking the feed. Only rows for the requested weekday with tipo AUSENCIA
// become records.
type CSVAdapter struct {
	url    string
	client *http.Client
}

// NewCSVAdapter builds an adapter for the given export URL.
func NewCSVAdapter(csvURL string, timeout time.Duration) *CSVAdapter {
	return &CSVAdapter{url: csvURL, client: newClient(timeout)}
}

// Source implements Adapter.
func (a *CSVAdapter) Source() domain.Source { return domain.SourceCSV }

// Fetch implements Adapter.
func (a *CSVAdapter) Fetch(ctx context.Context, date, dayName string) []domain.AbsenceRecord {
	defer observe(domain.SourceCSV, time.Now())

	body, err := getBody(ctx, a.client, a.url)
	if err != nil {
		fail(domain.SourceCSV, err)
		return nil
	}
	records, err := parseCSVFeed(body, dayName)
	if err != nil {
		fail(domain.SourceCSV, err)
		return nil
	}
	return records
}

func parseCSVFeed(body []byte, dayName string) ([]domain.AbsenceRecord, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1 // ragged rows are tolerated, missing cells read as empty
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv feed")
	}

	idx := headerIndex(rows[0])
	if idx.day < 0 || idx.kind < 0 {
		return nil, errors.New("csv feed missing dia or tipo column")
	}

	var out []domain.AbsenceRecord
	for _, row := range rows[1:] {
		if !strings.EqualFold(cell(row, idx.day), dayName) || cell(row, idx.kind) != "AUSENCIA" {
			continue
		}
		period := 1
		if n, err := strconv.Atoi(strings.TrimSpace(cell(row, idx.period))); err == nil && n >= 1 {
			period = n
		}
		out = append(out, domain.AbsenceRecord{
			ID:          "d-" + uuid.NewString(),
			Source:      domain.SourceCSV,
			Teacher:     orQuestionMark(cell(row, idx.teacher)),
			Group:       cell(row, idx.room),
			PeriodStart: period,
			PeriodEnd:   period,
			Task:        cell(row, idx.task),
			External:    true,
		})
	}
	return out, nil
}

type csvColumns struct {
	day, kind, teacher, period, room, task int
}

// headerIndex locates each known column in the header row, case- and
// whitespace-insensitively. Missing columns map to -1.
func headerIndex(header []string) csvColumns {
	idx := csvColumns{day: -1, kind: -1, teacher: -1, period: -1, room: -1, task: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "dia":
			idx.day = i
		case "tipo":
			idx.kind = i
		case "profesor":
			idx.teacher = i
		case "orden":
			idx.period = i
		case "ubicacion":
			idx.room = i
		case "tarea":
			idx.task = i
		}
	}
	return idx
}

// cell returns row[i], or "" when the column is missing or the row is short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
