package sources

import (
	"context"
	"time"

	"github.com/jotasones/guardias-backend/internal/domain"
	"github.com/jotasones/guardias-backend/internal/store"
)

// LocalAdapter serves absences created through this service's own store as
// one more panel source. Its records keep their store ids and are the only
// ones marked es_externo=false.
type LocalAdapter struct {
	store store.Store
}

// NewLocalAdapter wraps the given store.
func NewLocalAdapter(s store.Store) *LocalAdapter {
	return &LocalAdapter{store: s}
}

// Source implements Adapter.
func (a *LocalAdapter) Source() domain.Source { return domain.SourceLocal }

// Fetch implements Adapter. dayName is ignored; local records are keyed by
// date only.
func (a *LocalAdapter) Fetch(ctx context.Context, date, dayName string) []domain.AbsenceRecord {
	defer observe(domain.SourceLocal, time.Now())

	absences, err := a.store.ListByDate(ctx, date)
	if err != nil {
		fail(domain.SourceLocal, err)
		return nil
	}
	out := make([]domain.AbsenceRecord, 0, len(absences))
	for _, ab := range absences {
		out = append(out, ab.Record())
	}
	return out
}
