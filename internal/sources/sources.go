// Package sources contains the per-origin adapters behind the coverage
// panel. Every adapter normalizes its upstream's shape into the canonical
// domain.AbsenceRecord and absorbs its own failures: a slow, down, or
// malformed upstream yields an empty result, never an error, so one broken
// origin can never take the panel down with it. Failures are logged at warn
// and counted per source in Prometheus.
package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jotasones/guardias-backend/internal/domain"
)

// maxBodyBytes caps how much of an upstream response is read. The feeds are
// small; anything larger is treated as malformed.
const maxBodyBytes = 4 << 20

var (
	// fetchFailures counts upstream fetches that produced no usable data,
	// by source tag.
	fetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_source_fetch_failures_total",
			Help: "Total number of panel source fetches that failed or returned malformed data.",
		},
		[]string{"source"},
	)

	// fetchDuration records upstream fetch latency by source tag, including
	// failed attempts.
	fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "panel_source_fetch_duration_seconds",
			Help:    "Duration of panel source fetches in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(fetchFailures, fetchDuration)
}

// Adapter is one origin of absence records. Fetch returns the normalized
// records for the given date; dayName is the Spanish weekday name some
// upstreams filter on. Implementations return nil on any failure.
type Adapter interface {
	Source() domain.Source
	Fetch(ctx context.Context, date, dayName string) []domain.AbsenceRecord
}

// observe records one fetch attempt for a source.
func observe(src domain.Source, start time.Time) {
	fetchDuration.WithLabelValues(string(src)).Observe(time.Since(start).Seconds())
}

// fail counts and logs one failed fetch.
func fail(src domain.Source, err error) {
	fetchFailures.WithLabelValues(string(src)).Inc()
	log.Warn().Err(err).Str("source", string(src)).Msg("panel source fetch failed")
}

// getBody performs a GET with the adapter's client and returns the response
// body. Non-2xx statuses are errors.
func getBody(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, text/csv, text/plain")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return body, nil
}

// newClient builds the HTTP client shared by the remote adapters. The
// timeout bounds the whole request, keeping a stuck upstream from delaying
// the panel past its budget.
func newClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
