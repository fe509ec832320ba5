package store

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jotasones/guardias-backend/internal/domain"
)

// Replicator mirrors a newly created absence to a remote system-of-record.
// Replication is strictly best-effort: the local write is authoritative and
// has already succeeded by the time Replicate runs, so implementations may
// fail freely.
type Replicator interface {
	Replicate(ctx context.Context, a domain.Absence) error
}

// HTTPReplicator posts created absences as JSON to a fixed URL.
type HTTPReplicator struct {
	URL    string
	Client *http.Client
}

// NewHTTPReplicator returns a replicator with a bounded request timeout.
func NewHTTPReplicator(url string, timeout time.Duration) *HTTPReplicator {
	return &HTTPReplicator{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

// Replicate posts the absence to the configured URL. Non-2xx responses are
// reported as errors so the caller can log them; the body is discarded.
func (r *HTTPReplicator) Replicate(ctx context.Context, a domain.Absence) error {
	body, err := json.Marshal(a)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ReplicaStatusError{Status: resp.StatusCode}
	}
	return nil
}

// ReplicaStatusError reports a non-2xx replica response.
type ReplicaStatusError struct{ Status int }

func (e *ReplicaStatusError) Error() string { return "replica returned status " + http.StatusText(e.Status) }

// fireAndForget runs the replication in the background with its own deadline,
// detached from the request context so a finished request does not cancel it.
// The outcome never reaches the caller; failures are logged and dropped.
func fireAndForget(r Replicator, a domain.Absence) {
	if r == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.Replicate(ctx, a); err != nil {
			log.Warn().Err(err).Str("absence_id", a.ID).Msg("absence replication failed")
		}
	}()
}
