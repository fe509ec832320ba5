// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for the write endpoints. Staff
// room clients retry aggressively over flaky school wifi, so POST
// /api/ausencias accepts an Idempotency-Key header: the middleware validates
// it, stashes it in the request context, and consults a lookup to detect a
// previously completed request for the same key and date. Persistence stays
// behind the narrow IdempotencyLookup function type; handlers decide how to
// serve a replay.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header conveying an idempotency key
// for unsafe operations. The value is expected to be stable per semantic
// operation so retries can be deduplicated.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys used internally to stash idempotency state.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: true when a stored replay exists
	ctxKeyRateBypass = "rate.bypass" // bool: true to skip rate limiting
)

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by IdempotencyValidator. The second return value indicates
// presence.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request replays a previously completed
// operation for the same key and date.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures header validation. TTL enforcement belongs
// inside the lookup, not here.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative
	// token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// IdempotencyLookup answers whether a successful, still-valid result exists
// for (key, date) at the given time. Return exists=true when the prior
// response can be replayed; errors are treated as "no replay" so a broken
// lookup never blocks writes.
type IdempotencyLookup func(ctx context.Context, key, date string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present,
// stashes it, and checks for a prior completed request via the supplied
// lookup. Keys are scoped by the fecha query parameter, defaulting to today,
// matching how the write handlers record them. On replay it sets the replay
// and rate-bypass flags; it never serves a cached payload itself.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			date := IdempotencyDate(c)
			if exists, _ := lookup(c.Request.Context(), key, date, time.Now().UTC()); exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

// IdempotencyDate returns the date scoping an idempotency key: the fecha
// query parameter, or today. Handlers must record keys under the same
// derivation for replay detection to line up.
func IdempotencyDate(c *gin.Context) string {
	if f := strings.TrimSpace(c.Query("fecha")); f != "" {
		return f
	}
	return time.Now().Format("2006-01-02")
}
