package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// IngestRateLimit limits tracking submissions per client IP. Excess requests
// get a plain 429; the player retries on its next heartbeat tick anyway.
func IngestRateLimit(requests int, period time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 {
		requests = 120
	}
	if period <= 0 {
		period = time.Minute
	}

	return httprate.Limit(
		requests,
		period,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
		}),
	)
}
