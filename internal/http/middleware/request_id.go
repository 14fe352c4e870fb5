// Package middleware provides the HTTP middleware stack: request
// correlation, access logging, panic recovery, CORS, and ingest rate
// limiting.
package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/reelhouse/reelhouse/internal/observability"
)

// RequestIDHeader is the correlation header honored and echoed by the server.
const RequestIDHeader = "X-Request-ID"

// RequestID injects a correlation id into the request context and response.
// A client-supplied X-Request-ID is honored; otherwise a UUID is generated.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := observability.ContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request's correlation id, or "".
func GetRequestID(r *http.Request) string {
	return observability.RequestIDFromContext(r.Context())
}
