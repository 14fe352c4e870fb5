package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/reelhouse/reelhouse/internal/signing"
)

// MediaHandler answers token redemption checks for the media proxy. The
// proxy delegates authorization of each object request here (nginx
// auth_request style) and serves the bytes itself on a 2xx.
type MediaHandler struct {
	signer *signing.Signer
	logger *slog.Logger
	now    func() time.Time
}

// NewMediaHandler creates a new media redemption handler.
func NewMediaHandler(signer *signing.Signer, logger *slog.Logger) *MediaHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaHandler{signer: signer, logger: logger, now: time.Now}
}

// WithClock overrides the time source. Used in tests.
func (h *MediaHandler) WithClock(now func() time.Time) *MediaHandler {
	h.now = now
	return h
}

// Register mounts the redemption route directly on the router. It stays off
// the OpenAPI surface: the media proxy is the only intended caller.
func (h *MediaHandler) Register(router chi.Router) {
	router.Get("/media/*", h.Check)
}

// Check validates the token against the object key being requested. 204
// authorizes the proxy to serve; 401/403 deny; 400 flags a token that does
// not parse at all.
func (h *MediaHandler) Check(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	err := h.signer.Verify(token, key, h.now())
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, signing.ErrTokenExpired):
		http.Error(w, "token expired", http.StatusForbidden)
	case errors.Is(err, signing.ErrBadSignature), errors.Is(err, signing.ErrKeyMismatch):
		http.Error(w, "invalid token", http.StatusForbidden)
	default:
		http.Error(w, "malformed token", http.StatusBadRequest)
	}
}
