package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/reelhouse/reelhouse/internal/service"
)

// TrackHandler ingests lifecycle and analytics events.
type TrackHandler struct {
	tracks *service.TrackService
}

// NewTrackHandler creates a new track handler.
func NewTrackHandler(tracks *service.TrackService) *TrackHandler {
	return &TrackHandler{tracks: tracks}
}

// Register registers the tracking route with the API.
func (h *TrackHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "trackEvent",
		Method:        "POST",
		Path:          "/v1/track",
		Summary:       "Ingest a tracking event",
		Description:   "Accepts one lifecycle or analytics event. Acceptance is decoupled from durability: the response never waits for the event sink.",
		Tags:          []string{"Tracking"},
		DefaultStatus: http.StatusNoContent,
	}, h.Track)
}

// TrackEventInput is the input for event ingestion.
type TrackEventInput struct {
	ForwardedFor string `header:"X-Forwarded-For" doc:"Proxy-reported client chain"`
	RealIP       string `header:"X-Real-IP" doc:"Proxy-reported client address"`
	UserAgent    string `header:"User-Agent"`

	Body struct {
		Type      string         `json:"type" doc:"Event type from the fixed enumeration"`
		Timestamp *time.Time     `json:"timestamp,omitempty" doc:"Client clock reading, kept for audit only"`
		SessionID string         `json:"session_id,omitempty" doc:"Playback session correlation id; required for play_* events"`
		GrantID   string         `json:"grant_id,omitempty"`
		MovieID   string         `json:"movie_id,omitempty"`
		UserID    string         `json:"user_id,omitempty"`
		Path      string         `json:"path,omitempty"`
		Meta      map[string]any `json:"meta,omitempty"`
	}

	remoteAddr string
}

// Resolve captures the socket peer address for IP fallback.
func (i *TrackEventInput) Resolve(ctx huma.Context) []error {
	i.remoteAddr = ctx.RemoteAddr()
	return nil
}

var _ huma.Resolver = (*TrackEventInput)(nil)

// TrackEventOutput is the (empty) output for event ingestion.
type TrackEventOutput struct{}

// Track validates and enqueues one event. Validation failures are 400,
// heartbeat pacing failures 429; everything accepted is a 204 regardless of
// sink health.
func (h *TrackHandler) Track(ctx context.Context, input *TrackEventInput) (*TrackEventOutput, error) {
	raw := service.RawTrackEvent{
		Type:      input.Body.Type,
		Timestamp: input.Body.Timestamp,
		SessionID: input.Body.SessionID,
		GrantID:   input.Body.GrantID,
		MovieID:   input.Body.MovieID,
		UserID:    input.Body.UserID,
		Path:      input.Body.Path,
		Meta:      input.Body.Meta,
	}
	reqCtx := service.RequestContext{
		ForwardedFor: input.ForwardedFor,
		RealIP:       input.RealIP,
		RemoteAddr:   input.remoteAddr,
		UserAgent:    input.UserAgent,
	}

	if err := h.tracks.Ingest(ctx, raw, reqCtx); err != nil {
		return nil, mapServiceError(err)
	}
	return &TrackEventOutput{}, nil
}
