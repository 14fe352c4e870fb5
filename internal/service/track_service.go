package service

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/reelhouse/reelhouse/internal/geo"
	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/reelhouse/reelhouse/internal/sink"
)

// unknownIP is the sentinel recorded when the client address is unobtainable.
const unknownIP = "unknown"

// RawTrackEvent is a client-submitted event before validation and stamping.
type RawTrackEvent struct {
	Type      string
	Timestamp *time.Time
	SessionID string
	GrantID   string
	MovieID   string
	UserID    string
	Path      string
	Meta      map[string]any
}

// RequestContext carries the server-observed transport facts of an ingest
// request.
type RequestContext struct {
	ForwardedFor string
	RealIP       string
	RemoteAddr   string
	UserAgent    string
}

// ClientIP resolves the client address: first hop of X-Forwarded-For, then
// X-Real-IP, then the socket peer, then the "unknown" sentinel. Resolution
// never fails.
func (rc RequestContext) ClientIP() string {
	if rc.ForwardedFor != "" {
		first := rc.ForwardedFor
		if idx := strings.Index(first, ","); idx >= 0 {
			first = first[:idx]
		}
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(rc.RealIP); ip != "" {
		return ip
	}
	if rc.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(rc.RemoteAddr); err == nil && host != "" {
			return host
		}
		return rc.RemoteAddr
	}
	return unknownIP
}

// HeartbeatPacer rejects heartbeats arriving faster than the allowed rate.
// Implemented by guard.Guard.
type HeartbeatPacer interface {
	AllowHeartbeat(ctx context.Context, sessionID string) error
}

// GrantChecker enforces first-use and expiry on play grants referenced by
// playback events. Implemented by guard.Guard.
type GrantChecker interface {
	CheckAndRecord(ctx context.Context, grantID models.ULID) error
}

// TrackService validates and ingests lifecycle events. Acceptance is
// decoupled from durability: accepted events are enqueued to the dispatcher
// and the caller returns immediately.
type TrackService struct {
	dispatcher *sink.Dispatcher
	pacer      HeartbeatPacer
	grants     GrantChecker
	resolver   geo.Resolver
	logger     *slog.Logger
	now        func() time.Time
}

// NewTrackService creates a track service. pacer and resolver may be nil to
// disable heartbeat pacing and geo enrichment respectively.
func NewTrackService(dispatcher *sink.Dispatcher, pacer HeartbeatPacer, resolver geo.Resolver) *TrackService {
	if resolver == nil {
		resolver = geo.NoopResolver{}
	}
	return &TrackService{
		dispatcher: dispatcher,
		pacer:      pacer,
		resolver:   resolver,
		logger:     slog.Default().With(slog.String("component", "track-service")),
		now:        time.Now,
	}
}

// WithLogger sets a custom logger.
func (s *TrackService) WithLogger(logger *slog.Logger) *TrackService {
	s.logger = logger.With(slog.String("component", "track-service"))
	return s
}

// WithGrantChecker enables grant first-use and expiry enforcement on
// play_start events that reference a grant.
func (s *TrackService) WithGrantChecker(grants GrantChecker) *TrackService {
	s.grants = grants
	return s
}

// WithClock overrides the time source. Used in tests.
func (s *TrackService) WithClock(now func() time.Time) *TrackService {
	s.now = now
	return s
}

// Ingest validates a raw event, stamps it with server context, and hands it
// to the async sink. A nil return means accepted, not durable: sink failures
// are logged by the dispatcher and never reach the client. Validation
// failures return the model's sentinel errors; heartbeats over the allowed
// rate return models.ErrRateLimited.
func (s *TrackService) Ingest(ctx context.Context, raw RawTrackEvent, reqCtx RequestContext) error {
	event := &models.TrackEvent{
		Type:      models.EventType(raw.Type),
		SessionID: strings.TrimSpace(raw.SessionID),
		GrantID:   strings.TrimSpace(raw.GrantID),
		MovieID:   strings.TrimSpace(raw.MovieID),
		UserID:    strings.TrimSpace(raw.UserID),
		Path:      raw.Path,
		Meta:      raw.Meta,
	}
	if err := event.Validate(); err != nil {
		return err
	}

	if s.grants != nil && event.Type == models.EventPlayStart && event.GrantID != "" {
		grantID, err := models.ParseULID(event.GrantID)
		if err != nil {
			return fmt.Errorf("%w: malformed grant id", models.ErrInvalidArgument)
		}
		if err := s.grants.CheckAndRecord(ctx, grantID); err != nil {
			return err
		}
	}

	if s.pacer != nil && event.Type == models.EventPlayHeartbeat {
		if err := s.pacer.AllowHeartbeat(ctx, event.SessionID); err != nil {
			return err
		}
	}

	// Server timestamp is authoritative; the client timestamp is kept for
	// audit and defaults to the server one when absent.
	serverTS := s.now().UTC()
	event.ServerTS = serverTS
	if raw.Timestamp != nil {
		clientTS := raw.Timestamp.UTC()
		event.ClientTS = &clientTS
	} else {
		event.ClientTS = &serverTS
	}

	event.IP = reqCtx.ClientIP()
	event.UserAgent = reqCtx.UserAgent
	if event.IP != unknownIP {
		event.Country = s.resolver.Country(event.IP)
	}

	s.dispatcher.Enqueue(event)

	s.logger.Debug("event accepted",
		slog.String("type", string(event.Type)),
		slog.String("session_id", event.SessionID),
		slog.String("ip", event.IP))
	return nil
}
