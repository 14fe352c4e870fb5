package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/reelhouse/reelhouse/internal/repository"
)

// SessionState is the derived lifecycle state of one playback session.
type SessionState string

const (
	// SessionUnknown means no well-formed playback session exists for the id.
	SessionUnknown SessionState = "unknown"
	// SessionStarted means playback opened but no heartbeat arrived yet.
	SessionStarted SessionState = "started"
	// SessionActive means heartbeats are arriving within the timeout window.
	SessionActive SessionState = "active"
	// SessionCompleted means the client reported the end of playback. Terminal.
	SessionCompleted SessionState = "completed"
	// SessionAbandoned means activity stopped without an end event.
	SessionAbandoned SessionState = "abandoned"
)

// SessionSummary is the reconciled view of one playback session.
type SessionSummary struct {
	SessionID      string       `json:"session_id"`
	State          SessionState `json:"state"`
	StartedAt      *time.Time   `json:"started_at,omitempty"`
	LastActivityAt *time.Time   `json:"last_activity_at,omitempty"`
	EndedAt        *time.Time   `json:"ended_at,omitempty"`
	EventCount     int          `json:"event_count"`
	Violations     int          `json:"violations"`
}

// SessionService derives session state from the append-only event log.
// Sessions are not stored relationally: the state machine is a pure function
// of the session's events ordered by server timestamp and the current time.
type SessionService struct {
	events            repository.TrackEventRepository
	heartbeatInterval time.Duration
	logger            *slog.Logger
	now               func() time.Time
}

// NewSessionService creates a session service.
func NewSessionService(events repository.TrackEventRepository, heartbeatInterval time.Duration) *SessionService {
	if heartbeatInterval <= 0 {
		heartbeatInterval = 30 * time.Second
	}
	return &SessionService{
		events:            events,
		heartbeatInterval: heartbeatInterval,
		logger:            slog.Default().With(slog.String("component", "session-service")),
		now:               time.Now,
	}
}

// WithLogger sets a custom logger.
func (s *SessionService) WithLogger(logger *slog.Logger) *SessionService {
	s.logger = logger.With(slog.String("component", "session-service"))
	return s
}

// WithClock overrides the time source. Used in tests.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// timeout is the abandonment window: twice the advertised heartbeat interval.
func (s *SessionService) timeout() time.Duration {
	return 2 * s.heartbeatInterval
}

// Reconcile computes the session's state from its event stream. Events are
// ordered by server timestamp only; client timestamps never influence the
// state machine. Duplicate events are tolerated, a completed session never
// reopens, and heartbeats or ends without a preceding start are counted as
// protocol violations but do not fail the call.
func (s *SessionService) Reconcile(ctx context.Context, sessionID string) (*SessionSummary, error) {
	events, err := s.events.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session events: %w", err)
	}

	summary := s.derive(sessionID, events, s.now())

	if summary.Violations > 0 {
		s.logger.Warn("session protocol violations",
			slog.String("session_id", sessionID),
			slog.Int("violations", summary.Violations))
	}
	return summary, nil
}

// derive runs the state machine over events already sorted by server
// timestamp ascending.
func (s *SessionService) derive(sessionID string, events []*models.TrackEvent, now time.Time) *SessionSummary {
	summary := &SessionSummary{
		SessionID:  sessionID,
		State:      SessionUnknown,
		EventCount: len(events),
	}

	var (
		started    bool
		ended      bool
		heartbeats int
	)

	for _, event := range events {
		ts := event.ServerTS

		switch event.Type {
		case models.EventPlayStart:
			if ended {
				// Completion is terminal; late events are kept for audit only.
				continue
			}
			if started {
				// Duplicate start: first one wins.
				summary.Violations++
				continue
			}
			started = true
			startedAt := ts
			summary.StartedAt = &startedAt
			s.touch(summary, ts)

		case models.EventPlayHeartbeat:
			if ended {
				continue
			}
			if !started {
				summary.Violations++
				continue
			}
			heartbeats++
			s.touch(summary, ts)

		case models.EventPlayEnd:
			if ended {
				summary.Violations++
				continue
			}
			if !started {
				summary.Violations++
				continue
			}
			ended = true
			endedAt := ts
			summary.EndedAt = &endedAt
			s.touch(summary, ts)

		default:
			// Non-playback events sharing the session id are counted but do
			// not drive the state machine.
		}
	}

	switch {
	case ended:
		summary.State = SessionCompleted
	case !started:
		summary.State = SessionUnknown
	case summary.LastActivityAt != nil && now.Sub(*summary.LastActivityAt) > s.timeout():
		summary.State = SessionAbandoned
	case heartbeats > 0:
		summary.State = SessionActive
	default:
		summary.State = SessionStarted
	}

	return summary
}

func (s *SessionService) touch(summary *SessionSummary, ts time.Time) {
	if summary.LastActivityAt == nil || ts.After(*summary.LastActivityAt) {
		t := ts
		summary.LastActivityAt = &t
	}
}

// sweepLookback bounds how far back the sweep scans for open sessions.
const sweepLookback = 6 * time.Hour

// SweepAbandoned reconciles every session with recent activity and reports
// the ones that have gone abandoned. Invoked periodically by the scheduler;
// abandonment stays a read-time derivation, the sweep only surfaces it in
// logs and the returned count.
func (s *SessionService) SweepAbandoned(ctx context.Context) (int, error) {
	since := s.now().Add(-sweepLookback)
	ids, err := s.events.DistinctSessionIDsSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("listing recent sessions: %w", err)
	}

	abandoned := 0
	for _, id := range ids {
		summary, err := s.Reconcile(ctx, id)
		if err != nil {
			s.logger.Error("sweep reconcile failed",
				slog.String("session_id", id),
				slog.String("error", err.Error()))
			continue
		}
		if summary.State == SessionAbandoned {
			abandoned++
			s.logger.Info("session abandoned",
				slog.String("session_id", id),
				slog.Time("last_activity", *summary.LastActivityAt),
				slog.Int("events", summary.EventCount))
		}
	}

	s.logger.Debug("session sweep complete",
		slog.Int("scanned", len(ids)),
		slog.Int("abandoned", abandoned))
	return abandoned, nil
}
