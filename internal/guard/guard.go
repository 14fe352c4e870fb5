// Package guard enforces grant redemption and heartbeat pacing rules:
// a grant may start playback once, only before its expiry, and sessions
// may not heartbeat faster than half the advertised interval.
package guard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/reelhouse/reelhouse/internal/repository"
)

// Guard validates grant redemptions and paces session heartbeats.
type Guard struct {
	grants            repository.PlayGrantRepository
	sessions          SessionStore
	heartbeatInterval time.Duration
	enabled           bool
	logger            *slog.Logger
	now               func() time.Time
}

// New creates a Guard. When enabled is false, replay detection and
// heartbeat pacing are skipped; expiry checks always apply.
func New(grants repository.PlayGrantRepository, sessions SessionStore, heartbeatInterval time.Duration, enabled bool, logger *slog.Logger) *Guard {
	if heartbeatInterval <= 0 {
		heartbeatInterval = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		grants:            grants,
		sessions:          sessions,
		heartbeatInterval: heartbeatInterval,
		enabled:           enabled,
		logger:            logger.With(slog.String("component", "guard")),
		now:               time.Now,
	}
}

// WithClock overrides the time source. Used in tests.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// CheckAndRecord validates a grant redemption at playback start. It returns
// models.ErrNotFound for an unknown grant, models.ErrGrantExpired past
// expiry, and models.ErrGrantReplayed when the grant has already started
// playback once.
func (g *Guard) CheckAndRecord(ctx context.Context, grantID models.ULID) error {
	grant, err := g.grants.GetByID(ctx, grantID)
	if err != nil {
		return fmt.Errorf("loading grant: %w", err)
	}
	if grant == nil {
		return models.ErrNotFound
	}

	now := g.now()
	if grant.ExpiredAt(now) {
		return models.ErrGrantExpired
	}

	if !g.enabled {
		return nil
	}

	marked, err := g.grants.MarkFirstUse(ctx, grantID, now)
	if err != nil {
		return fmt.Errorf("marking grant use: %w", err)
	}
	if !marked {
		g.logger.Warn("grant replay detected",
			slog.String("grant_id", grantID.String()),
			slog.String("movie_id", grant.MovieID.String()))
		return models.ErrGrantReplayed
	}
	return nil
}

// AllowHeartbeat paces heartbeats per session: at most one per half the
// advertised interval. Returns models.ErrRateLimited when a heartbeat
// arrives too soon. Store failures fail open so a degraded Redis never
// blocks playback telemetry.
func (g *Guard) AllowHeartbeat(ctx context.Context, sessionID string) error {
	if !g.enabled || sessionID == "" {
		return nil
	}

	minInterval := g.heartbeatInterval / 2
	ok, err := g.sessions.Touch(ctx, sessionID, g.now(), minInterval)
	if err != nil {
		g.logger.Error("heartbeat store unavailable, allowing",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		return nil
	}
	if !ok {
		return models.ErrRateLimited
	}
	return nil
}
