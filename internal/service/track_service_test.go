package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/reelhouse/reelhouse/internal/repository"
	"github.com/reelhouse/reelhouse/internal/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rejectingPacer struct{ err error }

func (p rejectingPacer) AllowHeartbeat(context.Context, string) error { return p.err }

type recordingGrantChecker struct {
	err  error
	seen []models.ULID
}

func (c *recordingGrantChecker) CheckAndRecord(_ context.Context, grantID models.ULID) error {
	c.seen = append(c.seen, grantID)
	return c.err
}

func setupTrackService(t *testing.T, pacer HeartbeatPacer) (*TrackService, repository.TrackEventRepository, *sink.Dispatcher) {
	t.Helper()

	db := setupCatalogDB(t)
	events := repository.NewTrackEventRepository(db)
	dispatcher := sink.NewDispatcher(sink.NewRepositorySink(events), 64, time.Second, slog.New(slog.DiscardHandler))
	dispatcher.Start()
	t.Cleanup(func() { _ = dispatcher.Close(context.Background()) })

	return NewTrackService(dispatcher, pacer, nil), events, dispatcher
}

func TestRequestContext_ClientIP(t *testing.T) {
	tests := []struct {
		name string
		ctx  RequestContext
		want string
	}{
		{"forwarded-for first hop", RequestContext{ForwardedFor: "203.0.113.7, 10.0.0.1", RemoteAddr: "192.0.2.1:1234"}, "203.0.113.7"},
		{"forwarded-for single", RequestContext{ForwardedFor: "203.0.113.7"}, "203.0.113.7"},
		{"forwarded-for with spaces", RequestContext{ForwardedFor: "  203.0.113.7 , 10.0.0.1"}, "203.0.113.7"},
		{"real-ip fallback", RequestContext{RealIP: "198.51.100.2", RemoteAddr: "192.0.2.1:1234"}, "198.51.100.2"},
		{"peer address fallback", RequestContext{RemoteAddr: "192.0.2.1:1234"}, "192.0.2.1"},
		{"peer without port", RequestContext{RemoteAddr: "192.0.2.1"}, "192.0.2.1"},
		{"nothing available", RequestContext{}, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ctx.ClientIP())
		})
	}
}

func TestTrackService_Ingest(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("valid event persisted with server context", func(t *testing.T) {
		svc, events, dispatcher := setupTrackService(t, nil)
		svc.WithClock(func() time.Time { return now })

		err := svc.Ingest(ctx, RawTrackEvent{
			Type:      "play_start",
			SessionID: "s1",
			Meta:      map[string]any{"quality": "1080p"},
		}, RequestContext{ForwardedFor: "203.0.113.7", UserAgent: "player/1.0"})
		require.NoError(t, err)

		require.NoError(t, dispatcher.Close(ctx))
		stored, err := events.GetBySessionID(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, models.EventPlayStart, stored[0].Type)
		assert.Equal(t, "203.0.113.7", stored[0].IP)
		assert.Equal(t, "player/1.0", stored[0].UserAgent)
		assert.Equal(t, now, stored[0].ServerTS.UTC())
	})

	t.Run("missing client timestamp defaults to server", func(t *testing.T) {
		svc, events, dispatcher := setupTrackService(t, nil)
		svc.WithClock(func() time.Time { return now })

		require.NoError(t, svc.Ingest(ctx, RawTrackEvent{Type: "page_view", SessionID: "s2"}, RequestContext{}))
		require.NoError(t, dispatcher.Close(ctx))

		stored, err := events.GetBySessionID(ctx, "s2")
		require.NoError(t, err)
		require.Len(t, stored, 1)
		require.NotNil(t, stored[0].ClientTS)
		assert.Equal(t, now, stored[0].ClientTS.UTC())
	})

	t.Run("divergent client timestamp retained", func(t *testing.T) {
		svc, events, dispatcher := setupTrackService(t, nil)
		svc.WithClock(func() time.Time { return now })

		skewed := now.Add(-3 * time.Minute)
		require.NoError(t, svc.Ingest(ctx, RawTrackEvent{Type: "page_view", SessionID: "s3", Timestamp: &skewed}, RequestContext{}))
		require.NoError(t, dispatcher.Close(ctx))

		stored, err := events.GetBySessionID(ctx, "s3")
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, skewed, stored[0].ClientTS.UTC())
		assert.Equal(t, now, stored[0].ServerTS.UTC())
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		svc, _, _ := setupTrackService(t, nil)
		err := svc.Ingest(ctx, RawTrackEvent{Type: "mystery_event"}, RequestContext{})
		assert.ErrorIs(t, err, models.ErrInvalidEventType)
	})

	t.Run("play event without session rejected", func(t *testing.T) {
		svc, _, _ := setupTrackService(t, nil)
		err := svc.Ingest(ctx, RawTrackEvent{Type: "play_heartbeat"}, RequestContext{})
		assert.ErrorIs(t, err, models.ErrSessionIDRequired)
	})

	t.Run("non-play event without session accepted", func(t *testing.T) {
		svc, _, _ := setupTrackService(t, nil)
		assert.NoError(t, svc.Ingest(ctx, RawTrackEvent{Type: "search"}, RequestContext{}))
	})

	t.Run("paced heartbeat rejected", func(t *testing.T) {
		svc, _, _ := setupTrackService(t, rejectingPacer{err: models.ErrRateLimited})
		err := svc.Ingest(ctx, RawTrackEvent{Type: "play_heartbeat", SessionID: "s4"}, RequestContext{})
		assert.ErrorIs(t, err, models.ErrRateLimited)

		// Pacing applies to heartbeats only.
		assert.NoError(t, svc.Ingest(ctx, RawTrackEvent{Type: "play_start", SessionID: "s4"}, RequestContext{}))
	})

	t.Run("grant checked on play_start", func(t *testing.T) {
		svc, _, _ := setupTrackService(t, nil)
		checker := &recordingGrantChecker{}
		svc.WithGrantChecker(checker)

		grantID := models.NewULID()
		require.NoError(t, svc.Ingest(ctx, RawTrackEvent{
			Type: "play_start", SessionID: "s6", GrantID: grantID.String(),
		}, RequestContext{}))
		require.Len(t, checker.seen, 1)
		assert.Equal(t, grantID, checker.seen[0])

		// Heartbeats do not re-check the grant.
		require.NoError(t, svc.Ingest(ctx, RawTrackEvent{
			Type: "play_heartbeat", SessionID: "s6", GrantID: grantID.String(),
		}, RequestContext{}))
		assert.Len(t, checker.seen, 1)
	})

	t.Run("replayed grant rejected", func(t *testing.T) {
		svc, _, _ := setupTrackService(t, nil)
		svc.WithGrantChecker(&recordingGrantChecker{err: models.ErrGrantReplayed})

		err := svc.Ingest(ctx, RawTrackEvent{
			Type: "play_start", SessionID: "s7", GrantID: models.NewULID().String(),
		}, RequestContext{})
		assert.ErrorIs(t, err, models.ErrGrantReplayed)
	})

	t.Run("malformed grant id rejected", func(t *testing.T) {
		svc, _, _ := setupTrackService(t, nil)
		svc.WithGrantChecker(&recordingGrantChecker{})

		err := svc.Ingest(ctx, RawTrackEvent{
			Type: "play_start", SessionID: "s8", GrantID: "not-a-ulid",
		}, RequestContext{})
		assert.ErrorIs(t, err, models.ErrInvalidArgument)
	})

	t.Run("duplicate ingestion tolerated", func(t *testing.T) {
		svc, events, dispatcher := setupTrackService(t, nil)
		svc.WithClock(func() time.Time { return now })

		raw := RawTrackEvent{Type: "play_heartbeat", SessionID: "s5", Timestamp: &now}
		require.NoError(t, svc.Ingest(ctx, raw, RequestContext{}))
		require.NoError(t, svc.Ingest(ctx, raw, RequestContext{}))
		require.NoError(t, dispatcher.Close(ctx))

		count, err := events.CountBySessionID(ctx, "s5")
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
