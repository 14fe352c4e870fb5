package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackHandler_Track(t *testing.T) {
	ctx := context.Background()

	t.Run("valid event accepted", func(t *testing.T) {
		env := setupEnv(t)
		tracks, dispatcher := env.trackService(t)
		handler := NewTrackHandler(tracks)

		input := &TrackEventInput{ForwardedFor: "203.0.113.7", UserAgent: "player/1.0", remoteAddr: "192.0.2.1:555"}
		input.Body.Type = "play_start"
		input.Body.SessionID = "s1"

		output, err := handler.Track(ctx, input)
		require.NoError(t, err)
		assert.NotNil(t, output)

		require.NoError(t, dispatcher.Close(ctx))
		events, err := env.eventRepo.GetBySessionID(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "203.0.113.7", events[0].IP)
	})

	t.Run("unknown type is 400", func(t *testing.T) {
		env := setupEnv(t)
		tracks, _ := env.trackService(t)
		handler := NewTrackHandler(tracks)

		input := &TrackEventInput{}
		input.Body.Type = "mystery"

		_, err := handler.Track(ctx, input)
		assert.Equal(t, 400, statusOf(t, err))
	})

	t.Run("play event without session is 400", func(t *testing.T) {
		env := setupEnv(t)
		tracks, _ := env.trackService(t)
		handler := NewTrackHandler(tracks)

		input := &TrackEventInput{}
		input.Body.Type = "play_heartbeat"

		_, err := handler.Track(ctx, input)
		assert.Equal(t, 400, statusOf(t, err))
	})

	t.Run("client timestamp retained", func(t *testing.T) {
		env := setupEnv(t)
		tracks, dispatcher := env.trackService(t)
		handler := NewTrackHandler(tracks)

		skewed := time.Date(2026, 3, 1, 11, 57, 0, 0, time.UTC)
		input := &TrackEventInput{}
		input.Body.Type = "page_view"
		input.Body.SessionID = "s2"
		input.Body.Timestamp = &skewed

		_, err := handler.Track(ctx, input)
		require.NoError(t, err)

		require.NoError(t, dispatcher.Close(ctx))
		events, err := env.eventRepo.GetBySessionID(ctx, "s2")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, skewed, events[0].ClientTS.UTC())
	})
}
