package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsRegisteredJobs(t *testing.T) {
	s := New(slog.New(slog.DiscardHandler))

	var runs atomic.Int64
	require.NoError(t, s.AddInterval("counter", time.Second, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}))

	require.NoError(t, s.Start())
	defer func() { _ = s.Stop(context.Background()) }()

	assert.Eventually(t, func() bool {
		return runs.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_JobErrorDoesNotStopOthers(t *testing.T) {
	s := New(slog.New(slog.DiscardHandler))

	var healthy atomic.Int64
	require.NoError(t, s.AddInterval("failing", time.Second, func(ctx context.Context) error {
		return errors.New("boom")
	}))
	require.NoError(t, s.AddInterval("healthy", time.Second, func(ctx context.Context) error {
		healthy.Add(1)
		return nil
	}))

	require.NoError(t, s.Start())
	defer func() { _ = s.Stop(context.Background()) }()

	assert.Eventually(t, func() bool {
		return healthy.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_Lifecycle(t *testing.T) {
	s := New(nil)

	require.Error(t, s.AddInterval("bad", 0, func(ctx context.Context) error { return nil }))

	require.NoError(t, s.Start())
	assert.Error(t, s.Start())
	assert.Error(t, s.AddInterval("late", time.Second, func(ctx context.Context) error { return nil }))

	require.NoError(t, s.Stop(context.Background()))
}
