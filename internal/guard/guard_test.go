package guard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/reelhouse/reelhouse/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupGuard(t *testing.T, enabled bool) (*Guard, repository.PlayGrantRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.PlayGrant{}))

	grants := repository.NewPlayGrantRepository(db)
	return New(grants, NewMemoryStore(time.Minute), 30*time.Second, enabled, nil), grants
}

func issueGrant(t *testing.T, grants repository.PlayGrantRepository, now time.Time, ttl time.Duration) *models.PlayGrant {
	t.Helper()
	grant := &models.PlayGrant{
		MovieID:                  models.NewULID(),
		IssuedAt:                 now,
		ExpiresAt:                now.Add(ttl),
		HeartbeatIntervalSeconds: 30,
	}
	require.NoError(t, grants.Create(context.Background(), grant))
	return grant
}

func TestGuard_CheckAndRecord(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("unknown grant", func(t *testing.T) {
		g, _ := setupGuard(t, true)
		g.WithClock(func() time.Time { return now })
		assert.ErrorIs(t, g.CheckAndRecord(ctx, models.NewULID()), models.ErrNotFound)
	})

	t.Run("first use allowed, second rejected", func(t *testing.T) {
		g, grants := setupGuard(t, true)
		g.WithClock(func() time.Time { return now })
		grant := issueGrant(t, grants, now, 15*time.Minute)

		require.NoError(t, g.CheckAndRecord(ctx, grant.ID))
		assert.ErrorIs(t, g.CheckAndRecord(ctx, grant.ID), models.ErrGrantReplayed)
	})

	t.Run("expired grant", func(t *testing.T) {
		g, grants := setupGuard(t, true)
		grant := issueGrant(t, grants, now, time.Minute)

		g.WithClock(func() time.Time { return now.Add(2 * time.Minute) })
		assert.ErrorIs(t, g.CheckAndRecord(ctx, grant.ID), models.ErrGrantExpired)
	})

	t.Run("valid at expiry instant", func(t *testing.T) {
		g, grants := setupGuard(t, true)
		grant := issueGrant(t, grants, now, time.Minute)

		g.WithClock(func() time.Time { return now.Add(time.Minute) })
		assert.NoError(t, g.CheckAndRecord(ctx, grant.ID))
	})

	t.Run("disabled guard skips replay detection but not expiry", func(t *testing.T) {
		g, grants := setupGuard(t, false)
		g.WithClock(func() time.Time { return now })
		grant := issueGrant(t, grants, now, 15*time.Minute)

		require.NoError(t, g.CheckAndRecord(ctx, grant.ID))
		require.NoError(t, g.CheckAndRecord(ctx, grant.ID))

		expired := issueGrant(t, grants, now.Add(-2*time.Hour), time.Minute)
		assert.ErrorIs(t, g.CheckAndRecord(ctx, expired.ID), models.ErrGrantExpired)
	})
}

func TestGuard_AllowHeartbeat(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("paces to half the interval", func(t *testing.T) {
		g, _ := setupGuard(t, true)
		current := now
		g.WithClock(func() time.Time { return current })

		require.NoError(t, g.AllowHeartbeat(ctx, "s1"))

		current = now.Add(5 * time.Second)
		assert.ErrorIs(t, g.AllowHeartbeat(ctx, "s1"), models.ErrRateLimited)

		current = now.Add(15 * time.Second)
		assert.NoError(t, g.AllowHeartbeat(ctx, "s1"))
	})

	t.Run("sessions are independent", func(t *testing.T) {
		g, _ := setupGuard(t, true)
		g.WithClock(func() time.Time { return now })

		require.NoError(t, g.AllowHeartbeat(ctx, "s1"))
		assert.NoError(t, g.AllowHeartbeat(ctx, "s2"))
	})

	t.Run("empty session id allowed", func(t *testing.T) {
		g, _ := setupGuard(t, true)
		assert.NoError(t, g.AllowHeartbeat(ctx, ""))
	})

	t.Run("disabled guard allows everything", func(t *testing.T) {
		g, _ := setupGuard(t, false)
		g.WithClock(func() time.Time { return now })
		require.NoError(t, g.AllowHeartbeat(ctx, "s1"))
		assert.NoError(t, g.AllowHeartbeat(ctx, "s1"))
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("touch pacing", func(t *testing.T) {
		store := NewMemoryStore(time.Minute)

		ok, err := store.Touch(ctx, "s1", now, 15*time.Second)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Touch(ctx, "s1", now.Add(5*time.Second), 15*time.Second)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.Touch(ctx, "s1", now.Add(15*time.Second), 15*time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("evicts stale sessions past threshold", func(t *testing.T) {
		store := NewMemoryStore(time.Minute)
		for i := 0; i <= memoryEvictionThreshold; i++ {
			id := "s" + time.Duration(i).String()
			_, err := store.Touch(ctx, id, now.Add(-2*time.Minute), time.Second)
			require.NoError(t, err)
		}

		_, err := store.Touch(ctx, "fresh", now, time.Second)
		require.NoError(t, err)
		assert.Less(t, store.Len(), memoryEvictionThreshold)
	})
}

func TestRedisStore(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	store := NewRedisStoreWithClient(client)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	now := time.Now()

	ok, err := store.Touch(ctx, "s1", now, 15*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Touch(ctx, "s1", now, 15*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	// After the interval elapses the key expires and touches pass again.
	srv.FastForward(16 * time.Second)
	ok, err = store.Touch(ctx, "s1", now.Add(16*time.Second), 15*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
