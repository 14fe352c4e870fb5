package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTrackEventTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.TrackEvent{}))
	return db
}

func TestTrackEventRepo_Create(t *testing.T) {
	db := setupTrackEventTestDB(t)
	repo := NewTrackEventRepository(db)
	ctx := context.Background()

	event := &models.TrackEvent{
		Type:      models.EventPlayStart,
		ServerTS:  time.Now(),
		SessionID: "s1",
		Meta:      map[string]any{"quality": "1080p"},
	}
	require.NoError(t, repo.Create(ctx, event))
	assert.False(t, event.ID.IsZero())

	events, err := repo.GetBySessionID(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventPlayStart, events[0].Type)
	assert.Equal(t, "1080p", events[0].Meta["quality"])
}

func TestTrackEventRepo_GetBySessionID_OrdersByServerTS(t *testing.T) {
	db := setupTrackEventTestDB(t)
	repo := NewTrackEventRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Insert out of server-ts order; read side must sort.
	require.NoError(t, repo.Create(ctx, &models.TrackEvent{Type: models.EventPlayHeartbeat, SessionID: "s1", ServerTS: base.Add(30 * time.Second)}))
	require.NoError(t, repo.Create(ctx, &models.TrackEvent{Type: models.EventPlayStart, SessionID: "s1", ServerTS: base}))
	require.NoError(t, repo.Create(ctx, &models.TrackEvent{Type: models.EventPlayEnd, SessionID: "s1", ServerTS: base.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, &models.TrackEvent{Type: models.EventPageView, SessionID: "other", ServerTS: base}))

	events, err := repo.GetBySessionID(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, models.EventPlayStart, events[0].Type)
	assert.Equal(t, models.EventPlayHeartbeat, events[1].Type)
	assert.Equal(t, models.EventPlayEnd, events[2].Type)
}

func TestTrackEventRepo_CountBySessionID(t *testing.T) {
	db := setupTrackEventTestDB(t)
	repo := NewTrackEventRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.TrackEvent{Type: models.EventPlayHeartbeat, SessionID: "s1", ServerTS: time.Now()}))
	}

	count, err := repo.CountBySessionID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = repo.CountBySessionID(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTrackEventRepo_DistinctSessionIDsSince(t *testing.T) {
	db := setupTrackEventTestDB(t)
	repo := NewTrackEventRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &models.TrackEvent{Type: models.EventPlayStart, SessionID: "old", ServerTS: base.Add(-2 * time.Hour)}))
	require.NoError(t, repo.Create(ctx, &models.TrackEvent{Type: models.EventPlayStart, SessionID: "recent", ServerTS: base}))
	require.NoError(t, repo.Create(ctx, &models.TrackEvent{Type: models.EventPlayHeartbeat, SessionID: "recent", ServerTS: base.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, &models.TrackEvent{Type: models.EventPageView, ServerTS: base})) // no session id

	ids, err := repo.DistinctSessionIDsSince(ctx, base.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"recent"}, ids)
}
