package sink

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/reelhouse/reelhouse/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingSink struct {
	mu     sync.Mutex
	events []*models.TrackEvent
	err    error
	block  chan struct{}
}

func (s *recordingSink) Write(ctx context.Context, event *models.TrackEvent) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRepositorySink_Write(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.TrackEvent{}))

	repo := repository.NewTrackEventRepository(db)
	s := NewRepositorySink(repo)

	event := &models.TrackEvent{Type: models.EventPageView, ServerTS: time.Now()}
	require.NoError(t, s.Write(context.Background(), event))

	count, err := repo.CountBySessionID(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDispatcher_DeliversEvents(t *testing.T) {
	rec := &recordingSink{}
	d := NewDispatcher(rec, 16, time.Second, testLogger())
	d.Start()

	for i := 0; i < 5; i++ {
		d.Enqueue(&models.TrackEvent{Type: models.EventPageView, ServerTS: time.Now()})
	}

	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 5, rec.count())
	assert.Zero(t, d.Dropped())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	rec := &recordingSink{block: make(chan struct{})}
	d := NewDispatcher(rec, 1, time.Second, testLogger())
	// Worker not started: the queue fills after one event.

	d.Enqueue(&models.TrackEvent{Type: models.EventPageView})
	d.Enqueue(&models.TrackEvent{Type: models.EventPageView})
	d.Enqueue(&models.TrackEvent{Type: models.EventPageView})

	assert.Equal(t, int64(2), d.Dropped())

	close(rec.block)
	d.Start()
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcher_SinkFailureDoesNotStopWorker(t *testing.T) {
	rec := &recordingSink{err: errors.New("disk full")}
	d := NewDispatcher(rec, 16, time.Second, testLogger())
	d.Start()

	d.Enqueue(&models.TrackEvent{Type: models.EventPageView})
	require.NoError(t, d.Close(context.Background()))

	// A fresh dispatcher on a healthy sink still delivers.
	rec2 := &recordingSink{}
	d2 := NewDispatcher(rec2, 16, time.Second, testLogger())
	d2.Start()
	d2.Enqueue(&models.TrackEvent{Type: models.EventPageView})
	require.NoError(t, d2.Close(context.Background()))
	assert.Equal(t, 1, rec2.count())
}

func TestDispatcher_EnqueueAfterClose(t *testing.T) {
	rec := &recordingSink{}
	d := NewDispatcher(rec, 16, time.Second, testLogger())
	d.Start()
	require.NoError(t, d.Close(context.Background()))

	// Must not panic on a closed queue.
	d.Enqueue(&models.TrackEvent{Type: models.EventPageView})
	assert.Equal(t, 0, rec.count())
}

func TestDispatcher_CloseTwice(t *testing.T) {
	d := NewDispatcher(&recordingSink{}, 16, time.Second, testLogger())
	d.Start()
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))
}
