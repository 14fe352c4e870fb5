// Package sink delivers accepted tracking events to durable storage.
// Ingestion is fire-and-forget: callers enqueue and return immediately,
// a background worker drains the queue, and delivery failures are logged
// rather than surfaced to the client.
package sink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/reelhouse/reelhouse/internal/models"
	"github.com/reelhouse/reelhouse/internal/repository"
)

// EventSink persists a single tracking event.
type EventSink interface {
	Write(ctx context.Context, event *models.TrackEvent) error
}

// RepositorySink writes events through the track event repository.
type RepositorySink struct {
	repo repository.TrackEventRepository
}

var _ EventSink = (*RepositorySink)(nil)

// NewRepositorySink creates a sink backed by the given repository.
func NewRepositorySink(repo repository.TrackEventRepository) *RepositorySink {
	return &RepositorySink{repo: repo}
}

func (s *RepositorySink) Write(ctx context.Context, event *models.TrackEvent) error {
	return s.repo.Create(ctx, event)
}

// Dispatcher accepts events on a bounded queue and hands them to a sink from
// a single background worker. Enqueue never blocks: when the queue is full
// the event is dropped and counted.
type Dispatcher struct {
	sink         EventSink
	logger       *slog.Logger
	queue        chan *models.TrackEvent
	writeTimeout time.Duration

	mu      sync.Mutex
	dropped int64
	closed  bool
	done    chan struct{}
}

// NewDispatcher creates a Dispatcher with the given queue capacity and
// per-write timeout. Start must be called before events flow.
func NewDispatcher(sink EventSink, bufferSize int, writeTimeout time.Duration, logger *slog.Logger) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		sink:         sink,
		logger:       logger.With(slog.String("component", "event-dispatcher")),
		queue:        make(chan *models.TrackEvent, bufferSize),
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}
}

// Start launches the background worker.
func (d *Dispatcher) Start() {
	go d.run()
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for event := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.writeTimeout)
		err := d.sink.Write(ctx, event)
		cancel()

		if err != nil {
			d.logger.Error("event write failed",
				slog.String("event_type", string(event.Type)),
				slog.String("session_id", event.SessionID),
				slog.String("error", err.Error()))
		}
	}
}

// Enqueue hands an event to the background worker. It never blocks; a full
// queue drops the event.
func (d *Dispatcher) Enqueue(event *models.TrackEvent) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}

	select {
	case d.queue <- event:
		d.mu.Unlock()
	default:
		d.dropped++
		dropped := d.dropped
		d.mu.Unlock()
		d.logger.Warn("event queue full, dropping event",
			slog.String("event_type", string(event.Type)),
			slog.Int64("dropped_total", dropped))
	}
}

// Dropped returns the number of events dropped due to a full queue.
func (d *Dispatcher) Dropped() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Close stops accepting events, drains the queue, and waits for the worker
// to finish or the context to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
