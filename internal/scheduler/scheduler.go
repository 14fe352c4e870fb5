// Package scheduler runs recurring maintenance jobs for reelhouse, such as
// the session abandonment sweep and expired grant purging.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// JobFunc is a unit of recurring work. Errors are logged, not fatal.
type JobFunc func(ctx context.Context) error

type job struct {
	name  string
	every time.Duration
	fn    JobFunc
}

// Scheduler runs registered jobs on fixed intervals using a cron runner.
// Jobs must be registered before Start.
type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	logger *slog.Logger
	jobs   []job

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler. Panics inside jobs are recovered and logged.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cl := &cronLogger{logger: logger}
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cl))),
		logger: logger,
	}
}

// AddInterval registers fn to run every interval. Intervals below one second
// are rounded up by the cron runner.
func (s *Scheduler) AddInterval(name string, every time.Duration, fn JobFunc) error {
	if every <= 0 {
		return fmt.Errorf("job %q: interval must be positive", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx != nil {
		return fmt.Errorf("job %q: scheduler already started", name)
	}
	s.jobs = append(s.jobs, job{name: name, every: every, fn: fn})
	return nil
}

// Start launches the cron runner with all registered jobs.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil {
		return fmt.Errorf("scheduler already started")
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	for _, j := range s.jobs {
		j := j
		s.cron.Schedule(cron.Every(j.every), cron.FuncJob(func() {
			s.runJob(j)
		}))
		s.logger.Info("registered scheduled job",
			slog.String("job", j.name),
			slog.Duration("interval", j.every))
	}

	s.cron.Start()
	s.logger.Info("scheduler started", slog.Int("jobs", len(s.jobs)))
	return nil
}

func (s *Scheduler) runJob(j job) {
	start := time.Now()
	if err := j.fn(s.ctx); err != nil {
		s.logger.Error("scheduled job failed",
			slog.String("job", j.name),
			slog.Any("error", err))
		return
	}
	s.logger.Debug("scheduled job completed",
		slog.String("job", j.name),
		slog.Duration("took", time.Since(start)))
}

// Stop cancels running jobs and waits for them to finish, or until ctx is
// done, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	stopped := s.cron.Stop()
	s.mu.Unlock()

	select {
	case <-stopped.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for scheduled jobs: %w", ctx.Err())
	}
}

// cronLogger adapts slog to the cron logger interface used for panic recovery.
type cronLogger struct {
	logger *slog.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, slog.Any("details", keysAndValues))
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, slog.Any("error", err), slog.Any("details", keysAndValues))
}
