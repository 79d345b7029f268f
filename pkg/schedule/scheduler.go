package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/reindexer/pkg/logger"
)

// JobFunc is the unit of work a scheduler triggers.
type JobFunc func(ctx context.Context) error

// Scheduler triggers registered jobs when their schedule comes due.
// A job never overlaps itself: a tick that finds it still running is skipped.
type Scheduler struct {
	mu         sync.Mutex
	jobs       map[string]*job
	interval   time.Duration
	runOnStart bool
	logger     *slog.Logger
	now        func() time.Time
	wg         sync.WaitGroup
}

type job struct {
	name     string
	schedule Schedule
	fn       JobFunc
	next     time.Time
	running  bool
	runs     int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithCheckInterval sets how often due jobs are looked for. Default 30s.
func WithCheckInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets the logger. Default slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRunOnStart makes every job due on the first check.
func WithRunOnStart() Option {
	return func(s *Scheduler) { s.runOnStart = true }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a scheduler with no jobs.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		jobs:     make(map[string]*job),
		interval: 30 * time.Second,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob registers fn under name.
func (s *Scheduler) AddJob(name string, sched Schedule, fn JobFunc) error {
	if fn == nil {
		return ErrNilJob
	}
	if sched == nil {
		return ErrInvalidSchedule
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return ErrJobAlreadyRegistered
	}

	j := &job{name: name, schedule: sched, fn: fn}
	if !s.runOnStart {
		j.next = sched.Next(s.now())
	}
	s.jobs[name] = j

	s.logger.Info("registered periodic job",
		logger.Component("scheduler"),
		slog.String("job", name),
		slog.String("schedule", sched.String()),
		slog.Time("next_run", j.next))
	return nil
}

// Start checks for due jobs until ctx is cancelled, then waits for running
// jobs to return. It returns ctx.Err().
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	count := len(s.jobs)
	s.mu.Unlock()
	if count == 0 {
		return ErrNoJobs
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.checkJobs(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down", logger.Component("scheduler"))
			s.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			s.checkJobs(ctx)
		}
	}
}

// Runs reports how many times the named job has finished.
func (s *Scheduler) Runs(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[name]; ok {
		return j.runs
	}
	return 0
}

func (s *Scheduler) checkJobs(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		if j.running || now.Before(j.next) {
			continue
		}
		j.running = true
		s.wg.Add(1)
		go s.run(ctx, j)
	}
}

func (s *Scheduler) run(ctx context.Context, j *job) {
	defer s.wg.Done()

	start := s.now()
	err := s.call(ctx, j)
	finished := s.now()

	s.mu.Lock()
	j.running = false
	j.runs++
	j.next = j.schedule.Next(finished)
	next := j.next
	s.mu.Unlock()

	if err != nil {
		s.logger.ErrorContext(ctx, "periodic job failed",
			logger.Component("scheduler"),
			slog.String("job", j.name),
			logger.Duration(finished.Sub(start)),
			logger.Error(err),
			slog.Time("next_run", next))
		return
	}
	s.logger.InfoContext(ctx, "periodic job finished",
		logger.Component("scheduler"),
		slog.String("job", j.name),
		logger.Duration(finished.Sub(start)),
		slog.Time("next_run", next))
}

// call runs the job, turning a panic into an error so the scheduler and
// everything sharing its process keep running.
func (s *Scheduler) call(ctx context.Context, j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
			s.logger.ErrorContext(ctx, "periodic job panicked",
				logger.Component("scheduler"),
				slog.String("job", j.name),
				slog.Any("panic", r))
		}
	}()
	return j.fn(ctx)
}
