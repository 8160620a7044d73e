package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds one job execution.
const DefaultTimeout = 30 * time.Minute

var (
	// ErrJobRunning is returned by RunNow while the same job is still running.
	ErrJobRunning = errors.New("job already running")
	// ErrStopped is returned for runs requested after Stop.
	ErrStopped = errors.New("scheduler stopped")
)

// Job is a named unit of periodic work.
type Job struct {
	Name     string
	Schedule string
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs jobs on cron schedules with a seconds field. A job never
// overlaps with itself; a tick that fires while it is still running is
// skipped. Job contexts derive from the scheduler's own context, which Stop
// cancels.
type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	running sync.WaitGroup

	mu      sync.Mutex
	stopped bool
	jobs    map[string]Job
	locks   map[string]*sync.Mutex
}

func NewScheduler(logger zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]Job),
		locks:  make(map[string]*sync.Mutex),
	}
}

// Add registers a job. An empty schedule leaves the job disabled but still
// runnable through RunNow.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job needs a name and a run function")
	}
	if job.Timeout <= 0 {
		job.Timeout = DefaultTimeout
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.jobs[job.Name]; dup {
		return fmt.Errorf("job %q registered twice", job.Name)
	}

	if job.Schedule == "" {
		s.logger.Info().Str("job", job.Name).Msg("Job has no schedule, disabled")
	} else {
		if _, err := s.cron.AddFunc(job.Schedule, func() { _ = s.execute(job) }); err != nil {
			return fmt.Errorf("invalid schedule for job %q: %w", job.Name, err)
		}
		s.logger.Info().Str("job", job.Name).Str("schedule", job.Schedule).Msg("Job scheduled")
	}
	s.jobs[job.Name] = job
	s.locks[job.Name] = &sync.Mutex{}
	return nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("entries", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops scheduling and waits for running jobs until ctx is done. It
// then cancels the jobs still running and waits for them to return.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.cron.Stop()
	done := make(chan struct{})
	go func() {
		s.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		s.logger.Info().Msg("Scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn().Msg("Cancelling jobs still running")
		s.cancel()
		<-done
		s.logger.Info().Msg("Scheduler stopped after cancelling jobs")
	}
}

// RunNow executes a registered job synchronously. It fails with
// ErrJobRunning when the job is already running.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.execute(job)
}

func (s *Scheduler) execute(job Job) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	lock := s.locks[job.Name]
	if !lock.TryLock() {
		s.mu.Unlock()
		s.logger.Warn().Str("job", job.Name).Msg("Job still running, skipped")
		return ErrJobRunning
	}
	s.running.Add(1)
	s.mu.Unlock()
	defer s.running.Done()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(s.ctx, job.Timeout)
	defer cancel()

	start := time.Now()
	s.logger.Info().Str("job", job.Name).Msg("Starting job")

	if err := job.Run(ctx); err != nil {
		s.logger.Error().Err(err).Str("job", job.Name).Dur("duration", time.Since(start)).Msg("Job failed")
		return err
	}

	s.logger.Info().Str("job", job.Name).Dur("duration", time.Since(start)).Msg("Job completed")
	return nil
}
