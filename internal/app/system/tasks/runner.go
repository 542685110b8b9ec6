// internal/app/system/tasks/runner.go

// Package tasks schedules the service's periodic maintenance work, such as
// trimming the request ledger and expiring old archive snapshots.
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a named piece of periodic work. Run is invoked once at startup and
// then on every Interval tick until the runner stops.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner owns one goroutine per registered job.
type Runner struct {
	logger *zap.Logger
	jobs   []Job

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// New creates a runner with no jobs registered.
func New(logger *zap.Logger) *Runner {
	return &Runner{
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// Register adds a job. Must be called before Start.
func (r *Runner) Register(job Job) {
	r.jobs = append(r.jobs, job)
}

// Start launches every registered job on its own goroutine.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.loop(ctx, job)
	}

	r.logger.Info("task runner started", zap.Int("jobs", len(r.jobs)))
}

// Stop cancels all jobs and waits for in-flight runs to finish. If ctx
// expires first, it logs the jobs that were still running and returns
// ctx.Err().
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("task runner stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("task runner shutdown timed out",
			zap.Strings("still_running", r.stillRunning()))
		return ctx.Err()
	}
}

// RunOnce runs the named job immediately, outside its schedule. Unknown
// names are a no-op.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	for _, job := range r.jobs {
		if job.Name == name {
			return job.Run(ctx)
		}
	}
	return nil
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	r.execute(ctx, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.execute(ctx, job)
		}
	}
}

func (r *Runner) execute(ctx context.Context, job Job) {
	r.mu.Lock()
	r.inFlight[job.Name] = struct{}{}
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.inFlight, job.Name)
		r.mu.Unlock()
	}()

	start := time.Now()
	err := job.Run(ctx)
	switch {
	case err == nil:
		r.logger.Debug("job completed",
			zap.String("job", job.Name),
			zap.Duration("duration", time.Since(start)))
	case ctx.Err() != nil:
		// Shutdown cancelled the run; nothing is wrong with the job.
		r.logger.Debug("job cancelled", zap.String("job", job.Name))
	default:
		r.logger.Error("job failed",
			zap.String("job", job.Name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
	}
}

func (r *Runner) stillRunning() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.inFlight))
	for name := range r.inFlight {
		names = append(names, name)
	}
	return names
}
