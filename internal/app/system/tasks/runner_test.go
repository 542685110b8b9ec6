package tasks_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clubvault/clubvault/internal/app/system/tasks"
	"go.uber.org/zap"
)

func TestRunner_RunsJobOnStart(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var runs atomic.Int32
	runner.Register(tasks.Job{
		Name:     "cleanup",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	runner.Start()

	// Jobs run once immediately, before the first tick.
	deadline := time.After(time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("job never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestRunner_MultipleJobs(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var first, second atomic.Int32
	runner.Register(tasks.Job{
		Name:     "first",
		Interval: 25 * time.Millisecond,
		Run: func(ctx context.Context) error {
			first.Add(1)
			return nil
		},
	})
	runner.Register(tasks.Job{
		Name:     "second",
		Interval: 25 * time.Millisecond,
		Run: func(ctx context.Context) error {
			second.Add(1)
			return nil
		},
	})
	runner.Start()
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if first.Load() < 1 || second.Load() < 1 {
		t.Errorf("runs = %d/%d, want both at least 1", first.Load(), second.Load())
	}
}

func TestRunner_StopCancelsJobContext(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	sawCancel := make(chan struct{})
	runner.Register(tasks.Job{
		Name:     "waiter",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			close(sawCancel)
			return ctx.Err()
		},
	})
	runner.Start()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runner.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}

	select {
	case <-sawCancel:
	case <-time.After(time.Second):
		t.Error("job context was never cancelled")
	}
}

func TestRunner_StopTimesOutOnStuckJob(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	started := make(chan struct{})
	runner.Register(tasks.Job{
		Name:     "stuck",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			// Ignores its context on purpose.
			close(started)
			time.Sleep(5 * time.Second)
			return nil
		},
	})
	runner.Start()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := runner.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Stop() error = %v, want deadline exceeded", err)
	}
}

func TestRunner_RunOnce(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var runs atomic.Int32
	runner.Register(tasks.Job{
		Name:     "manual",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	// RunOnce works without Start; unknown names are a no-op.
	if err := runner.RunOnce(context.Background(), "manual"); err != nil {
		t.Errorf("RunOnce() error = %v", err)
	}
	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", runs.Load())
	}
	if err := runner.RunOnce(context.Background(), "unknown"); err != nil {
		t.Errorf("RunOnce(unknown) error = %v", err)
	}
}
