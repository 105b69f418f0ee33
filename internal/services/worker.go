package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Job is one periodic task of a Worker. Run returns how many items it handled.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context, now time.Time) (int, error)
}

// Worker runs its jobs immediately and then on every tick of their interval,
// each in its own goroutine. A failing run is logged; the job keeps ticking.
type Worker struct {
	jobs []Job
	now  func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
	err     error
}

func NewWorker(jobs ...Job) *Worker {
	return &Worker{jobs: jobs, now: time.Now}
}

// Start launches the jobs. Returns an error if already running.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("worker is already running")
	}
	for _, job := range w.jobs {
		if job.Interval <= 0 {
			return fmt.Errorf("job %s: interval must be positive", job.Name)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.running = true
	w.cancel = cancel
	w.doneCh = make(chan struct{})
	w.err = nil

	g, gctx := errgroup.WithContext(runCtx)
	for _, job := range w.jobs {
		g.Go(func() error { return w.loop(gctx, job) })
	}
	go func() {
		err := g.Wait()
		w.mu.Lock()
		w.err = err
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	slog.InfoContext(ctx, "Worker started", "jobs", len(w.jobs))
	return nil
}

// Stop cancels the jobs and waits for them to return or for ctx to expire.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	cancel, done := w.cancel, w.doneCh
	w.mu.Unlock()

	cancel()
	select {
	case <-done:
		slog.InfoContext(ctx, "Worker stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if errors.Is(w.err, context.Canceled) {
		return nil
	}
	return w.err
}

func (w *Worker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Done is closed once every job has returned. Before the first Start it
// returns an already closed channel.
func (w *Worker) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.doneCh == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return w.doneCh
}

func (w *Worker) loop(ctx context.Context, job Job) error {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	w.runOnce(ctx, job, w.now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx, job, w.now())
		}
	}
}

func (w *Worker) runOnce(ctx context.Context, job Job, now time.Time) {
	start := time.Now()
	n, err := job.Run(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "Job run failed",
			"job", job.Name,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return
	}
	slog.InfoContext(ctx, "Job run complete",
		"job", job.Name,
		"handled", n,
		"next_run", now.Add(job.Interval).Format("15:04:05"))
}
