package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chancity/tournamenthub/internal/domain/job"
	"github.com/chancity/tournamenthub/internal/notifications"
	"github.com/chancity/tournamenthub/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

type Config struct {
	PollInterval  time.Duration
	WorkerID      string
	Concurrency   int
	ShutdownGrace time.Duration

	// JobTimeout bounds one execution.
	JobTimeout time.Duration
	// Jobs locked longer than LockTTL are handed back to the queue.
	LockTTL      time.Duration
	ReapInterval time.Duration
}

type Worker struct {
	cfg      Config
	repo     JobsRepository
	notifier notifications.Notifier
	prom     *observability.Prom
	log      *slog.Logger

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, notifier notifications.Notifier, log *slog.Logger, prom *observability.Prom) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Minute
	}
	if cfg.ReapInterval <= 0 {
		cfg.ReapInterval = time.Minute
	}
	if log == nil {
		log = slog.Default()
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		prom:     prom,
		log:      log.With("worker_id", cfg.WorkerID),
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}

func (w *Worker) Ready() bool {
	w.readyMu.RLock()
	defer w.readyMu.RUnlock()
	return w.ready
}

// Run drains the queue with cfg.Concurrency slots until ctx is cancelled,
// then gives running jobs up to ShutdownGrace to finish.
func (w *Worker) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	for slot := 0; slot < w.cfg.Concurrency; slot++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			w.loop(ctx, slot)
		}(slot)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.reap(ctx)
	}()

	w.setReady(true)
	w.log.Info("worker_started", "concurrency", w.cfg.Concurrency)

	<-ctx.Done()
	w.setReady(false)
	w.log.Info("worker_stopping")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(w.cfg.ShutdownGrace):
		w.log.Warn("worker_shutdown_grace_exceeded", "grace", w.cfg.ShutdownGrace)
		return context.DeadlineExceeded
	}
}

func (w *Worker) loop(ctx context.Context, slot int) {
	for {
		if ctx.Err() != nil {
			return
		}

		worked, err := w.ProcessOne(ctx)
		if err != nil {
			w.log.Error("worker_step_failed", "slot", slot, "err", err)
		}
		if worked {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.cfg.PollInterval):
		}
	}
}

func (w *Worker) reap(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL)
			if err != nil {
				w.log.Error("requeue_stale_failed", "err", err)
				continue
			}
			if n > 0 {
				w.log.Warn("requeued_stale_jobs", "count", n)
			}
		}
	}
}
