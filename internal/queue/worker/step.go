package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chancity/tournamenthub/internal/domain/job"
	"github.com/chancity/tournamenthub/internal/jobs"
	"github.com/chancity/tournamenthub/internal/notifications"
)

// ProcessOne claims and runs at most one job. worked is false when the
// queue had nothing ready.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("claim: %w", err)
	}

	// a claimed job is finished even if shutdown starts meanwhile
	runCtx, cancelRun := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.JobTimeout)
	defer cancelRun()

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()
	err = w.execute(runCtx, j)

	if err != nil {
		result := w.handleFailure(runCtx, j, err)
		w.observe(j.Type, result, time.Since(start))
		return true, nil
	}

	if err := w.repo.MarkDone(runCtx, j.ID); err != nil {
		_ = w.repo.MarkFailed(runCtx, j.ID, "mark_done_failed: "+err.Error())
		w.observe(j.Type, "failed", time.Since(start))
		return true, fmt.Errorf("mark done %s: %w", j.ID, err)
	}

	w.observe(j.Type, "done", time.Since(start))
	w.log.InfoContext(runCtx, "job_done", "job_id", j.ID, "job_type", j.Type, "attempt", j.Attempts+1)
	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	payload, err := jobs.DecodePayload(j)
	if err != nil {
		return permanent(err)
	}

	switch p := payload.(type) {
	case jobs.RegistrationConfirmationPayload:
		return w.notifier.SendRegistrationConfirmation(ctx, notifications.RegistrationConfirmationInput{
			RegistrationID: p.RegistrationID,
			TeamName:       p.TeamName,
			ContactName:    p.ContactName,
			Email:          p.Email,
			Category:       p.Category,
		})

	case jobs.NewsletterSubscribePayload:
		return w.notifier.SubscribeNewsletter(ctx, notifications.NewsletterSubscriptionInput{
			RegistrationID: p.RegistrationID,
			Email:          p.Email,
			Name:           p.Name,
		})

	default:
		return permanent(fmt.Errorf("%w: %s", jobs.ErrInvalidJobType, j.Type))
	}
}

// handleFailure reschedules j with backoff, or marks it failed when retries
// are exhausted or the error can never succeed. It returns the metric result.
func (w *Worker) handleFailure(ctx context.Context, j job.Job, cause error) string {
	attempt := j.Attempts + 1
	msg := cause.Error()

	var perm *permanentError
	if errors.As(cause, &perm) || attempt >= j.MaxAttempts {
		if err := w.repo.MarkFailed(ctx, j.ID, msg); err != nil {
			w.log.ErrorContext(ctx, "job_mark_failed_failed", "job_id", j.ID, "err", err)
		}
		w.log.ErrorContext(ctx, "job_failed", "job_id", j.ID, "job_type", j.Type, "attempt", attempt, "err", cause)
		return "failed"
	}

	delay := ExponentialBackoff(j.Attempts)
	if errors.Is(cause, notifications.ErrCircuitOpen) {
		delay = max(delay, 15*time.Second)
	}

	if err := w.repo.Reschedule(ctx, j.ID, time.Now().UTC().Add(delay), msg); err != nil {
		w.log.ErrorContext(ctx, "job_reschedule_failed", "job_id", j.ID, "err", err)
	}
	w.log.WarnContext(ctx, "job_retry", "job_id", j.ID, "job_type", j.Type, "attempt", attempt, "delay", delay, "err", cause)
	return "retry"
}

func (w *Worker) observe(jobType, result string, d time.Duration) {
	if w.prom != nil {
		w.prom.ObserveJob(jobType, result, d)
	}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return &permanentError{err: err} }
