package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/chancity/tournamenthub/internal/domain/job"
	"github.com/chancity/tournamenthub/internal/domain/registration"
	"github.com/chancity/tournamenthub/internal/jobs"
	"github.com/chancity/tournamenthub/internal/notifications"
	"github.com/chancity/tournamenthub/internal/queue/worker"
	"github.com/chancity/tournamenthub/internal/repo/memory"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingNotifier struct {
	mu            sync.Mutex
	err           error
	confirmations []notifications.RegistrationConfirmationInput
	subscriptions []notifications.NewsletterSubscriptionInput
}

func (n *recordingNotifier) SendRegistrationConfirmation(_ context.Context, in notifications.RegistrationConfirmationInput) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.confirmations = append(n.confirmations, in)
	return nil
}

func (n *recordingNotifier) SubscribeNewsletter(_ context.Context, in notifications.NewsletterSubscriptionInput) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.subscriptions = append(n.subscriptions, in)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedRegistrationJobs(t *testing.T, repo *memory.JobsRepo, newsletter bool) {
	t.Helper()

	reg := registration.NewFromCreateRequest(registration.CreateRegistrationRequest{
		TeamName:             "Thunder Bolts",
		Category:             "Corporate",
		ContactName:          "Asha Rao",
		Email:                "asha@example.com",
		Phone:                "9876543210",
		TermsAccepted:        true,
		NewsletterSubscribed: newsletter,
	})

	reqs, err := jobs.ForRegistration(reg)
	if err != nil {
		t.Fatalf("build jobs: %v", err)
	}
	for _, req := range reqs {
		if _, err := repo.Create(context.Background(), req); err != nil {
			t.Fatalf("create job: %v", err)
		}
	}
}

func newWorker(repo worker.JobsRepository, n notifications.Notifier) *worker.Worker {
	return worker.New(worker.Config{WorkerID: "test-1", PollInterval: 10 * time.Millisecond}, repo, n, quietLogger(), nil)
}

func TestProcessOne_RunsConfirmationAndNewsletter(t *testing.T) {
	repo := memory.NewJobsRepo()
	seedRegistrationJobs(t, repo, true)

	n := &recordingNotifier{}
	w := newWorker(repo, n)

	for i := 0; i < 2; i++ {
		worked, err := w.ProcessOne(context.Background())
		if err != nil || !worked {
			t.Fatalf("step %d: worked=%v err=%v", i, worked, err)
		}
	}

	worked, err := w.ProcessOne(context.Background())
	if err != nil || worked {
		t.Fatalf("queue should be empty: worked=%v err=%v", worked, err)
	}

	if len(n.confirmations) != 1 || n.confirmations[0].TeamName != "Thunder Bolts" {
		t.Fatalf("unexpected confirmations: %+v", n.confirmations)
	}
	if len(n.subscriptions) != 1 || n.subscriptions[0].Email != "asha@example.com" {
		t.Fatalf("unexpected subscriptions: %+v", n.subscriptions)
	}
	for _, j := range repo.All() {
		if j.Status != job.StatusDone {
			t.Fatalf("job %s: expected done, got %s", j.Type, j.Status)
		}
	}
}

func TestProcessOne_FailureReschedulesWithBackoff(t *testing.T) {
	repo := memory.NewJobsRepo()
	seedRegistrationJobs(t, repo, false)

	w := newWorker(repo, &recordingNotifier{err: errors.New("smtp down")})

	before := time.Now()
	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("process: %v", err)
	}

	all := repo.All()
	if len(all) != 1 {
		t.Fatalf("expected one job, got %d", len(all))
	}
	j := all[0]
	if j.Status != job.StatusPending || j.Attempts != 1 {
		t.Fatalf("expected pending retry with one attempt, got %s/%d", j.Status, j.Attempts)
	}
	if !j.RunAt.After(before.Add(time.Second)) {
		t.Fatalf("expected backoff delay, run_at=%s", j.RunAt)
	}
	if j.LastError == nil || *j.LastError != "smtp down" {
		t.Fatalf("expected last error recorded, got %v", j.LastError)
	}
}

func TestProcessOne_ExhaustedJobFails(t *testing.T) {
	repo := memory.NewJobsRepo()

	payload, err := jobs.EncodePayload(jobs.JobNewsletterSubscribe, jobs.NewsletterSubscribePayload{Email: "a@b.co"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := repo.Create(context.Background(), job.CreateRequest{
		Type:        string(jobs.JobNewsletterSubscribe),
		Payload:     payload,
		MaxAttempts: 1,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	w := newWorker(repo, &recordingNotifier{err: errors.New("smtp down")})
	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("process: %v", err)
	}

	if j := repo.All()[0]; j.Status != job.StatusFailed {
		t.Fatalf("expected failed, got %s", j.Status)
	}
}

func TestProcessOne_BadPayloadFailsImmediately(t *testing.T) {
	repo := memory.NewJobsRepo()
	if _, err := repo.Create(context.Background(), job.CreateRequest{
		Type:    string(jobs.JobRegistrationConfirmation),
		Payload: json.RawMessage(`{"registration_id":""}`),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	w := newWorker(repo, &recordingNotifier{})
	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("process: %v", err)
	}

	j := repo.All()[0]
	if j.Status != job.StatusFailed || j.Attempts != 1 {
		t.Fatalf("expected permanent failure after one attempt, got %s/%d", j.Status, j.Attempts)
	}
}

func TestRun_DrainsQueueAndStops(t *testing.T) {
	repo := memory.NewJobsRepo()
	seedRegistrationJobs(t, repo, true)

	n := &recordingNotifier{}
	w := worker.New(worker.Config{
		WorkerID:     "test-run",
		Concurrency:  2,
		PollInterval: 5 * time.Millisecond,
	}, repo, n, quietLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		done := 0
		for _, j := range repo.All() {
			if j.Status == job.StatusDone {
				done++
			}
		}
		if done == 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("run: %v", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.confirmations) != 1 || len(n.subscriptions) != 1 {
		t.Fatalf("expected both jobs executed once, got %d/%d", len(n.confirmations), len(n.subscriptions))
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	w := newWorker(memory.NewJobsRepo(), &recordingNotifier{})
	h := w.HealthHandler(nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz before Run: expected 503, got %d", rec.Code)
	}
}
