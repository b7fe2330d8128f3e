package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chancity/tournamenthub/internal/domain/job"
)

// JobsRepo is an in-process job table. It mirrors the claim and retry
// semantics of the postgres repo closely enough for the worker to run on it.
type JobsRepo struct {
	mu    sync.Mutex
	items map[string]job.Job
	keys  map[string]string
}

func NewJobsRepo() *JobsRepo {
	return &JobsRepo{
		items: make(map[string]job.Job),
		keys:  make(map[string]string),
	}
}

func (r *JobsRepo) Create(_ context.Context, req job.CreateRequest) (job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.IdempotencyKey != nil {
		if id, ok := r.keys[*req.IdempotencyKey]; ok {
			return r.items[id], nil
		}
	}

	j := job.New(req)
	r.items[j.ID] = j
	if j.IdempotencyKey != nil {
		r.keys[*j.IdempotencyKey] = j.ID
	}

	return j, nil
}

func (r *JobsRepo) ClaimNext(_ context.Context, workerID string) (job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	ready := make([]job.Job, 0)
	for _, j := range r.items {
		if j.Status == job.StatusPending && !j.RunAt.After(now) && j.Attempts < j.MaxAttempts {
			ready = append(ready, j)
		}
	}
	if len(ready) == 0 {
		return job.Job{}, job.ErrJobNotFound
	}

	sort.Slice(ready, func(a, b int) bool {
		if ready[a].RunAt.Equal(ready[b].RunAt) {
			return ready[a].CreatedAt.Before(ready[b].CreatedAt)
		}
		return ready[a].RunAt.Before(ready[b].RunAt)
	})

	j := ready[0]
	j.Status = job.StatusProcessing
	j.LockedAt = &now
	j.LockedBy = &workerID
	j.UpdatedAt = now
	r.items[j.ID] = j

	return j, nil
}

func (r *JobsRepo) update(id string, fn func(j *job.Job)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.items[id]
	if !ok {
		return job.ErrJobNotFound
	}

	fn(&j)
	j.LockedAt = nil
	j.LockedBy = nil
	j.UpdatedAt = time.Now().UTC()
	r.items[id] = j

	return nil
}

func (r *JobsRepo) MarkDone(_ context.Context, id string) error {
	return r.update(id, func(j *job.Job) {
		j.Status = job.StatusDone
		j.Attempts++
		j.LastError = nil
	})
}

func (r *JobsRepo) Reschedule(_ context.Context, id string, runAt time.Time, errMsg string) error {
	return r.update(id, func(j *job.Job) {
		j.Status = job.StatusPending
		j.Attempts++
		j.RunAt = runAt
		j.LastError = &errMsg
	})
}

func (r *JobsRepo) MarkFailed(_ context.Context, id string, errMsg string) error {
	return r.update(id, func(j *job.Job) {
		j.Status = job.StatusFailed
		j.Attempts++
		j.LastError = &errMsg
	})
}

func (r *JobsRepo) RequeueStaleProcessing(_ context.Context, lockTTL time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().UTC().Add(-lockTTL)
	var n int64
	for id, j := range r.items {
		if j.Status == job.StatusProcessing && j.LockedAt != nil && j.LockedAt.Before(cutoff) {
			j.Status = job.StatusPending
			j.LockedAt = nil
			j.LockedBy = nil
			r.items[id] = j
			n++
		}
	}

	return n, nil
}

// All returns a snapshot of every job, oldest first.
func (r *JobsRepo) All() []job.Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]job.Job, 0, len(r.items))
	for _, j := range r.items {
		out = append(out, j)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })

	return out
}
