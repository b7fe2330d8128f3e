package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/chancity/tournamenthub/internal/domain/job"
	"github.com/chancity/tournamenthub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JobsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewJobsRepo(pool *pgxpool.Pool, prom *observability.Prom) *JobsRepo {
	return &JobsRepo{pool: pool, prom: prom}
}

func (r *JobsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const insertJobSQL = `
	INSERT INTO jobs (
		id, type, payload, status, attempts, max_attempts, run_at,
		locked_at, locked_by, last_error, idempotency_key, created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	ON CONFLICT (idempotency_key) DO NOTHING
`

const jobColumns = `id, type, payload, status, attempts, max_attempts, run_at,
	locked_at, locked_by, last_error, idempotency_key, created_at, updated_at`

func jobArgs(j job.Job) []any {
	return []any{
		j.ID, j.Type, j.Payload, string(j.Status), j.Attempts, j.MaxAttempts, j.RunAt,
		j.LockedAt, j.LockedBy, j.LastError, j.IdempotencyKey, j.CreatedAt, j.UpdatedAt,
	}
}

func scanJob(row pgx.Row) (job.Job, error) {
	var j job.Job
	var status string

	err := row.Scan(
		&j.ID, &j.Type, &j.Payload, &status, &j.Attempts, &j.MaxAttempts, &j.RunAt,
		&j.LockedAt, &j.LockedBy, &j.LastError, &j.IdempotencyKey, &j.CreatedAt, &j.UpdatedAt,
	)
	j.Status = job.Status(status)

	return j, err
}

func (r *JobsRepo) Create(ctx context.Context, req job.CreateRequest) (job.Job, error) {
	j := job.New(req)

	err := r.observe("jobs.create", func() error {
		_, err := r.pool.Exec(ctx, insertJobSQL, jobArgs(j)...)
		return err
	})
	if err != nil {
		return job.Job{}, err
	}

	return j, nil
}

// CreateTx enqueues inside the caller's transaction so the job only exists if
// the caller commits.
func (r *JobsRepo) CreateTx(ctx context.Context, tx pgx.Tx, req job.CreateRequest) (job.Job, error) {
	j := job.New(req)

	err := r.observe("jobs.create_tx", func() error {
		_, err := tx.Exec(ctx, insertJobSQL, jobArgs(j)...)
		return err
	})
	if err != nil {
		return job.Job{}, err
	}

	return j, nil
}

// ClaimNext locks the oldest runnable job for workerID using SKIP LOCKED.
func (r *JobsRepo) ClaimNext(ctx context.Context, workerID string) (job.Job, error) {
	var j job.Job

	err := r.observe("jobs.claim_next", func() error {
		var err error
		j, err = scanJob(r.pool.QueryRow(ctx, `
		WITH next AS (
			SELECT id
			FROM jobs
			WHERE status = 'pending'
			  AND run_at <= NOW()
			  AND attempts < max_attempts
			ORDER BY run_at ASC, created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		UPDATE jobs
		SET status = 'processing',
		    locked_at = NOW(),
		    locked_by = $1,
		    updated_at = NOW()
		WHERE id = (SELECT id FROM next)
		RETURNING `+jobColumns, workerID))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.Job{}, job.ErrJobNotFound
		}
		return job.Job{}, err
	}

	return j, nil
}

func (r *JobsRepo) MarkDone(ctx context.Context, id string) error {
	return r.execOne(ctx, "jobs.mark_done", `
		UPDATE jobs
		SET status = 'done',
		    attempts = attempts + 1,
		    locked_at = NULL,
		    locked_by = NULL,
		    last_error = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`, id)
}

// Reschedule puts a failed attempt back to pending at runAt.
func (r *JobsRepo) Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error {
	return r.execOne(ctx, "jobs.reschedule", `
		UPDATE jobs
		SET status = 'pending',
		    attempts = attempts + 1,
		    run_at = $2,
		    locked_at = NULL,
		    locked_by = NULL,
		    last_error = $3,
		    updated_at = NOW()
		WHERE id = $1
	`, id, runAt, errMsg)
}

func (r *JobsRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	return r.execOne(ctx, "jobs.mark_failed", `
		UPDATE jobs
		SET status = 'failed',
		    attempts = attempts + 1,
		    locked_at = NULL,
		    locked_by = NULL,
		    last_error = $2,
		    updated_at = NOW()
		WHERE id = $1
	`, id, errMsg)
}

// RequeueStaleProcessing releases jobs whose worker died mid-run.
func (r *JobsRepo) RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error) {
	secs := int64(lockTTL.Seconds())
	if secs <= 0 {
		secs = 30
	}

	var rows int64
	err := r.observe("jobs.requeue_stale", func() error {
		tag, err := r.pool.Exec(ctx, `
		UPDATE jobs
		SET status = 'pending',
		    locked_at = NULL,
		    locked_by = NULL,
		    updated_at = NOW()
		WHERE status = 'processing'
		  AND locked_at IS NOT NULL
		  AND locked_at < NOW() - ($1 * INTERVAL '1 second')
	`, secs)
		if err != nil {
			return err
		}
		rows = tag.RowsAffected()
		return nil
	})

	return rows, err
}

func (r *JobsRepo) execOne(ctx context.Context, op, sql string, args ...any) error {
	var tag pgconn.CommandTag

	err := r.observe(op, func() error {
		var err error
		tag, err = r.pool.Exec(ctx, sql, args...)
		return err
	})
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return job.ErrJobNotFound
	}
	return nil
}
