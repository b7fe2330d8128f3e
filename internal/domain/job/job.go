package job

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

var ErrJobNotFound = errors.New("job not found")

type Job struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Payload        json.RawMessage `json:"payload"`
	Status         Status          `json:"status"`
	Attempts       int             `json:"attempts"`
	MaxAttempts    int             `json:"max_attempts"`
	RunAt          time.Time       `json:"run_at"`
	LockedAt       *time.Time      `json:"locked_at,omitempty"`
	LockedBy       *string         `json:"locked_by,omitempty"`
	LastError      *string         `json:"last_error,omitempty"`
	IdempotencyKey *string         `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Exhausted reports whether another failure should be final.
func (j Job) Exhausted() bool {
	return j.Attempts >= j.MaxAttempts
}

type CreateRequest struct {
	Type           string
	Payload        json.RawMessage
	RunAt          time.Time
	MaxAttempts    int
	IdempotencyKey *string
}

func New(req CreateRequest) Job {
	now := time.Now().UTC()

	maxA := req.MaxAttempts
	if maxA <= 0 {
		maxA = 10
	}

	runAt := req.RunAt
	if runAt.IsZero() {
		runAt = now
	}

	return Job{
		ID:             uuid.NewString(),
		Type:           req.Type,
		Payload:        req.Payload,
		Status:         StatusPending,
		Attempts:       0,
		MaxAttempts:    maxA,
		RunAt:          runAt,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
