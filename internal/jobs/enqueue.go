package jobs

import (
	"time"

	"github.com/chancity/tournamenthub/internal/domain/job"
	"github.com/chancity/tournamenthub/internal/domain/registration"
)

const defaultMaxAttempts = 10

// ForRegistration builds the follow-up jobs for a new registration: always a
// confirmation, plus a newsletter subscription when the team opted in.
// Idempotency keys are derived from the registration id.
func ForRegistration(reg registration.Registration) ([]job.CreateRequest, error) {
	now := time.Now().UTC()

	confirm, err := EncodePayload(JobRegistrationConfirmation, RegistrationConfirmationPayload{
		RegistrationID: reg.ID,
		TeamName:       reg.TeamName,
		ContactName:    reg.ContactName,
		Email:          reg.Email,
		Category:       reg.Category,
		RequestedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	confirmKey := string(JobRegistrationConfirmation) + ":" + reg.ID
	out := []job.CreateRequest{{
		Type:           string(JobRegistrationConfirmation),
		Payload:        confirm,
		RunAt:          now,
		MaxAttempts:    defaultMaxAttempts,
		IdempotencyKey: &confirmKey,
	}}

	if !reg.NewsletterSubscribed {
		return out, nil
	}

	sub, err := EncodePayload(JobNewsletterSubscribe, NewsletterSubscribePayload{
		RegistrationID: reg.ID,
		Email:          reg.Email,
		Name:           reg.ContactName,
	})
	if err != nil {
		return nil, err
	}

	subKey := string(JobNewsletterSubscribe) + ":" + reg.ID
	out = append(out, job.CreateRequest{
		Type:           string(JobNewsletterSubscribe),
		Payload:        sub,
		RunAt:          now,
		MaxAttempts:    defaultMaxAttempts,
		IdempotencyKey: &subKey,
	})

	return out, nil
}
