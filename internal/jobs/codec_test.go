package jobs

import (
	"errors"
	"testing"
	"time"

	"github.com/chancity/tournamenthub/internal/domain/job"
)

func TestEncodeDecode_RegistrationConfirmation(t *testing.T) {
	payload := RegistrationConfirmationPayload{
		RegistrationID: "reg-123",
		TeamName:       "Alpha",
		Email:          "coach@example.com",
		RequestedAt:    time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}

	raw, err := EncodePayload(JobRegistrationConfirmation, payload)
	if err != nil {
		t.Fatalf("EncodePayload error: %v", err)
	}

	j := job.New(job.CreateRequest{Type: string(JobRegistrationConfirmation), Payload: raw})

	decoded, err := DecodePayload(j)
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}

	p, ok := decoded.(RegistrationConfirmationPayload)
	if !ok {
		t.Fatalf("expected RegistrationConfirmationPayload, got %T", decoded)
	}
	if p.RegistrationID != "reg-123" || p.TeamName != "Alpha" || !p.RequestedAt.Equal(payload.RequestedAt) {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestEncodePayload_TypeMismatch(t *testing.T) {
	_, err := EncodePayload(JobNewsletterSubscribe, RegistrationConfirmationPayload{RegistrationID: "x", Email: "a@b.co"})
	if !errors.Is(err, ErrPayloadTypeMismatch) {
		t.Fatalf("expected ErrPayloadTypeMismatch, got %v", err)
	}
}

func TestEncodePayload_UnknownType(t *testing.T) {
	_, err := EncodePayload(JobType("export.csv"), NewsletterSubscribePayload{Email: "a@b.co"})
	if !errors.Is(err, ErrInvalidJobType) {
		t.Fatalf("expected ErrInvalidJobType, got %v", err)
	}
}

func TestDecodePayload_Invalid(t *testing.T) {
	tests := []struct {
		name string
		job  job.Job
		want error
	}{
		{"empty payload", job.Job{Type: string(JobNewsletterSubscribe)}, ErrInvalidJobPayload},
		{"bad json", job.Job{Type: string(JobNewsletterSubscribe), Payload: []byte(`{"email":`)}, ErrInvalidJobPayload},
		{"missing email", job.Job{Type: string(JobNewsletterSubscribe), Payload: []byte(`{"name":"Sam"}`)}, ErrInvalidJobPayload},
		{"unknown type", job.Job{Type: "nope", Payload: []byte(`{}`)}, ErrInvalidJobType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePayload(tt.job)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v want %v", err, tt.want)
			}
		})
	}
}
