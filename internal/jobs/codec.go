package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/chancity/tournamenthub/internal/domain/job"
)

// EncodePayload checks that payload matches t and marshals it.
func EncodePayload(t JobType, payload any) (json.RawMessage, error) {
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}

	if err := ValidatePayload(t, payload); err != nil {
		return nil, err
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return json.RawMessage(b), nil
}

// DecodePayload unmarshals j.Payload into the typed payload for j.Type.
func DecodePayload(j job.Job) (any, error) {
	t := JobType(j.Type)
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}
	if len(j.Payload) == 0 {
		return nil, ErrInvalidJobPayload
	}

	var out any

	switch t {
	case JobRegistrationConfirmation:
		var p RegistrationConfirmationPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		out = p

	case JobNewsletterSubscribe:
		var p NewsletterSubscribePayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		out = p
	}

	if err := ValidatePayload(t, out); err != nil {
		return nil, err
	}

	return out, nil
}
