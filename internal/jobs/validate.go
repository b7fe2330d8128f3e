package jobs

import "strings"

// ValidatePayload performs minimal validation on typed payloads.
func ValidatePayload(t JobType, payload any) error {
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }

	switch t {
	case JobRegistrationConfirmation:
		var p RegistrationConfirmationPayload
		switch v := payload.(type) {
		case RegistrationConfirmationPayload:
			p = v
		case *RegistrationConfirmationPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if blank(p.RegistrationID) || blank(p.Email) {
			return ErrInvalidJobPayload
		}
		return nil

	case JobNewsletterSubscribe:
		var p NewsletterSubscribePayload
		switch v := payload.(type) {
		case NewsletterSubscribePayload:
			p = v
		case *NewsletterSubscribePayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if blank(p.Email) {
			return ErrInvalidJobPayload
		}
		return nil

	default:
		return ErrInvalidJobType
	}
}
