package jobs

import "time"

// RegistrationConfirmationPayload carries what the confirmation message
// needs so the worker does not have to load the registration again.
type RegistrationConfirmationPayload struct {
	RegistrationID string    `json:"registration_id"`
	TeamName       string    `json:"team_name"`
	ContactName    string    `json:"contact_name"`
	Email          string    `json:"email"`
	Category       string    `json:"category"`
	RequestedAt    time.Time `json:"requested_at"`
}

type NewsletterSubscribePayload struct {
	RegistrationID string `json:"registration_id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
}
