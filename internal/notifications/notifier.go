package notifications

import "context"

type RegistrationConfirmationInput struct {
	RegistrationID string
	TeamName       string
	ContactName    string
	Email          string
	Category       string
}

type NewsletterSubscriptionInput struct {
	RegistrationID string
	Email          string
	Name           string
}

// Notifier delivers the messages that follow a registration.
type Notifier interface {
	SendRegistrationConfirmation(ctx context.Context, input RegistrationConfirmationInput) error
	SubscribeNewsletter(ctx context.Context, input NewsletterSubscriptionInput) error
}
