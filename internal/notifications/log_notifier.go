package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var ErrProviderDown = errors.New("notification provider down")

// LogNotifierConfig lets local runs simulate a slow or failing provider.
type LogNotifierConfig struct {
	Delay   time.Duration
	Failing bool
}

// LogNotifier writes notifications to the log instead of a mail provider.
type LogNotifier struct {
	log *slog.Logger
	cfg LogNotifierConfig
}

func NewLogNotifier(log *slog.Logger, cfg LogNotifierConfig) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log, cfg: cfg}
}

func (n *LogNotifier) simulate(ctx context.Context) error {
	if n.cfg.Delay > 0 {
		select {
		case <-time.After(n.cfg.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if n.cfg.Failing {
		return ErrProviderDown
	}
	return nil
}

func (n *LogNotifier) SendRegistrationConfirmation(ctx context.Context, in RegistrationConfirmationInput) error {
	if err := n.simulate(ctx); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.registration_confirmation",
		"registration_id", in.RegistrationID,
		"team_name", in.TeamName,
		"email", in.Email,
		"category", in.Category,
	)
	return nil
}

func (n *LogNotifier) SubscribeNewsletter(ctx context.Context, in NewsletterSubscriptionInput) error {
	if err := n.simulate(ctx); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.newsletter_subscribe",
		"registration_id", in.RegistrationID,
		"email", in.Email,
	)
	return nil
}
