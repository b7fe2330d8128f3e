package notifications

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type flakyNotifier struct {
	err   error
	calls int
}

func (f *flakyNotifier) SendRegistrationConfirmation(context.Context, RegistrationConfirmationInput) error {
	f.calls++
	return f.err
}

func (f *flakyNotifier) SubscribeNewsletter(context.Context, NewsletterSubscriptionInput) error {
	f.calls++
	return f.err
}

func TestProtectedNotifier_OpensAfterThreshold(t *testing.T) {
	inner := &flakyNotifier{err: errors.New("smtp down")}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{FailureThreshold: 2, Cooldown: time.Minute})

	ctx := context.Background()
	in := RegistrationConfirmationInput{RegistrationID: "r1", Email: "a@b.co"}

	_ = n.SendRegistrationConfirmation(ctx, in)
	_ = n.SubscribeNewsletter(ctx, NewsletterSubscriptionInput{Email: "a@b.co"})

	if n.State() != "open" {
		t.Fatalf("expected open circuit, got %s", n.State())
	}

	if err := n.SendRegistrationConfirmation(ctx, in); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("inner must not be called while open, calls=%d", inner.calls)
	}
}

func TestProtectedNotifier_HalfOpenRecovers(t *testing.T) {
	inner := &flakyNotifier{err: errors.New("smtp down")}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{FailureThreshold: 1, Cooldown: time.Second})

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return now }

	ctx := context.Background()
	_ = n.SendRegistrationConfirmation(ctx, RegistrationConfirmationInput{})
	if n.State() != "open" {
		t.Fatalf("expected open, got %s", n.State())
	}

	now = now.Add(2 * time.Second)
	inner.err = nil

	if err := n.SendRegistrationConfirmation(ctx, RegistrationConfirmationInput{}); err != nil {
		t.Fatalf("trial call should pass through, got %v", err)
	}
	if n.State() != "closed" {
		t.Fatalf("expected closed after successful trial, got %s", n.State())
	}
}

func TestProtectedNotifier_HalfOpenFailureReopens(t *testing.T) {
	inner := &flakyNotifier{err: errors.New("smtp down")}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{FailureThreshold: 1, Cooldown: time.Second})

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return now }

	ctx := context.Background()
	_ = n.SubscribeNewsletter(ctx, NewsletterSubscriptionInput{})

	now = now.Add(2 * time.Second)
	_ = n.SubscribeNewsletter(ctx, NewsletterSubscriptionInput{})

	if n.State() != "open" {
		t.Fatalf("failed trial should reopen, got %s", n.State())
	}
	if err := n.SubscribeNewsletter(ctx, NewsletterSubscriptionInput{}); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestProtectedNotifier_TimeoutApplied(t *testing.T) {
	slow := NewLogNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)), LogNotifierConfig{Delay: time.Second})
	n := NewProtectedNotifier(slow, ProtectedNotifierConfig{Timeout: 20 * time.Millisecond})

	err := n.SendRegistrationConfirmation(context.Background(), RegistrationConfirmationInput{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestLogNotifier_Failing(t *testing.T) {
	n := NewLogNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)), LogNotifierConfig{Failing: true})

	if err := n.SubscribeNewsletter(context.Background(), NewsletterSubscriptionInput{}); !errors.Is(err, ErrProviderDown) {
		t.Fatalf("expected ErrProviderDown, got %v", err)
	}
}
