package notifications

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

type ProtectedNotifierConfig struct {
	Timeout          time.Duration // hard timeout per send
	FailureThreshold int           // consecutive failures to open circuit
	Cooldown         time.Duration // how long to stay open before half-open
	HalfOpenMaxCalls int           // allow N trial calls in half-open
}

type circuitState string

const (
	stateClosed   circuitState = "closed"
	stateOpen     circuitState = "open"
	stateHalfOpen circuitState = "half_open"
)

// ProtectedNotifier guards a Notifier with a per-call timeout and a circuit
// breaker shared by every notification kind.
type ProtectedNotifier struct {
	inner Notifier
	cfg   ProtectedNotifierConfig
	mu    sync.Mutex
	now   func() time.Time

	state circuitState

	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
}

func NewProtectedNotifier(inner Notifier, cfg ProtectedNotifierConfig) *ProtectedNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &ProtectedNotifier{
		inner: inner,
		cfg:   cfg,
		now:   time.Now,
		state: stateClosed,
	}
}

func (n *ProtectedNotifier) SendRegistrationConfirmation(ctx context.Context, input RegistrationConfirmationInput) error {
	return n.call(ctx, func(ctx context.Context) error {
		return n.inner.SendRegistrationConfirmation(ctx, input)
	})
}

func (n *ProtectedNotifier) SubscribeNewsletter(ctx context.Context, input NewsletterSubscriptionInput) error {
	return n.call(ctx, func(ctx context.Context) error {
		return n.inner.SubscribeNewsletter(ctx, input)
	})
}

// State reports the breaker state, mostly for logs and tests.
func (n *ProtectedNotifier) State() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return string(n.state)
}

func (n *ProtectedNotifier) call(ctx context.Context, fn func(context.Context) error) error {
	// fail-fast gate
	if !n.allowRequest() {
		return ErrCircuitOpen
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	err := fn(sendCtx)

	n.afterRequest(err)

	return err
}

func (n *ProtectedNotifier) allowRequest() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case stateClosed:
		return true
	case stateOpen:
		// cooldown has passed? move to half open
		if n.now().Sub(n.openedAt) >= n.cfg.Cooldown {
			n.state = stateHalfOpen
			n.halfOpenInFlight = 1
			return true
		}
		return false
	case stateHalfOpen:
		if n.halfOpenInFlight >= n.cfg.HalfOpenMaxCalls {
			return false
		}
		n.halfOpenInFlight++
		return true

	default:
		return true
	}
}

func (n *ProtectedNotifier) afterRequest(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// half-open call just finished
	if n.state == stateHalfOpen && n.halfOpenInFlight > 0 {
		n.halfOpenInFlight--
	}

	if err == nil {
		// success => close circuit and reset counters
		n.consecutiveFailures = 0
		n.state = stateClosed
		return
	}

	// failure
	n.consecutiveFailures++

	// if half-open failed, reopen immediately
	if n.state == stateHalfOpen {
		n.state = stateOpen
		n.openedAt = n.now()
		return
	}

	// if failures reached threshold, open circuit
	if n.consecutiveFailures >= n.cfg.FailureThreshold {
		n.state = stateOpen
		n.openedAt = n.now()
	}
}
