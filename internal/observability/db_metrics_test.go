package observability

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestClassifyDBErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, "unique_violation"},
		{"wrapped pg", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "42P01"}), "pg_42P01"},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"connection", errors.New("connection refused"), "connection"},
		{"other", errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyDBErr(tt.err); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestObserveDB_CountsErrors(t *testing.T) {
	p := NewProm(prometheus.NewRegistry(), "test")

	_ = p.ObserveDB("registrations.insert", func() error { return nil })
	err := p.ObserveDB("registrations.insert", func() error { return errors.New("connection reset") })
	if err == nil {
		t.Fatalf("ObserveDB should return the wrapped function's error")
	}

	got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("registrations.insert", "connection"))
	if got != 1 {
		t.Fatalf("expected 1 connection error, got %v", got)
	}
}
