package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/chancity/tournamenthub/internal/config"
	"github.com/chancity/tournamenthub/internal/db"
	"github.com/chancity/tournamenthub/internal/notifications"
	"github.com/chancity/tournamenthub/internal/observability"
	"github.com/chancity/tournamenthub/internal/queue/worker"
	"github.com/chancity/tournamenthub/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.AppName+"-worker", cfg.AppVersion, cfg.OTELEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
	}
	defer func() {
		tctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = shutdownTracer(tctx)
	}()

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Error("schema setup failed", "err", err)
		os.Exit(1)
	}

	prom := observability.NewProm(prometheus.DefaultRegisterer, "worker")
	jobsRepo := postgres.NewJobsRepo(pool, prom)

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(log, notifications.LogNotifierConfig{
			Delay:   time.Duration(getEnvInt("NOTIFIER_SLEEP_MS")) * time.Millisecond,
			Failing: os.Getenv("NOTIFIER_FAIL") == "1",
		}),
		notifications.ProtectedNotifierConfig{
			Timeout:          3 * time.Second,
			FailureThreshold: 3,
			Cooldown:         15 * time.Second,
		},
	)

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	w := worker.New(worker.Config{
		PollInterval:  250 * time.Millisecond,
		WorkerID:      workerID,
		Concurrency:   cfg.WorkerConcurrency,
		ShutdownGrace: 10 * time.Second,
	}, jobsRepo, notifier, log, prom)

	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerPort),
		Handler:           w.HealthHandler(pool.Ping),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("worker health server starting", "port", cfg.WorkerPort)
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health server failed", "err", err)
		}
	}()

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	hctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(hctx)

	log.Info("worker shutdown complete")
}

func getEnvInt(key string) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return n
}
