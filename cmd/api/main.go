package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chancity/tournamenthub/internal/auth"
	"github.com/chancity/tournamenthub/internal/cache"
	"github.com/chancity/tournamenthub/internal/config"
	"github.com/chancity/tournamenthub/internal/db"
	httpx "github.com/chancity/tournamenthub/internal/http"
	"github.com/chancity/tournamenthub/internal/notifications"
	"github.com/chancity/tournamenthub/internal/observability"
	"github.com/chancity/tournamenthub/internal/queue/worker"
	"github.com/chancity/tournamenthub/internal/redisclient"
	"github.com/chancity/tournamenthub/internal/repo/memory"
	"github.com/chancity/tournamenthub/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.AppName, cfg.AppVersion, cfg.OTELEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
	}
	defer func() {
		tctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = shutdownTracer(tctx)
	}()

	prom := observability.NewProm(prometheus.DefaultRegisterer, "api")

	deps := httpx.Deps{
		JWT:  auth.NewManager(cfg.JWTSecret, cfg.JWTAccessTTL()),
		Prom: prom,
	}

	var settingsStore cache.SettingsStore

	switch cfg.Storage {
	case "memory":
		jobsRepo := memory.NewJobsRepo()
		users := memory.NewUsersRepo()

		deps.Registrations = memory.NewRegistrationsRepo(jobsRepo)
		deps.Users = users
		deps.Ping = func(context.Context) error { return nil }
		settingsStore = memory.NewSettingsRepo()

		if err := db.EnsureAdminUser(ctx, users, cfg); err != nil {
			log.Error("admin seed failed", "err", err)
		}

		// nothing outside this process can see the in-memory queue, so drain it here
		notifier := notifications.NewProtectedNotifier(
			notifications.NewLogNotifier(log, notifications.LogNotifierConfig{}),
			notifications.ProtectedNotifierConfig{},
		)
		w := worker.New(worker.Config{WorkerID: "api-inprocess", Concurrency: 1}, jobsRepo, notifier, log, prom)
		go func() {
			if err := w.Run(ctx); err != nil {
				log.Error("in-process worker stopped", "err", err)
			}
		}()

		log.Warn("using in-memory storage; data is lost on restart")

	default:
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

		users := postgres.NewUsersRepo(pool)
		jobsRepo := postgres.NewJobsRepo(pool, prom)

		deps.Registrations = postgres.NewRegistrationsRepo(pool, prom, jobsRepo)
		deps.Users = users
		deps.Ping = pool.Ping
		settingsStore = postgres.NewSettingsRepo(pool, prom)

		if err := db.EnsureAdminUser(ctx, users, cfg); err != nil {
			log.Error("admin seed failed", "err", err)
		}
	}

	var settingsCache cache.SettingsCache = cache.NewMemorySettings(cfg.SettingsCacheTTL)
	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pctx); err != nil {
			log.Warn("redis unreachable at startup; cache reads will miss until it recovers", "err", err)
		}
		cancel()

		settingsCache = cache.NewRedisSettings(rdb.Raw(), "tournamenthub", cfg.SettingsCacheTTL, log)
	}
	deps.Settings = cache.NewCachedSettings(settingsStore, settingsCache)

	router := httpx.NewRouter(log, cfg, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return
	}

	log.Info("shutdown complete")
}
