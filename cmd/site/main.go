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

	"github.com/chancity/tournamenthub/internal/backend"
	"github.com/chancity/tournamenthub/internal/config"
	"github.com/chancity/tournamenthub/internal/observability"
	"github.com/chancity/tournamenthub/internal/site"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.AppName+"-site", cfg.AppVersion, cfg.OTELEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
	}
	defer func() {
		tctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = shutdownTracer(tctx)
	}()

	client := backend.New(cfg.BackendURL, cfg.BackendTimeout, backend.WithLogger(log))

	router := site.NewRouter(log, cfg, site.Deps{
		Backend: client,
		Prom:    observability.NewProm(prometheus.DefaultRegisterer, "site"),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.SitePort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// a submission may wait up to BackendTimeout on the API
		WriteTimeout: cfg.BackendTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("site starting", "port", cfg.SitePort, "backend", cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("site server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("site shutting down")

	shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return
	}

	log.Info("shutdown complete")
}
