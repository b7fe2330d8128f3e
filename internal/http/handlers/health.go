package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/chancity/tournamenthub/internal/config"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	ping func(ctx context.Context) error
	cfg  config.Config
}

// NewHealthHandler takes the readiness probe; nil means always ready.
func NewHealthHandler(cfg config.Config, ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping, cfg: cfg}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.ping != nil {
		cctx, cancel := context.WithTimeout(ctx.Request.Context(), time.Second)
		defer cancel()

		if err := h.ping(cctx); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Health is the monitoring endpoint: status, version and environment.
func (h *HealthHandler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
		"version":     h.cfg.AppVersion,
		"environment": h.cfg.Env,
	})
}

func (h *HealthHandler) Root(ctx *gin.Context) {
	docs := "disabled in production"
	if h.cfg.Debug {
		docs = "/docs"
	}

	ctx.JSON(http.StatusOK, gin.H{
		"name":          h.cfg.AppName,
		"version":       h.cfg.AppVersion,
		"status":        "running",
		"documentation": docs,
	})
}
