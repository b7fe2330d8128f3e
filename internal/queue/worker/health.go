package worker

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler serves liveness, readiness and metrics for the worker
// process. ping, when set, must succeed for the worker to be ready.
func (w *Worker) HealthHandler(ping func(ctx context.Context) error) http.Handler {
	r := gin.New()

	r.Use(gin.Recovery())

	// liveness: process is up
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// readiness: loops running and the queue store reachable
	r.GET("/readyz", func(c *gin.Context) {
		if !w.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}

		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
			defer cancel()

			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db": "unreachable"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
