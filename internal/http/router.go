package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/chancity/tournamenthub/internal/auth"
	"github.com/chancity/tournamenthub/internal/config"
	"github.com/chancity/tournamenthub/internal/domain/user"
	"github.com/chancity/tournamenthub/internal/http/handlers"
	"github.com/chancity/tournamenthub/internal/http/middlewares"
	"github.com/chancity/tournamenthub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

type RegistrationStore interface {
	handlers.RegistrationCreator
	handlers.RegistrationAdminStore
}

// Deps are the collaborators the API needs. Storage may be postgres or
// in-memory; the router does not care which.
type Deps struct {
	Registrations RegistrationStore
	Settings      handlers.SettingsStore
	Users         handlers.UserReader
	JWT           *auth.Manager
	Prom          *observability.Prom
	Ping          func(ctx context.Context) error
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.RegisterValidators()

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn("invalid trusted proxies, forwarded headers ignored", "err", err)
		_ = r.SetTrustedProxies(nil)
	}

	origins := cfg.CORSOrigins
	if cfg.Debug {
		origins = append([]string{"*"}, origins...)
	}

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(cfg.AppName))
	r.Use(middlewares.RequestLogger(log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(origins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())

	health := handlers.NewHealthHandler(cfg, deps.Ping)
	r.GET("/", health.Root)
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Debug {
		r.GET("/docs", handlers.Docs)
		r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)
	}

	regHandler := handlers.NewRegistrationHandler(deps.Registrations, deps.Settings, log)
	settingsHandler := handlers.NewSettingsHandler(deps.Settings, log)
	adminHandler := handlers.NewAdminRegistrationsHandler(deps.Registrations, log)
	authHandler := handlers.NewAuthHandler(deps.Users, deps.JWT, log)

	v1 := r.Group("/api/v1")
	{
		create := []gin.HandlerFunc{}
		if cfg.RateLimitEnabled {
			limiter := middlewares.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
			create = append(create, limiter.RateLimiterMiddleware(middlewares.KeyByIP))
		}
		create = append(create, regHandler.Create)

		v1.POST("/registrations", create...)
		v1.GET("/registrations/:id", regHandler.Get)
	}

	admin := r.Group("/api/admin")
	{
		loginLimiter := middlewares.NewRateLimiter(5, time.Minute)
		admin.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
		admin.GET("/settings/public/registration-status", settingsHandler.PublicStatus)

		authMW := middlewares.NewAuthMiddleware(deps.JWT)
		protected := admin.Group("")
		protected.Use(authMW.RequireAuth(), authMW.RequireRole(user.RoleAdmin))

		protected.GET("/registrations", adminHandler.List)
		protected.GET("/registrations/:id", adminHandler.Get)
		protected.PATCH("/registrations/:id", adminHandler.UpdateStatus)
		protected.DELETE("/registrations/:id", adminHandler.Delete)
		protected.GET("/stats", adminHandler.Stats)
		protected.GET("/settings", settingsHandler.Get)
		protected.PATCH("/settings", settingsHandler.Update)
	}

	return r
}
