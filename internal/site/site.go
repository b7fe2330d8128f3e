// Package site serves the public Chancity website and its registration form.
package site

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/chancity/tournamenthub/internal/backend"
	"github.com/chancity/tournamenthub/internal/config"
	"github.com/chancity/tournamenthub/internal/domain/registration"
	"github.com/chancity/tournamenthub/internal/http/middlewares"
	"github.com/chancity/tournamenthub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const maxFormBytes = 64 << 10

// Backend is the part of the API client the site uses.
type Backend interface {
	Submit(ctx context.Context, req registration.CreateRegistrationRequest) backend.Result
	RegistrationOpen(ctx context.Context) (bool, error)
	Health(ctx context.Context) error
}

type Deps struct {
	Backend Backend
	Prom    *observability.Prom
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn("invalid trusted proxies, forwarded headers ignored", "err", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(cfg.AppName + "-site"))
	r.Use(middlewares.RequestLogger(log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SiteSecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(maxFormBytes))

	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	r.StaticFS("/static", http.FS(static))

	h := &Handler{
		backend:  deps.Backend,
		inflight: NewInFlight(),
		prom:     deps.Prom,
		log:      log,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/", h.staticPage("index.html", "Home", "home"))
	r.GET("/about", h.staticPage("about.html", "About", "about"))
	r.GET("/tournaments", h.staticPage("tournaments.html", "Tournaments", "tournaments"))
	r.GET("/contact", h.ContactPage)
	r.POST("/contact", h.SubmitContact)
	r.GET("/register", h.RegisterPage)
	r.POST("/register", h.SubmitRegistration)

	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "notfound.html", newPage("Page not found", ""))
	})

	return r
}

type Handler struct {
	backend  Backend
	inflight *InFlight
	prom     *observability.Prom
	log      *slog.Logger
}

func (h *Handler) staticPage(name, title, active string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name, newPage(title, active))
	}
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz reports ready only while the registration API answers.
func (h *Handler) Readyz(c *gin.Context) {
	if err := h.backend.Health(c.Request.Context()); err != nil {
		h.log.WarnContext(c.Request.Context(), "backend_not_ready", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "backend": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *Handler) observe(result string) {
	if h.prom != nil {
		h.prom.ObserveSubmission(result)
	}
}
