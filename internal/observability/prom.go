package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tournament"

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// DB
	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	// Jobs (worker)
	JobDuration  *prometheus.HistogramVec
	JobResults   *prometheus.CounterVec
	JobsInFlight prometheus.Gauge

	// Site -> API submissions, result=success|validation|server|network
	SubmissionsTotal *prometheus.CounterVec
}

// NewProm registers the collectors on reg. component ends up as a constant
// label so api, site and worker series can share one dashboard.
func NewProm(reg prometheus.Registerer, component string) *Prom {
	constLabels := prometheus.Labels{"component": component}

	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "http_requests_total",
				Help:        "Total HTTP requests processed",
				ConstLabels: constLabels,
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request latency distributions.",
				Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
				ConstLabels: constLabels,
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "http_in_flight_requests",
				Help:        "Current number of in-flight HTTP requests.",
				ConstLabels: constLabels,
			},
			[]string{"method", "route"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "db",
				Name:        "query_duration_seconds",
				Help:        "DB operation latency (logical op, not raw SQL)",
				Buckets:     []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5},
				ConstLabels: constLabels,
			},
			[]string{"op", "status"},
		),
		DbErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "db",
				Name:        "errors_total",
				Help:        "DB errors by logical op and class.",
				ConstLabels: constLabels,
			},
			[]string{"op", "class"},
		),
		JobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "jobs",
				Name:        "duration_seconds",
				Help:        "Job execution duration by type and result",
				Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
				ConstLabels: constLabels,
			},
			[]string{"job_type", "result"}, // result=done|retry|failed
		),
		JobResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "jobs",
				Name:        "results_total",
				Help:        "Job outcomes by type and result.",
				ConstLabels: constLabels,
			},
			[]string{"job_type", "result"},
		),
		JobsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "jobs",
				Name:        "in_flight",
				Help:        "Current number of executing jobs in this process.",
				ConstLabels: constLabels,
			},
		),
		SubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "site",
				Name:        "submissions_total",
				Help:        "Registration form submissions by outcome.",
				ConstLabels: constLabels,
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.DbQueryDuration, p.DbErrorsTotal,
		p.JobDuration, p.JobResults, p.JobsInFlight,
		p.SubmissionsTotal,
	)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}

// ObserveJob records one job execution.
func (p *Prom) ObserveJob(jobType, result string, d time.Duration) {
	p.JobResults.WithLabelValues(jobType, result).Inc()
	p.JobDuration.WithLabelValues(jobType, result).Observe(d.Seconds())
}

// ObserveSubmission counts one registration form outcome.
func (p *Prom) ObserveSubmission(result string) {
	p.SubmissionsTotal.WithLabelValues(result).Inc()
}
