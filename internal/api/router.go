package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/onnwee/ideamatch/internal/match"
	"github.com/onnwee/ideamatch/internal/middleware"
)

// RouterConfig wires the handlers and middleware of the match server.
type RouterConfig struct {
	Logger       *slog.Logger
	Service      *match.Service
	MaxBodyBytes int64
	Health       HealthHandlersConfig

	// Metrics records HTTP and rate limit metrics (optional).
	Metrics *middleware.Metrics
	// Gatherer backs GET /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// RateLimitStore enables rate limiting of POST /match (optional).
	RateLimitStore middleware.RateLimitStore
	RateLimit      middleware.RateLimitConfig

	CORS      middleware.CORSConfig
	Profiling middleware.ProfilingConfig

	// TracingServiceName enables server spans when non-empty.
	TracingServiceName string
}

// NewRouter builds the HTTP handler for the match server.
//
// Middleware order, outermost first: request ID, tracing, logging, panic
// recovery, real IP, HTTP metrics, CORS, profiling.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.TracingServiceName != "" {
		r.Use(middleware.Tracing(cfg.TracingServiceName))
	}
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	if cfg.Metrics != nil {
		r.Use(middleware.HTTPMetrics(cfg.Metrics))
	}
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Profiling(cfg.Profiling))

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	health := NewHealthHandlers(cfg.Health)
	r.Get("/", Root)
	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	matchHandlers := NewMatchHandlers(cfg.Service, cfg.MaxBodyBytes)
	if cfg.RateLimitStore != nil {
		limiter := middleware.RateLimiter(cfg.RateLimitStore, cfg.RateLimit, middleware.IPKeyFunc(),
			middleware.RateLimitOptions{Metrics: cfg.Metrics, Rejected: RateLimited})
		r.With(limiter).Post("/match", matchHandlers.Match)
	} else {
		r.Post("/match", matchHandlers.Match)
	}

	return r
}
