package httpserver

import (
	"log/slog"
	"net/http"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// API serves /api/v1, /admin/v1, /health and /ready.
	API http.Handler

	// MetricsHandler serves /metrics. Nil disables the route.
	MetricsHandler http.Handler

	// Recorder receives request metrics. Nil disables request metrics.
	Recorder RequestRecorder

	// Logger for request logging.
	Logger *slog.Logger

	// RateLimit is the per-IP rate in requests per second; 0 disables it.
	RateLimit float64
	RateBurst int

	// CORSAllowedOrigins is the list of allowed CORS origins (empty = allow all).
	CORSAllowedOrigins []string

	// EnableAudit enables a log line per request.
	EnableAudit bool
}

// NewRouter creates the top-level handler with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}

	middlewares := []Middleware{
		Recover(l),
		RequestID(),
		CORS(cfg.CORSAllowedOrigins),
	}
	if cfg.RateLimit > 0 {
		middlewares = append(middlewares, RateLimit(RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit,
			Burst:             cfg.RateBurst,
		}))
	}
	if cfg.Recorder != nil {
		middlewares = append(middlewares, Metrics(cfg.Recorder))
	}
	if cfg.EnableAudit {
		middlewares = append(middlewares, Audit(l))
	}

	mux := http.NewServeMux()
	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", Chain(cfg.MetricsHandler, Recover(l)))
	}
	mux.Handle("/", Chain(cfg.API, middlewares...))

	return mux
}
