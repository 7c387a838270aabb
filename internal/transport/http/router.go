// Package httptransport assembles the chi router: the shared middleware
// chain, the operational endpoints and every domain handler.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vcc/internal/platform/metrics"
	"vcc/internal/platform/middleware"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/platform/httputil"
	authmw "vcc/pkg/platform/middleware/auth"
	"vcc/pkg/platform/middleware/metadata"
	request "vcc/pkg/platform/middleware/request"
	"vcc/pkg/platform/middleware/requesttime"
)

// Registrar mounts a domain's routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports a dependency failure; nil means healthy.
type HealthCheck func(ctx context.Context) error

type Config struct {
	Logger         *slog.Logger
	Sessions       authmw.SessionResolver
	SessionCookie  string
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Throttle       func(http.Handler) http.Handler
	RequestTimeout time.Duration
	Health         map[string]HealthCheck
	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies []netip.Prefix
}

// NewRouter wires the middleware chain in front of handlers. Operational
// endpoints are mounted before the throttle so probes are never limited.
func NewRouter(cfg Config, handlers ...Registrar) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata(cfg.TrustedProxies...))
	r.Use(requesttime.Middleware)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.LatencyMiddleware(cfg.Metrics))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "method not allowed"))
	})

	r.Get("/healthz", healthHandler(cfg.Health, logger))
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if cfg.Throttle != nil {
			r.Use(cfg.Throttle)
		}
		r.Use(middleware.Timeout(timeout))
		r.Use(middleware.ContentTypeJSON)
		if cfg.Sessions != nil {
			r.Use(authmw.Authenticate(cfg.Sessions, cfg.SessionCookie, logger))
		}
		for _, h := range handlers {
			h.Register(r)
		}
	})
	return r
}

func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.ErrorContext(ctx, "health check failed", "dependency", name, "error", err)
				report[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "ok"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": state, "dependencies": report})
	}
}
