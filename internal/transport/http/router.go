package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"superadmin/internal/guard"
	"superadmin/internal/session"
	"superadmin/internal/web"
	"superadmin/pkg/platform/httputil"
	"superadmin/pkg/platform/middleware/metadata"
	"superadmin/pkg/platform/middleware/request"
	"superadmin/pkg/platform/middleware/requesttime"
)

// Registrar is a feature handler that mounts its own routes.
type Registrar interface {
	Register(r chi.Router)
}

// HTTPMetrics records request latency.
type HTTPMetrics interface {
	ObserveHTTP(method, status string, seconds float64)
}

// Pinger reports whether an optional dependency is reachable.
type Pinger interface {
	Health(ctx context.Context) error
}

// Deps is everything the router needs. Pages are mounted behind the session
// loader and the route guard.
type Deps struct {
	Sessions *session.Bridge
	Backend  Forwarder
	Renderer *web.Renderer
	Metrics  HTTPMetrics
	// MetricsHandler serves /metrics; nil falls back to the default registry.
	MetricsHandler http.Handler
	Pingers        map[string]Pinger
	Pages          []Registrar
	Logger         *slog.Logger
}

// NewRouter wires the middleware chain, the operational endpoints, the
// session API and every page handler.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(d.Logger))
	if d.Metrics != nil {
		r.Use(Latency(d.Metrics))
	}

	metricsHandler := d.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)
	r.Get("/healthz", healthz(d.Pingers))
	r.Handle("/static/*", web.Static())

	r.Group(func(r chi.Router) {
		r.Use(session.Provider(d.Sessions))
		r.Use(guard.Middleware(d.Logger))

		NewSessionAPI(d.Sessions, d.Backend, d.Logger).Register(r)
		for _, p := range d.Pages {
			p.Register(r)
		}
		r.NotFound(d.Renderer.NotFound)
	})
	return r
}

// Latency observes every request by method and final status.
func Latency(m HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &request.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
			next.ServeHTTP(rec, r)
			m.ObserveHTTP(r.Method, strconv.Itoa(rec.Status), time.Since(start).Seconds())
		})
	}
}

func healthz(pingers map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string, len(pingers))
		status := http.StatusOK
		for name, p := range pingers {
			if err := p.Health(r.Context()); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": state, "checks": checks})
	}
}
