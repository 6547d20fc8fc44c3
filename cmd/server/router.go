package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"expenses/internal/auth"
	"expenses/internal/docstore"
	"expenses/internal/expense/handler"
	"expenses/internal/platform/metrics"
	"expenses/internal/platform/middleware"
	"expenses/pkg/platform/httputil"
)

const authRealm = "expenses"

// newAPIRouter builds the public router: shared middleware, basic auth, then
// the expense routes.
func newAPIRouter(h *handler.Handler, users auth.Validator, m *metrics.Metrics, timeout time.Duration, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(m))
	r.Use(chimw.Timeout(timeout))

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireBasicAuth(users, authRealm, log))
		h.Register(r)
	})
	return r
}

// newOpsRouter serves health and metrics on the internal port.
func newOpsRouter(container docstore.Container, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if hc, ok := container.(docstore.HealthChecker); ok {
			if err := hc.Health(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler(reg))
	return r
}
