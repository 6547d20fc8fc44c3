package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP level Prometheus metrics.
type Metrics struct {
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
}

// New creates and registers the HTTP metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "expenses_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route, method and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		RequestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "expenses_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		}),
	}
}

// ObserveRequest records one finished request.
// Call with time.Now() taken when the request arrived.
func (m *Metrics) ObserveRequest(route, method string, status int, start time.Time) {
	m.RequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}

// NewRegistry returns a registry preloaded with the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the metrics gathered by reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
