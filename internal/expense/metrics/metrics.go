package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation names used as the "operation" label.
const (
	OpGetAll = "get_all"
	OpGet    = "get"
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Metrics provides observability for the expense registry.
// Tracks per-operation durations and outcomes plus expenses created.
type Metrics struct {
	ExpensesCreated   prometheus.Counter
	OperationDuration *prometheus.HistogramVec
	OperationOutcomes *prometheus.CounterVec
}

// New creates the expense metrics and registers them with reg. A nil reg
// registers with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		ExpensesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "expenses_created_total",
			Help: "Total number of expenses created",
		}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "expenses_operation_duration_seconds",
			Help:    "Duration of expense registry operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		OperationOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "expenses_operation_outcomes_total",
			Help: "Expense registry operations by outcome (ok or an error code)",
		}, []string{"operation", "outcome"}),
	}
}

// IncrementExpensesCreated records a successful insert.
func (m *Metrics) IncrementExpensesCreated() {
	m.ExpensesCreated.Inc()
}

// Observe records the duration and outcome of op.
// Call with time.Now() taken at the start of the operation.
func (m *Metrics) Observe(op string, start time.Time, outcome string) {
	m.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.OperationOutcomes.WithLabelValues(op, outcome).Inc()
}
