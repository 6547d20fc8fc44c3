package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Observe(OpInsert, time.Now(), "ok")
	m.Observe(OpInsert, time.Now(), "invalid_argument")
	m.Observe(OpGet, time.Now(), "ok")
	m.IncrementExpensesCreated()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationOutcomes.WithLabelValues(OpInsert, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationOutcomes.WithLabelValues(OpInsert, "invalid_argument")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExpensesCreated))
	assert.Equal(t, 2, testutil.CollectAndCount(m.OperationDuration))
}

func TestNewRegistersOncePerRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	require.Panics(t, func() { New(reg) })
	require.NotPanics(t, func() { New(prometheus.NewRegistry()) })
}
