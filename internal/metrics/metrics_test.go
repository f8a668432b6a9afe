package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ConnectionRegistered()
	m.ConnectionRegistered()
	m.ConnectionUnregistered()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Connections))

	m.RecordFanout("note-created", 2, 1, 0)
	m.RecordFanout("note-created", 1, 0, 1)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.EventsTotal.WithLabelValues("note-created")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.FanoutRecipients.WithLabelValues(ResultDelivered)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FanoutRecipients.WithLabelValues(ResultSkipped)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FanoutRecipients.WithLabelValues(ResultFailed)))

	m.RecordInbound(ResultDiscarded)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.InboundMessages.WithLabelValues(ResultDiscarded)))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ConnectionRegistered()
		m.ConnectionUnregistered()
		m.RecordFanout("note-created", 1, 1, 1)
		m.RecordInbound(ResultAccepted)
	})
}
