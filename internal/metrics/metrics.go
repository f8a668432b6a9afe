package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultDelivered = "delivered"
	ResultSkipped   = "skipped"
	ResultFailed    = "failed"

	ResultAccepted  = "accepted"
	ResultDiscarded = "discarded"
)

type Metrics struct {
	Connections      prometheus.Gauge
	EventsTotal      *prometheus.CounterVec
	FanoutRecipients *prometheus.CounterVec
	InboundMessages  *prometheus.CounterVec
}

// New registers the collectors on reg. Each registry can only hold one set,
// so tests build their own prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Connections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "retroboard_connections",
			Help: "Current number of registered websocket connections",
		}),
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "retroboard_events_total",
			Help: "Total number of events fanned out, by event type",
		}, []string{"type"}),
		FanoutRecipients: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "retroboard_fanout_recipients_total",
			Help: "Total number of fan-out recipients, by outcome",
		}, []string{"result"}),
		InboundMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "retroboard_inbound_messages_total",
			Help: "Total number of inbound websocket messages, by outcome",
		}, []string{"result"}),
	}
}

func (m *Metrics) ConnectionRegistered() {
	if m == nil {
		return
	}
	m.Connections.Inc()
}

func (m *Metrics) ConnectionUnregistered() {
	if m == nil {
		return
	}
	m.Connections.Dec()
}

func (m *Metrics) RecordFanout(eventType string, delivered, skipped, failed int) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(eventType).Inc()
	m.FanoutRecipients.WithLabelValues(ResultDelivered).Add(float64(delivered))
	m.FanoutRecipients.WithLabelValues(ResultSkipped).Add(float64(skipped))
	m.FanoutRecipients.WithLabelValues(ResultFailed).Add(float64(failed))
}

func (m *Metrics) RecordInbound(result string) {
	if m == nil {
		return
	}
	m.InboundMessages.WithLabelValues(result).Inc()
}
