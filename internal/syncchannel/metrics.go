package syncchannel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	directionIn  = "in"
	directionOut = "out"
)

type metrics struct {
	messages *prometheus.CounterVec
	pending  prometheus.Gauge
}

// newMetrics registers the hub metrics with reg. A nil reg creates
// unregistered collectors.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		messages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "actiongrid",
			Subsystem: "sync",
			Name:      "messages_total",
			Help:      "Sync messages by event and direction.",
		}, []string{"event", "direction"}),
		pending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "actiongrid",
			Subsystem: "sync",
			Name:      "pending_replies",
			Help:      "Updates currently waiting for a reply.",
		}),
	}
}
