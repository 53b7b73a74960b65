package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the engine's prometheus collectors. One instance is shared by
// every ActionQuery of a process.
type Metrics struct {
	CommandsExecuted *prometheus.CounterVec
	CommandDuration  *prometheus.HistogramVec
	Prompts          prometheus.Counter
}

// NewMetrics creates the engine collectors and registers them with reg. A
// nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CommandsExecuted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "actiongrid",
			Name:      "commands_executed_total",
			Help:      "Commands dispatched to their executor, by definition, direction and resulting status.",
		}, []string{"definition", "direction", "status"}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "actiongrid",
			Name:      "command_duration_seconds",
			Help:      "Time spent in executors.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"definition"}),
		Prompts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "actiongrid",
			Name:      "prompts_total",
			Help:      "Prompt batches sent to the remote observer.",
		}),
	}
}
