package resilience

import "github.com/prometheus/client_golang/prometheus"

// Breaker metrics, labelled by the protected target.
var (
	BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "esimfly",
		Subsystem: "upstream",
		Name:      "breaker_state",
		Help:      "Breaker state per upstream (0 closed, 1 open, 2 half-open).",
	}, []string{"target"})

	BreakerTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "esimfly",
		Subsystem: "upstream",
		Name:      "breaker_transitions_total",
		Help:      "Breaker state changes per upstream.",
	}, []string{"target", "from", "to"})

	BreakerOpenedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "esimfly",
		Subsystem: "upstream",
		Name:      "breaker_opened_total",
		Help:      "Times the breaker tripped open per upstream.",
	}, []string{"target"})
)

func init() {
	prometheus.MustRegister(BreakerState, BreakerTransitions, BreakerOpenedTotal)
}
