package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal counts recommendation runs by selection outcome:
	// "generator" when the model's validated selection was delivered,
	// "fallback" when retrieval order was used instead.
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tasted",
		Subsystem: "recommend",
		Name:      "requests_total",
		Help:      "Total recommendation requests by selection outcome",
	}, []string{"outcome"})
)
