package index

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// searchDuration tracks how long filtered searches take.
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tasted",
		Subsystem: "index",
		Name:      "search_duration_seconds",
		Help:      "Duration of candidate index searches in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	// searchesTotal counts search operations.
	searchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tasted",
		Subsystem: "index",
		Name:      "searches_total",
		Help:      "Total number of candidate index searches",
	})

	// buildsTotal counts index builds.
	buildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tasted",
		Subsystem: "index",
		Name:      "builds_total",
		Help:      "Total number of index builds",
	})

	// indexedCandidates reports the size of the current index.
	indexedCandidates = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tasted",
		Subsystem: "index",
		Name:      "candidates",
		Help:      "Number of candidates in the most recently built or loaded index",
	})
)
