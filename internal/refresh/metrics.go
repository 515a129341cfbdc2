package refresh

import "github.com/prometheus/client_golang/prometheus"

var (
	cyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "calbotd",
			Subsystem: "refresh",
			Name:      "cycles_total",
			Help:      "Total refresh cycles by outcome",
		},
		[]string{"outcome"},
	)

	cycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "calbotd",
			Subsystem: "refresh",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of full refresh cycles in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	sourceErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "calbotd",
			Subsystem: "refresh",
			Name:      "source_errors_total",
			Help:      "Total per-source fetch/parse failures",
		},
	)

	windowEvents = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "calbotd",
			Subsystem: "window",
			Name:      "events",
			Help:      "Number of events in the current window",
		},
	)
)

func init() {
	prometheus.MustRegister(cyclesTotal, cycleDuration, sourceErrors, windowEvents)
}
