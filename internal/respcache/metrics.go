package respcache

import "github.com/prometheus/client_golang/prometheus"

var (
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "calbotd",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total response cache hits",
	})

	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "calbotd",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total response cache misses",
	})

	cacheEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "calbotd",
		Subsystem: "cache",
		Name:      "evictions_total",
		Help:      "Total FIFO evictions",
	})

	cacheInvalidations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "calbotd",
		Subsystem: "cache",
		Name:      "invalidations_total",
		Help:      "Total whole-cache invalidations (window version bumps)",
	})

	cacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "calbotd",
		Subsystem: "cache",
		Name:      "entries",
		Help:      "Current number of cached responses",
	})
)

func init() {
	prometheus.MustRegister(cacheHits, cacheMisses, cacheEvictions, cacheInvalidations, cacheEntries)
}
