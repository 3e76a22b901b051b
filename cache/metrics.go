package cache

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	builds        *prometheus.CounterVec
	invalidations prometheus.Counter
	buildDuration prometheus.Histogram
}

func newMetrics() *metrics {
	return &metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wetwire_mixin",
			Subsystem: "plan_cache",
			Name:      "hits_total",
			Help:      "Plan lookups served from the cache.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wetwire_mixin",
			Subsystem: "plan_cache",
			Name:      "misses_total",
			Help:      "Plan lookups that had to wait for a build.",
		}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wetwire_mixin",
			Subsystem: "plan_cache",
			Name:      "builds_total",
			Help:      "Plan builds by result.",
		}, []string{"result"}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wetwire_mixin",
			Subsystem: "plan_cache",
			Name:      "invalidations_total",
			Help:      "Cached plans discarded because their configuration changed.",
		}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wetwire_mixin",
			Name:      "plan_build_duration_seconds",
			Help:      "Time taken to build a plan.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// register adds the collectors to reg, adopting collectors another cache
// already registered under the same names.
func (m *metrics) register(reg prometheus.Registerer) error {
	if reg == nil {
		return nil
	}
	var err error
	m.hits = registerCollector(reg, m.hits, &err)
	m.misses = registerCollector(reg, m.misses, &err)
	m.builds = registerCollector(reg, m.builds, &err)
	m.invalidations = registerCollector(reg, m.invalidations, &err)
	m.buildDuration = registerCollector(reg, m.buildDuration, &err)
	return err
}

func registerCollector[C prometheus.Collector](reg prometheus.Registerer, c C, errp *error) C {
	if *errp != nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		*errp = err
	}
	return c
}
