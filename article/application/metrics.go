package application

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ResolverMetrics holds Prometheus metrics for image resolution
type ResolverMetrics struct {
	CacheLookups  *prometheus.CounterVec
	StoreLookups  *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec
}

// NewResolverMetrics creates resolver metrics and registers them on reg when it is non-nil
func NewResolverMetrics(reg prometheus.Registerer) *ResolverMetrics {
	m := &ResolverMetrics{
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "newsroom",
				Subsystem: "image_cache",
				Name:      "lookups_total",
				Help:      "Image cache lookups by table and result",
			},
			[]string{"table", "result"}, // result: hit, absent_hit, miss
		),
		StoreLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "newsroom",
				Subsystem: "image_store",
				Name:      "lookups_total",
				Help:      "Image store lookups by kind and result",
			},
			[]string{"kind", "result"}, // result: found, not_found, error
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "newsroom",
				Subsystem: "image_store",
				Name:      "lookup_seconds",
				Help:      "Image store lookup duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.CacheLookups, m.StoreLookups, m.StoreDuration)
	}

	return m
}

func (m *ResolverMetrics) cacheLookup(table string, hit bool, found bool) {
	if m == nil {
		return
	}
	result := "miss"
	switch {
	case hit && found:
		result = "hit"
	case hit:
		result = "absent_hit"
	}
	m.CacheLookups.WithLabelValues(table, result).Inc()
}

func (m *ResolverMetrics) storeLookup(kind string, result string, started time.Time) {
	if m == nil {
		return
	}
	m.StoreLookups.WithLabelValues(kind, result).Inc()
	m.StoreDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}
