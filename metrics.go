package typebars

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "typebars"
	subsystem = "checker"
)

// Values of the "result" label of typebars_checker_analyses_total.
const (
	resultValid       = "valid"
	resultInvalid     = "invalid"
	resultSchemaError = "schema_error"
)

type checkerMetrics struct {
	analyses    *prometheus.CounterVec
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	diagnostics *prometheus.CounterVec
}

// newCheckerMetrics registers the checker collectors with reg. A nil reg
// keeps the collectors unregistered.
func newCheckerMetrics(reg prometheus.Registerer) *checkerMetrics {
	f := promauto.With(reg)
	return &checkerMetrics{
		analyses: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "analyses_total",
				Help:      "Total number of template checks by result",
			},
			[]string{"result"},
		),
		cacheHits: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_hits_total",
				Help:      "Total number of checks answered from the result cache",
			},
		),
		cacheMisses: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_misses_total",
				Help:      "Total number of checks that ran the analyzer",
			},
		),
		diagnostics: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "diagnostics_total",
				Help:      "Total number of diagnostics reported by code",
			},
			[]string{"code"},
		),
	}
}

func (m *checkerMetrics) observe(res Result) {
	if res.Valid {
		m.analyses.WithLabelValues(resultValid).Inc()
	} else {
		m.analyses.WithLabelValues(resultInvalid).Inc()
	}
	for _, d := range res.Diagnostics {
		m.diagnostics.WithLabelValues(string(d.Code)).Inc()
	}
}
