package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the export run.
type Metrics struct {
	Registry         *prometheus.Registry
	PagesTotal       *prometheus.CounterVec
	ModulesTotal     *prometheus.CounterVec
	CandidatesTotal  prometheus.Counter
	ResolutionsTotal *prometheus.CounterVec
	ResolveDuration  prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tucan_pages_total",
			Help: "Total catalog pages loaded, by kind.",
		},
		[]string{"kind"},
	)
	modules := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tucan_modules_total",
			Help: "Total modules handled, by result.",
		},
		[]string{"result"},
	)
	candidates := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tucan_candidates_total",
			Help: "Total literature candidates sent to resolution.",
		},
	)
	resolutions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tucan_resolutions_total",
			Help: "Total candidate resolutions, by outcome.",
		},
		[]string{"outcome"},
	)
	resolveDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tucan_resolve_duration_seconds",
			Help:    "Latency of metadata API lookups.",
			Buckets: prometheus.DefBuckets,
		},
	)

	registry.MustRegister(pages, modules, candidates, resolutions, resolveDuration)

	return &Metrics{
		Registry:         registry,
		PagesTotal:       pages,
		ModulesTotal:     modules,
		CandidatesTotal:  candidates,
		ResolutionsTotal: resolutions,
		ResolveDuration:  resolveDuration,
	}
}

// IncPage increments the page counter for a kind.
func (m *Metrics) IncPage(kind string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(kind).Inc()
}

// IncModule increments the module counter for a result.
func (m *Metrics) IncModule(result string) {
	if m == nil {
		return
	}
	m.ModulesTotal.WithLabelValues(result).Inc()
}

// IncCandidate increments the candidate counter.
func (m *Metrics) IncCandidate() {
	if m == nil {
		return
	}
	m.CandidatesTotal.Inc()
}

// IncResolution increments the resolution counter for an outcome.
func (m *Metrics) IncResolution(outcome string) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveResolve records a metadata API lookup duration.
func (m *Metrics) ObserveResolve(d time.Duration) {
	if m == nil {
		return
	}
	m.ResolveDuration.Observe(d.Seconds())
}
