package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "research"

// Metrics tracks upstream model calls and section persistence.
// A nil *Metrics records nothing.
type Metrics struct {
	upstreamRequests  *prometheus.CounterVec
	upstreamLatency   *prometheus.HistogramVec
	sectionWrites     *prometheus.CounterVec
	generatedSections prometheus.Histogram
	placeholders      prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		upstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Language-model gateway calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		upstreamLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_seconds",
			Help:      "Language-model gateway call latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"operation"}),
		sectionWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "section_writes_total",
			Help:      "Debounced section content writes by outcome",
		}, []string{"outcome"}),
		generatedSections: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generated_sections",
			Help:      "Number of sections produced per generated document",
			Buckets:   []float64{4, 6, 8, 10, 12, 16, 24},
		}),
		placeholders: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placeholder_sections_total",
			Help:      "Sections filled with placeholder content after reconciliation",
		}),
	}
}

// ObserveUpstream records one gateway call. outcome is derived from err.
func (m *Metrics) ObserveUpstream(operation string, started time.Time, outcome string) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(operation, outcome).Inc()
	m.upstreamLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (m *Metrics) SectionWrite(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.sectionWrites.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Generated(sections, placeholders int) {
	if m == nil {
		return
	}
	m.generatedSections.Observe(float64(sections))
	m.placeholders.Add(float64(placeholders))
}
