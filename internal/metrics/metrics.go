package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics of the order book service.
type Metrics struct {
	EventsApplied  *prometheus.CounterVec
	StaleEvents    *prometheus.CounterVec
	ParseErrors    *prometheus.CounterVec
	BookDepth      *prometheus.GaugeVec
	ApplyLatencyMs prometheus.Histogram
	Subscribers    prometheus.Gauge
}

// NewMetrics creates the metrics and registers them on reg. Tests pass a
// fresh prometheus.NewRegistry().
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EventsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "obengine_events_applied_total",
			Help: "Book events applied to the order books",
		}, []string{"pair", "type"}),

		// events whose time is before the book timestamp; still applied
		StaleEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "obengine_stale_events_total",
			Help: "Book events older than the book they were applied to",
		}, []string{"pair"}),

		ParseErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "obengine_parse_errors_total",
			Help: "Book events dropped because they could not be decoded",
		}, []string{"component"}),

		BookDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "obengine_book_depth",
			Help: "Number of price levels per side",
		}, []string{"pair", "side"}),

		ApplyLatencyMs: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "obengine_apply_latency_ms",
			Help:    "Time to apply one book event in milliseconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
		}),

		Subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "obengine_ws_subscribers",
			Help: "Connected websocket users",
		}),
	}
}

func (m *Metrics) RecordApplied(pair, eventType string, latencyMs float64) {
	m.EventsApplied.WithLabelValues(pair, eventType).Inc()
	m.ApplyLatencyMs.Observe(latencyMs)
}

func (m *Metrics) RecordStale(pair string) {
	m.StaleEvents.WithLabelValues(pair).Inc()
}

func (m *Metrics) RecordParseError(component string) {
	m.ParseErrors.WithLabelValues(component).Inc()
}

func (m *Metrics) RecordDepth(pair string, bids, asks int) {
	m.BookDepth.WithLabelValues(pair, "bid").Set(float64(bids))
	m.BookDepth.WithLabelValues(pair, "ask").Set(float64(asks))
}
