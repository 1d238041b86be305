package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics tracks promotion loads and quote outcomes.
type PricingMetrics struct {
	loadDuration prometheus.Histogram
	loadFailures prometheus.Counter
	quotes       *prometheus.CounterVec
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	loadDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "promotion_load_duration_seconds",
		Help:      "Time spent loading the active promotion snapshot.",
		Buckets:   prometheus.DefBuckets,
	})
	loadFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promotion_load_failures_total",
		Help:      "Promotion snapshot loads that failed.",
	})
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_quotes_total",
		Help:      "Price quotes computed, split by whether a promotion applied.",
	}, []string{"promotion"})
	reg.MustRegister(loadDuration, loadFailures, quotes)
	return &PricingMetrics{loadDuration: loadDuration, loadFailures: loadFailures, quotes: quotes}
}

// ObserveLoad records a promotion snapshot load.
func (m *PricingMetrics) ObserveLoad(d time.Duration, err error) {
	if m == nil || m.loadDuration == nil {
		return
	}
	m.loadDuration.Observe(d.Seconds())
	if err != nil {
		m.loadFailures.Inc()
	}
}

// IncQuote counts one computed quote.
func (m *PricingMetrics) IncQuote(promotionApplied bool) {
	if m == nil || m.quotes == nil {
		return
	}
	label := "none"
	if promotionApplied {
		label = "applied"
	}
	m.quotes.WithLabelValues(label).Inc()
}
