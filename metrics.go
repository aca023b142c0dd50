package cityfill

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes session activity as prometheus collectors. A nil
// *Metrics records nothing.
type Metrics struct {
	guesses       *prometheus.CounterVec
	circles       prometheus.Counter
	revealed      prometheus.Gauge
	coverage      prometheus.Gauge
	persistErrors prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg, or with
// the global registry when reg is nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		guesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cityfill",
			Name:      "guesses_total",
			Help:      "Guesses submitted, by outcome.",
		}, []string{"outcome"}),
		circles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cityfill",
			Name:      "circles_placed_total",
			Help:      "Circles placed, duplicates excluded.",
		}),
		revealed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cityfill",
			Name:      "cities_revealed",
			Help:      "Cities currently revealed.",
		}),
		coverage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cityfill",
			Name:      "coverage_percent",
			Help:      "Percent of the region's land area covered.",
		}),
		persistErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cityfill",
			Name:      "persist_errors_total",
			Help:      "Failed attempts to save or clear progress.",
		}),
	}
	for _, c := range []prometheus.Collector{m.guesses, m.circles, m.revealed, m.coverage, m.persistErrors} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) guess(accepted bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if accepted {
		outcome = "placed"
	}
	m.guesses.WithLabelValues(outcome).Inc()
}

func (m *Metrics) circlePlaced() {
	if m != nil {
		m.circles.Inc()
	}
}

func (m *Metrics) persistFailed() {
	if m != nil {
		m.persistErrors.Inc()
	}
}

func (m *Metrics) observe(st Stats) {
	if m == nil {
		return
	}
	m.revealed.Set(float64(st.Revealed))
	m.coverage.Set(st.Percent)
}
