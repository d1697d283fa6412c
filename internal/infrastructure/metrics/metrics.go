package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry        *prometheus.Registry
	transitions     *prometheus.CounterVec
	outboxPublished prometheus.Counter
	principal       prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pawnshop_ticket_transitions_total",
			Help: "Ticket state transitions by action and outcome.",
		}, []string{"action", "outcome"}),
		outboxPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pawnshop_outbox_published_total",
			Help: "Lifecycle events delivered to the broker.",
		}),
		principal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pawnshop_principal_disbursed",
			Help:    "Principal handed out per disbursed ticket.",
			Buckets: []float64{500, 1000, 5000, 10000, 50000, 100000, 500000},
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.transitions,
		m.outboxPublished,
		m.principal,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Transition counts one attempted action; err decides the outcome label.
func (m *Metrics) Transition(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.transitions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) Disbursed(principal float64) { m.principal.Observe(principal) }

func (m *Metrics) Published(n int) { m.outboxPublished.Add(float64(n)) }
