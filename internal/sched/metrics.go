package sched

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsPrefix = "dispatchsim_"

// Metrics counts dispatcher events. A single Metrics may be shared by
// dispatchers running in parallel.
type Metrics struct {
	events    *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	demotions *prometheus.CounterVec
	ticks     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricsPrefix + "events_total",
			Help: "Number of dispatcher events by kind.",
		}, []string{"kind"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricsPrefix + "rejected_jobs_total",
			Help: "Number of descriptors rejected on admission by reason.",
		}, []string{"reason"}),
		demotions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricsPrefix + "demotions_total",
			Help: "Number of demotions by target level.",
		}, []string{"level"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricsPrefix + "executed_ticks_total",
			Help: "Sum of all executed slices.",
		}),
	}
	for _, c := range []prometheus.Collector{m.events, m.rejected, m.demotions, m.ticks} {
		if err := reg.Register(c); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	return m, nil
}

func (m *Metrics) Handle(ev Event) {
	m.events.WithLabelValues(ev.Kind.String()).Inc()
	switch ev.Kind {
	case EventRejected:
		m.rejected.WithLabelValues(ev.ReasonText()).Inc()
	case EventExecuted:
		m.ticks.Add(float64(ev.Slice))
	case EventDemoted:
		m.demotions.WithLabelValues(ev.To.String()).Inc()
	}
}
