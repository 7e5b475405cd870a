package metrics

import "github.com/prometheus/client_golang/prometheus"

type Observer interface {
	Observe(val float64, labels ...string)

	prometheus.Collector
}

// Metrics holds the bot's collectors. A nil *Metrics is valid and records
// nothing, so components can be built without a registry in tests.
type Metrics struct {
	CommandCount   Observer
	CommandErrors  Observer
	CommandLatency Observer
	VoiceUpdates   Observer
	NodeEvents     Observer
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.CommandCount,
		m.CommandErrors,
		m.CommandLatency,
		m.VoiceUpdates,
		m.NodeEvents,
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) CommandRan(name string, seconds float64) {
	if m == nil {
		return
	}
	m.CommandCount.Observe(1, name)
	m.CommandLatency.Observe(seconds, name)
}

func (m *Metrics) CommandFailed(name, kind string) {
	if m == nil {
		return
	}
	m.CommandErrors.Observe(1, name, kind)
}

func (m *Metrics) VoiceUpdateRelayed(kind string) {
	if m == nil {
		return
	}
	m.VoiceUpdates.Observe(1, kind)
}

func (m *Metrics) NodeEvent(kind string) {
	if m == nil {
		return
	}
	m.NodeEvents.Observe(1, kind)
}

// New builds the collector set.
func New() *Metrics {
	return &Metrics{
		CommandCount: NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lavacog",
					Subsystem: "commands",
					Name:      "invocations",
					Help:      "Number of music command invocations.",
				},
				[]string{"command"},
			),
		),
		CommandErrors: NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lavacog",
					Subsystem: "commands",
					Name:      "errors",
					Help:      "Number of command invocations that ended in an error, by kind.",
				},
				[]string{"command", "kind"},
			),
		),
		CommandLatency: NewPromObserverVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
					Namespace: "lavacog",
					Subsystem: "commands",
					Name:      "latency",
					Help:      "How long a command takes to run in seconds.",
				},
				[]string{"command"},
			),
		),
		VoiceUpdates: NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lavacog",
					Subsystem: "voice",
					Name:      "updates",
					Help:      "Number of voice gateway updates relayed to the audio node.",
				},
				[]string{"type"},
			),
		),
		NodeEvents: NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lavacog",
					Subsystem: "node",
					Name:      "events",
					Help:      "Number of player events received from the audio node.",
				},
				[]string{"kind"},
			),
		),
	}
}
