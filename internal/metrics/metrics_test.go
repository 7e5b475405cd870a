package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CommandRan("play", 0.1)
		m.CommandFailed("play", "no_voice_channel")
		m.VoiceUpdateRelayed("VOICE_STATE_UPDATE")
		m.NodeEvent("queue_end")
	})
}

func TestRegisterAndCount(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	m.VoiceUpdateRelayed("VOICE_SERVER_UPDATE")
	m.VoiceUpdateRelayed("VOICE_SERVER_UPDATE")
	m.NodeEvent("queue_end")
	m.CommandRan("skip", 0.01)

	voice := m.VoiceUpdates.(*PrometheusMetric).Collector.(*prometheus.CounterVec)
	assert.Equal(t, 2.0, testutil.ToFloat64(voice.WithLabelValues("VOICE_SERVER_UPDATE")))

	count := m.CommandCount.(*PrometheusMetric).Collector.(*prometheus.CounterVec)
	assert.Equal(t, 1.0, testutil.ToFloat64(count.WithLabelValues("skip")))

	assert.Error(t, m.Register(reg), "registering twice must fail")
}
