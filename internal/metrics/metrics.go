// ABOUTME: Prometheus metrics for parley turn processing
// ABOUTME: Counts chat/voice turns by outcome and times external model calls

// Package metrics provides Prometheus metrics for parley.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for parley.
type Metrics struct {
	ChatTurnsTotal  *prometheus.CounterVec
	VoiceTurnsTotal *prometheus.CounterVec

	LLMRequestDuration    prometheus.Histogram
	SpeechRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all Prometheus metrics.
// Call it once per process; metrics register with the default registry.
func NewMetrics() *Metrics {
	m := &Metrics{}

	m.ChatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_chat_turns_total",
			Help: "Total number of text chat turns processed, by outcome",
		},
		[]string{"outcome"},
	)

	m.VoiceTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_voice_turns_total",
			Help: "Total number of voice turns processed, by outcome",
		},
		[]string{"outcome"},
	)

	m.LLMRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parley_llm_request_duration_seconds",
			Help:    "Duration of chat completion requests in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	m.SpeechRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parley_speech_request_duration_seconds",
			Help:    "Duration of speech API requests in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	return m
}

// All Record methods accept a nil receiver; a service wired without metrics
// simply records nothing.

// RecordChatTurn counts one completed text turn with its outcome.
func (m *Metrics) RecordChatTurn(outcome string) {
	if m == nil {
		return
	}
	m.ChatTurnsTotal.WithLabelValues(outcome).Inc()
}

// RecordVoiceTurn counts one completed voice turn with its outcome.
func (m *Metrics) RecordVoiceTurn(outcome string) {
	if m == nil {
		return
	}
	m.VoiceTurnsTotal.WithLabelValues(outcome).Inc()
}

// RecordLLMRequest times one chat completion round trip.
func (m *Metrics) RecordLLMRequest(duration time.Duration) {
	if m == nil {
		return
	}
	m.LLMRequestDuration.Observe(duration.Seconds())
}

// RecordSpeechRequest times one speech API round trip.
// Operation is "transcribe" or "synthesize".
func (m *Metrics) RecordSpeechRequest(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.SpeechRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
