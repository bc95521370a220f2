package voice

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricPhaseTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lex_voice_phase_transitions_total",
		Help: "Session phase transitions",
	}, []string{"from", "to"})

	metricUtterances = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lex_voice_utterances_total",
		Help: "Total finalized utterances",
	})

	metricDictationUtterances = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lex_voice_dictation_utterances_total",
		Help: "Utterances mirrored to a dictation target instead of interpreted",
	})

	metricInterpreterFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lex_voice_interpreter_failures_total",
		Help: "Interpreter calls recovered with a local fallback reply",
	})

	metricInterpreterLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lex_voice_interpreter_latency_ms",
		Help:    "Latency of interpreter calls",
		Buckets: prometheus.ExponentialBuckets(50, 1.6, 10),
	})

	metricSynthesisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lex_voice_synthesis_errors_total",
		Help: "Synthesis errors by class",
	}, []string{"class"})

	metricInterrupts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lex_voice_hard_interrupts_total",
		Help: "Hard-interrupt gestures",
	})
)
