// Package metrics provides Prometheus metrics for the transcription and
// question-answering pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ytqa"

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	registry *prometheus.Registry

	// Action metrics
	ActionsTotal    *prometheus.CounterVec
	ActionsInFlight *prometheus.GaugeVec
	ActionDuration  *prometheus.HistogramVec

	// Stage metrics
	StageDuration *prometheus.HistogramVec
	StageErrors   *prometheus.CounterVec

	// Transcript metrics
	SegmentsTranscribed prometheus.Counter
	AudioSeconds        prometheus.Counter

	// Retrieval metrics
	ChunksIndexed   prometheus.Histogram
	ChunksRetrieved prometheus.Histogram
}

// New creates metrics on a private registry that also exposes Go runtime and
// process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		ActionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Total number of user actions by outcome",
		}, []string{"action", "outcome"}),
		ActionsInFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actions_in_flight",
			Help:      "Number of user actions currently running",
		}, []string{"action"}),
		ActionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "End-to-end duration of user actions in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600, 1800},
		}, []string{"action"}),

		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 300, 900},
		}, []string{"stage"}),
		StageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Total number of stage failures by error kind",
		}, []string{"stage", "kind"}),

		SegmentsTranscribed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_transcribed_total",
			Help:      "Total number of transcript segments produced",
		}),
		AudioSeconds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_seconds_total",
			Help:      "Total seconds of audio transcribed",
		}),

		ChunksIndexed: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunks_indexed",
			Help:      "Number of chunks indexed per question",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		ChunksRetrieved: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunks_retrieved",
			Help:      "Number of chunks forwarded to the model per question",
			Buckets:   []float64{0, 1, 2, 4, 8, 16},
		}),
	}
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordActionStart records a user action starting and returns a function
// that records its end.
func (m *Metrics) RecordActionStart(action string) func(err error) {
	if m == nil {
		return func(error) {}
	}
	started := time.Now()
	m.ActionsInFlight.WithLabelValues(action).Inc()
	return func(err error) {
		m.ActionsInFlight.WithLabelValues(action).Dec()
		m.ActionDuration.WithLabelValues(action).Observe(time.Since(started).Seconds())
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		m.ActionsTotal.WithLabelValues(action, outcome).Inc()
	}
}

// RecordStage records a finished stage. kind is the error taxonomy name
// and is ignored when err is nil.
func (m *Metrics) RecordStage(stage string, elapsed time.Duration, err error, kind string) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	if err != nil {
		m.StageErrors.WithLabelValues(stage, kind).Inc()
	}
}

// RecordTranscript records the size of a completed transcription.
func (m *Metrics) RecordTranscript(segments int, audioSeconds float64) {
	if m == nil {
		return
	}
	m.SegmentsTranscribed.Add(float64(segments))
	if audioSeconds > 0 {
		m.AudioSeconds.Add(audioSeconds)
	}
}

// RecordRetrieval records how many chunks were indexed and forwarded.
func (m *Metrics) RecordRetrieval(indexed, retrieved int) {
	if m == nil {
		return
	}
	m.ChunksIndexed.Observe(float64(indexed))
	m.ChunksRetrieved.Observe(float64(retrieved))
}
