// Package metrics provides Prometheus metrics for the extraction pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "voc"

// Metrics holds all Prometheus metrics for the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Run metrics
	RunsTotal    *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	StageLatency *prometheus.HistogramVec
	ErrorsTotal  *prometheus.CounterVec

	// Model metrics
	ModelCalls   *prometheus.CounterVec
	ModelLatency *prometheus.HistogramVec

	// Event metrics
	PublishTotal *prometheus.CounterVec

	// Workflow metrics
	TriggersTotal *prometheus.CounterVec
}

// New creates and registers all metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total pipeline runs by outcome",
		}, []string{"outcome"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_run_duration_seconds",
			Help:      "Duration of a full pipeline run",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of each pipeline stage",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"stage"}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_errors_total",
			Help:      "Pipeline failures by stage and error code",
		}, []string{"stage", "code"}),

		ModelCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Text model invocations by model and status",
		}, []string{"model_id", "status"}),
		ModelLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_latency_seconds",
			Help:      "Text model invocation latency",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"model_id"}),

		PublishTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_events_total",
			Help:      "Extracted record events by status",
		}, []string{"status"}),

		TriggersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_triggers_total",
			Help:      "Workflow executions started by status",
		}, []string{"status"}),
	}
}

// Default registers metrics with the global Prometheus registry.
func Default() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *Metrics) ObserveRun(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) RecordError(stage, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(stage, code).Inc()
}

func (m *Metrics) ObserveModel(modelID string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.ModelCalls.WithLabelValues(modelID, status(err)).Inc()
	m.ModelLatency.WithLabelValues(modelID).Observe(d.Seconds())
}

func (m *Metrics) RecordPublish(err error) {
	if m == nil {
		return
	}
	m.PublishTotal.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) RecordTrigger(err error) {
	if m == nil {
		return
	}
	m.TriggersTotal.WithLabelValues(status(err)).Inc()
}
