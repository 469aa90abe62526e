package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PipelineMetrics holds all Prometheus metrics for the notes pipeline.
type PipelineMetrics struct {
	// Run metrics
	RunsTotal  *prometheus.CounterVec
	RunSeconds *prometheus.HistogramVec

	// Stage metrics
	StageSeconds *prometheus.HistogramVec
	ErrorsTotal  *prometheus.CounterVec

	// Model call metrics
	ModelCallsTotal   *prometheus.CounterVec
	ModelCallSeconds  *prometheus.HistogramVec
	ModelTokensTotal  *prometheus.CounterVec
	ChunksProcessed   prometheus.Counter
	TranscriptsTokens prometheus.Histogram
}

var (
	defaultMetricsOnce sync.Once
	defaultMetrics     *PipelineMetrics
)

// DefaultPipelineMetrics returns the process-wide metrics set, created on
// the default registerer on first use. promauto panics on duplicate
// registration, so the set is built once and shared.
func DefaultPipelineMetrics() *PipelineMetrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = NewPipelineMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// NewPipelineMetrics creates a new set of pipeline metrics.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	factory := promauto.With(reg)

	return &PipelineMetrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minute_pipeline_runs_total",
				Help: "Total pipeline runs by outcome",
			},
			[]string{"status"},
		),
		RunSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "minute_pipeline_run_seconds",
				Help:    "End-to-end pipeline run duration",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"status"},
		),
		StageSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "minute_pipeline_stage_seconds",
				Help:    "Duration per pipeline stage",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
			},
			[]string{"stage"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minute_pipeline_errors_total",
				Help: "Pipeline failures by stage and error code",
			},
			[]string{"stage", "code"},
		),
		ModelCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minute_model_calls_total",
				Help: "Model calls by provider, model, and status",
			},
			[]string{"provider", "model", "status"},
		),
		ModelCallSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "minute_model_call_seconds",
				Help:    "Model call latency",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"provider", "model"},
		),
		ModelTokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minute_model_tokens_total",
				Help: "Tokens consumed by direction",
			},
			[]string{"provider", "model", "direction"},
		),
		ChunksProcessed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "minute_chunks_processed_total",
				Help: "Transcript chunks extracted",
			},
		),
		TranscriptsTokens: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "minute_transcript_tokens",
				Help:    "Estimated token size of processed transcripts",
				Buckets: []float64{500, 1000, 2000, 4000, 8000, 16000, 32000, 64000},
			},
		),
	}
}

// ObserveStage records one finished stage.
func (m *PipelineMetrics) ObserveStage(stage string, d time.Duration) {
	m.StageSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveRun records one finished run.
func (m *PipelineMetrics) ObserveRun(status string, d time.Duration) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunSeconds.WithLabelValues(status).Observe(d.Seconds())
}

// ObserveError records one classified failure.
func (m *PipelineMetrics) ObserveError(stage, code string) {
	m.ErrorsTotal.WithLabelValues(stage, code).Inc()
}

// ObserveModelCall records one model request.
func (m *PipelineMetrics) ObserveModelCall(provider, model, status string, d time.Duration) {
	m.ModelCallsTotal.WithLabelValues(provider, model, status).Inc()
	m.ModelCallSeconds.WithLabelValues(provider, model).Observe(d.Seconds())
}

// ObserveModelTokens records reported token usage for one model request.
func (m *PipelineMetrics) ObserveModelTokens(provider, model string, prompt, completion int) {
	if prompt > 0 {
		m.ModelTokensTotal.WithLabelValues(provider, model, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		m.ModelTokensTotal.WithLabelValues(provider, model, "completion").Add(float64(completion))
	}
}
