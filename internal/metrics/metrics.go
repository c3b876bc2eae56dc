// Package metrics provides the Prometheus registry of the prediction pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "daytrade"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PipelineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_runs_total",
		Help:      "Total number of pipeline stage executions by stage and status",
	}, []string{"stage", "status"})
	ResultsPersistedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "results_persisted_total",
		Help:      "Total number of backtest results written to the database",
	})
)

// Histogram metrics
var (
	FeatureRowsDropped = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "feature_rows_dropped",
		Help:      "Rows discarded by feature engineering because of indicator warm-up",
		Buckets:   []float64{0, 10, 20, 30, 40, 50, 75, 100, 200},
	})
	FeatureEngineeringDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "feature_engineering_duration_seconds",
		Help:      "Duration of feature engineering in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PipelineRunsTotal)
		registry.MustRegister(ResultsPersistedTotal)

		registry.MustRegister(FeatureRowsDropped)
		registry.MustRegister(FeatureEngineeringDuration)

		// Register backtest metrics
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestTradesTotal)
		registry.MustRegister(BacktestFinalCapital)
		registry.MustRegister(BacktestDuration)
		registry.MustRegister(ScheduledRunsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler. It also gathers the default
// registry, which carries the model client and runtime collectors.
func Handler() http.Handler {
	gatherers := prometheus.Gatherers{GetRegistry(), prometheus.DefaultGatherer}
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}

// Stage status labels
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// RecordStage records the outcome of one pipeline stage.
func RecordStage(stage string, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	PipelineRunsTotal.WithLabelValues(stage, status).Inc()
}

// RecordFeatureEngineering records dropped warm-up rows and duration.
func RecordFeatureEngineering(rowsDropped int, durationSeconds float64) {
	FeatureRowsDropped.Observe(float64(rowsDropped))
	FeatureEngineeringDuration.Observe(durationSeconds)
}

// RecordResultPersisted records a stored backtest result.
func RecordResultPersisted() {
	ResultsPersistedTotal.Inc()
}
