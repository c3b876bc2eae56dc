package ml

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ModelPredictionsTotal tracks rows scored by the model service
	ModelPredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daytrade_model_predictions_total",
			Help: "Total number of rows scored by the model service",
		},
		[]string{"symbol"},
	)

	// ModelRequestLatency tracks model service round trips
	ModelRequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "daytrade_model_request_latency_seconds",
			Help:    "Model service request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// ModelRequestErrorsTotal tracks failed model service calls
	ModelRequestErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daytrade_model_request_errors_total",
			Help: "Total number of failed model service requests",
		},
		[]string{"method", "error_type"},
	)

	// MetadataCacheHitRatio tracks the metadata cache hit ratio
	MetadataCacheHitRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "daytrade_model_metadata_cache_hit_ratio",
			Help: "Model metadata cache hit ratio",
		},
	)
)
