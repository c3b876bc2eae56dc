package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by symbol and error kind",
	}, []string{"symbol", "result"})
	BacktestTradesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_trades_total",
		Help:      "Total number of simulated trades",
	})
	ScheduledRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduled_runs_total",
		Help:      "Total number of cron-triggered backtests by status",
	}, []string{"status"})
)

// Backtest gauge vectors
var (
	BacktestFinalCapital = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_final_capital",
		Help:      "Final capital of the latest backtest per symbol",
	}, []string{"symbol"})
)

// Backtest histograms
var (
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// RecordBacktestRun records a completed backtest.
func RecordBacktestRun(symbol string, trades int, finalCapital, durationSeconds float64) {
	BacktestRunsTotal.WithLabelValues(symbol, StatusSuccess).Inc()
	BacktestTradesTotal.Add(float64(trades))
	BacktestFinalCapital.WithLabelValues(symbol).Set(finalCapital)
	BacktestDuration.Observe(durationSeconds)
}

// RecordBacktestFailure records a failed backtest under its error kind.
func RecordBacktestFailure(symbol, errorKind string) {
	BacktestRunsTotal.WithLabelValues(symbol, errorKind).Inc()
}

// RecordScheduledRun records the outcome of a cron-triggered backtest.
func RecordScheduledRun(err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	ScheduledRunsTotal.WithLabelValues(status).Inc()
}
