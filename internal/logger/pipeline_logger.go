package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for feature engineering and backtest runs.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(base logrus.FieldLogger) *PipelineLogger {
	return &PipelineLogger{
		Entry: OrDiscard(base).WithField("component", "pipeline"),
	}
}

// ForSymbol scopes the logger to one stock symbol.
func (pl *PipelineLogger) ForSymbol(symbol string) *PipelineLogger {
	return &PipelineLogger{Entry: pl.WithField("symbol", symbol)}
}

// LogFeatureEngineering logs the outcome of a feature engineering pass.
func (pl *PipelineLogger) LogFeatureEngineering(inputRows, rowsDropped, features int, targetType string) {
	pl.WithFields(logrus.Fields{
		"input_rows":   inputRows,
		"rows_dropped": rowsDropped,
		"rows":         inputRows - rowsDropped,
		"features":     features,
		"target_type":  targetType,
	}).Info("Feature table built")
}

// LogPredictions logs a completed classifier call.
func (pl *PipelineLogger) LogPredictions(samples, features int, latency time.Duration) {
	pl.WithFields(logrus.Fields{
		"samples":    samples,
		"features":   features,
		"latency_ms": latency.Milliseconds(),
	}).Info("Predictions received")
}

// LogSimulation logs the ledger produced by the trading simulator.
func (pl *PipelineLogger) LogSimulation(trades int, initialCapital, finalCapital float64) {
	pl.WithFields(logrus.Fields{
		"trades":          trades,
		"initial_capital": initialCapital,
		"final_capital":   finalCapital,
	}).Info("Trading simulation complete")
}

// LogBacktestSummary logs the headline metrics of a run.
func (pl *PipelineLogger) LogBacktestSummary(accuracy, winRate, totalReturnPct, sharpe float64) {
	pl.WithFields(logrus.Fields{
		"accuracy":         accuracy,
		"win_rate":         winRate,
		"total_return_pct": totalReturnPct,
		"sharpe_ratio":     sharpe,
	}).Info("Backtest complete")
}

// LogStageError logs a failed pipeline stage with its error kind.
func (pl *PipelineLogger) LogStageError(stage, kind string, err error) {
	pl.WithFields(logrus.Fields{
		"stage":      stage,
		"error_kind": kind,
	}).WithError(err).Error("Pipeline stage failed")
}
