package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger records persisted and scheduled backtest runs.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(base logrus.FieldLogger) *AuditLogger {
	return &AuditLogger{
		Entry: OrDiscard(base).WithField("component", "audit"),
	}
}

// LogResultPersisted logs a stored backtest run.
func (al *AuditLogger) LogResultPersisted(runID, symbol string, trades int) {
	al.WithFields(logrus.Fields{
		"run_id": runID,
		"symbol": symbol,
		"trades": trades,
	}).Info("Backtest result persisted")
}

// LogScheduledRun logs one cron-triggered backtest.
func (al *AuditLogger) LogScheduledRun(symbol string, duration time.Duration, err error) {
	entry := al.WithFields(logrus.Fields{
		"symbol":      symbol,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Warn("Scheduled backtest failed")
		return
	}
	entry.Info("Scheduled backtest completed")
}
