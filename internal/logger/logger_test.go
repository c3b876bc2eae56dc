package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	log := newLogger(buf, "debug", "production")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	_, isJSON := log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)

	log = newLogger(buf, "loud", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "Invalid log level")
}

func TestPipelineLoggerFeatureEngineering(t *testing.T) {
	log, buf := setupTestLogger()
	NewPipelineLogger(log).ForSymbol("AAPL").LogFeatureEngineering(300, 200, 57, "open_to_close")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "pipeline", logEntry["component"])
	assert.Equal(t, "AAPL", logEntry["symbol"])
	assert.Equal(t, float64(100), logEntry["rows"])
	assert.Equal(t, "open_to_close", logEntry["target_type"])
}

func TestPipelineLoggerStageError(t *testing.T) {
	log, buf := setupTestLogger()
	NewPipelineLogger(log).LogStageError("simulate", "VALIDATION_ERROR", errors.New("length mismatch"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
	assert.Equal(t, "simulate", logEntry["stage"])
	assert.Equal(t, "length mismatch", logEntry["error"])
}

func TestPipelineLoggerNilBase(t *testing.T) {
	assert.NotPanics(t, func() {
		NewPipelineLogger(nil).LogSimulation(2, 10000, 10406)
	})
}

func TestAuditLoggerScheduledRun(t *testing.T) {
	log, buf := setupTestLogger()
	NewAuditLogger(log).LogScheduledRun("MSFT", 1500*time.Millisecond, nil)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, float64(1500), logEntry["duration_ms"])
	assert.Equal(t, "info", logEntry["level"])
}
