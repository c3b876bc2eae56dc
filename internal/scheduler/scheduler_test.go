package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	mu      sync.Mutex
	symbols []string
	fail    map[string]bool
}

func (r *recordingRunner) RunSymbol(_ context.Context, symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.symbols = append(r.symbols, symbol)
	if r.fail[symbol] {
		return errors.New("model not found")
	}
	return nil
}

func TestScheduleBacktestsValidation(t *testing.T) {
	s := NewScheduler(&recordingRunner{}, nil)

	assert.Error(t, s.ScheduleBacktests("not a cron", []string{"AAPL"}))
	assert.Error(t, s.ScheduleBacktests("0 30 21 * * 1-5", nil))
	assert.Error(t, s.Start(), "no jobs scheduled")
}

func TestSchedulerLifecycle(t *testing.T) {
	s := NewScheduler(&recordingRunner{}, nil)
	require.NoError(t, s.ScheduleBacktests("0 30 21 * * 1-5", []string{"aapl", " msft"}))
	require.Len(t, s.Entries(), 1)
	assert.True(t, s.NextRun().IsZero())

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.Error(t, s.ScheduleBacktests("@daily", []string{"TSLA"}))

	next := s.NextRun()
	require.False(t, next.IsZero())
	assert.Equal(t, 21, next.Hour())
	assert.Equal(t, 30, next.Minute())
	assert.NotEqual(t, time.Saturday, next.Weekday())
	assert.NotEqual(t, time.Sunday, next.Weekday())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop())
}

func TestRunAllContinuesPastFailures(t *testing.T) {
	runner := &recordingRunner{fail: map[string]bool{"MSFT": true}}
	s := NewScheduler(runner, nil)

	failed := s.RunAll(context.Background(), []string{"AAPL", "MSFT", "TSLA"})
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, runner.symbols)
}

func TestScheduledJobFires(t *testing.T) {
	done := make(chan string, 4)
	s := NewScheduler(RunnerFunc(func(_ context.Context, symbol string) error {
		done <- symbol
		return nil
	}), nil)
	require.NoError(t, s.ScheduleBacktests("* * * * * *", []string{"AAPL"}))
	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case symbol := <-done:
		assert.Equal(t, "AAPL", symbol)
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled backtest did not run")
	}
}
