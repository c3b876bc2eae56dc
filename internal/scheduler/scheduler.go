// Package scheduler runs backtests on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/daytrade-predictor/internal/logger"
	"github.com/yourusername/daytrade-predictor/internal/metrics"
)

// DefaultRunTimeout bounds one symbol's backtest
const DefaultRunTimeout = 10 * time.Minute

// Runner executes one backtest for a symbol
type Runner interface {
	RunSymbol(ctx context.Context, symbol string) error
}

// RunnerFunc adapts a function to Runner
type RunnerFunc func(ctx context.Context, symbol string) error

// RunSymbol calls f
func (f RunnerFunc) RunSymbol(ctx context.Context, symbol string) error { return f(ctx, symbol) }

// Scheduler manages scheduled backtest jobs
type Scheduler struct {
	cron            *cron.Cron
	runner          Runner
	logger          logrus.FieldLogger
	audit           *logger.AuditLogger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	runTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler. Cron expressions carry a leading
// seconds field.
func NewScheduler(runner Runner, log logrus.FieldLogger) *Scheduler {
	log = logger.OrDiscard(log).WithField("component", "scheduler")
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log))),
		),
		runner:          runner,
		logger:          log,
		audit:           logger.NewAuditLogger(log),
		jobIDs:          make([]cron.EntryID, 0),
		runTimeout:      DefaultRunTimeout,
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleBacktests runs a backtest for every symbol each time cronExpression
// fires. Symbols run one after another so runs never compete for the model
// service.
func (s *Scheduler) ScheduleBacktests(cronExpression string, symbols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if len(symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}

	normalized := make([]string, len(symbols))
	for i, sym := range symbols {
		normalized[i] = strings.ToUpper(strings.TrimSpace(sym))
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		s.RunAll(context.Background(), normalized)
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":    cronExpression,
		"symbols": normalized,
	}).Info("Scheduled backtest job")

	return nil
}

// RunAll backtests each symbol once and returns how many failed
func (s *Scheduler) RunAll(ctx context.Context, symbols []string) int {
	failed := 0
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
		err := s.runner.RunSymbol(runCtx, symbol)
		cancel()

		metrics.RecordScheduledRun(err)
		s.audit.LogScheduledRun(symbol, time.Since(start), err)
		if err != nil {
			failed++
		}
	}
	return failed
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs up to the
// graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled job run
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
