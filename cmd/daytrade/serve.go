package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/daytrade-predictor/internal/health"
	"github.com/yourusername/daytrade-predictor/internal/metrics"
	"github.com/yourusername/daytrade-predictor/internal/scheduler"
)

var runOnStart bool

func init() {
	serveCmd.Flags().BoolVar(&runOnStart, "run-now", false, "Backtest every scheduled symbol once before waiting for the schedule")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled backtests with health and metrics endpoints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		deps, err := setupDependencies(ctx)
		if err != nil {
			return err
		}
		defer deps.Close()

		metrics.InitRegistry()
		checks := map[string]health.Checker{}
		if deps.db != nil {
			checks["database"] = deps.db
		}
		if deps.client != nil {
			checks["model_service"] = deps.client
		}

		var srv *health.Server
		if cfg.Metrics.Enabled {
			srv = health.NewServer(health.Config{
				ServiceName:    cfg.App.Name,
				Version:        Version,
				Port:           cfg.Metrics.Port,
				MetricsPath:    cfg.Metrics.Path,
				MetricsHandler: metrics.Handler(),
				Checks:         checks,
				Logger:         appLog,
			})
			if err := srv.Start(ctx); err != nil {
				return err
			}
		}

		sched := scheduler.NewScheduler(deps.backtestService(), appLog)
		if cfg.Schedule.Enabled {
			if err := sched.ScheduleBacktests(cfg.Schedule.Cron, cfg.Schedule.Symbols); err != nil {
				return err
			}
			if runOnStart {
				sched.RunAll(ctx, cfg.Schedule.Symbols)
			}
			if err := sched.Start(); err != nil {
				return err
			}
		}
		if srv != nil {
			srv.SetReady(true)
		}

		appLog.WithFields(logrus.Fields{
			"schedule": cfg.Schedule.Cron,
			"symbols":  cfg.Schedule.Symbols,
			"next_run": sched.NextRun(),
		}).Info("Daytrade service running")

		<-ctx.Done()
		appLog.Info("Shutdown signal received")

		if srv != nil {
			srv.SetReady(false)
		}
		if err := sched.Stop(); err != nil {
			appLog.WithError(err).Error("Error during scheduler shutdown")
		}
		if srv != nil {
			if err := srv.Shutdown(); err != nil {
				appLog.WithError(err).Error("Error during health server shutdown")
			}
		}
		appLog.Info("Daytrade service shut down")
		return nil
	},
}
