package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yourusername/daytrade-predictor/internal/backtest"
	"github.com/yourusername/daytrade-predictor/internal/models"
	"github.com/yourusername/daytrade-predictor/internal/service"
)

var (
	equityCurvePath string
	summaryCSVPath  string
	printReport     bool
)

func init() {
	backtestCmd.Flags().StringVar(&equityCurvePath, "equity-curve", "", "Write the capital path of every trade to this CSV file")
	backtestCmd.Flags().StringVar(&summaryCSVPath, "summary-csv", "", "Write the headline metrics to this CSV file")
	backtestCmd.Flags().BoolVar(&printReport, "report", false, "Print a human readable report to stderr")
}

var backtestCmd = &cobra.Command{
	Use:   "backtest SYMBOL [INITIAL_CAPITAL]",
	Short: "Backtest a trained model and print the JSON result",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome, err := runBacktest(cmd, args)
		if err != nil {
			_ = writeJSON(os.Stdout, backtest.NewErrorResult(err))
			return err
		}
		return writeJSON(os.Stdout, outcome.Result)
	},
}

func runBacktest(cmd *cobra.Command, args []string) (*service.Outcome, error) {
	capital := cfg.Backtest.InitialCapital
	if len(args) == 2 {
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return nil, models.WrapValidationError(fmt.Sprintf("invalid initial capital %q", args[1]), err)
		}
		capital = v
	}

	ctx := cmd.Context()
	deps, err := setupDependencies(ctx)
	if err != nil {
		return nil, err
	}
	defer deps.Close()

	outcome, err := deps.backtestService().Execute(ctx, service.BacktestRequest{Symbol: args[0], InitialCapital: capital})
	if err != nil {
		return nil, err
	}

	if printReport {
		fmt.Fprintln(os.Stderr, backtest.GenerateConsoleReport(outcome.Result))
	}
	if cfg.Backtest.OutputPath != "" {
		if err := backtest.ExportToJSON(outcome.Result, cfg.Backtest.OutputPath); err != nil {
			appLog.WithError(err).Warn("Failed to export result")
		}
	}
	if equityCurvePath != "" {
		if err := backtest.WriteEquityCurve(outcome.Ledger, equityCurvePath); err != nil {
			appLog.WithError(err).Warn("Failed to write equity curve")
		}
	}
	if summaryCSVPath != "" {
		if err := backtest.GenerateCSVExport(outcome.Result, summaryCSVPath); err != nil {
			appLog.WithError(err).Warn("Failed to write summary CSV")
		}
	}
	return outcome, nil
}
