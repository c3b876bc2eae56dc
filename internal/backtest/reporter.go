package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateConsoleReport formats a result for terminal output
func GenerateConsoleReport(result *Result) string {
	tm := result.TradingMetrics
	pm := result.PredictionMetrics

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Backtest Report: %s\n", result.Symbol))
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Model Version: %s\n", result.ModelVersion))
	builder.WriteString(fmt.Sprintf("Samples: %d (%d features)\n", result.DataSummary.TotalSamples, result.DataSummary.NumFeatures))
	builder.WriteString(fmt.Sprintf("Accuracy: %.2f%%\n", pm.Accuracy*100))
	builder.WriteString(fmt.Sprintf("Total Trades: %d\n", tm.TotalTrades))
	builder.WriteString(fmt.Sprintf("Final Capital: %.2f\n", tm.FinalCapital))
	builder.WriteString(fmt.Sprintf("Total Return: %.2f%%\n", tm.TotalReturnPct))
	builder.WriteString(fmt.Sprintf("Win Rate: %.2f%%\n", tm.WinRate))
	builder.WriteString(fmt.Sprintf("Sharpe Ratio: %.2f\n", tm.SharpeRatio))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%%\n", tm.MaxDrawdown))
	builder.WriteString(fmt.Sprintf("Profit Factor: %.2f\n", tm.ProfitFactor))
	return builder.String()
}

// GenerateCSVExport exports key metrics for spreadsheets
func GenerateCSVExport(result *Result, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	tm := result.TradingMetrics
	csv := "metric,value\n" +
		fmt.Sprintf("accuracy,%.4f\n", result.PredictionMetrics.Accuracy) +
		fmt.Sprintf("total_trades,%d\n", tm.TotalTrades) +
		fmt.Sprintf("total_return_pct,%.4f\n", tm.TotalReturnPct) +
		fmt.Sprintf("sharpe_ratio,%.4f\n", tm.SharpeRatio) +
		fmt.Sprintf("max_drawdown,%.4f\n", tm.MaxDrawdown) +
		fmt.Sprintf("win_rate,%.4f\n", tm.WinRate) +
		fmt.Sprintf("profit_factor,%.4f\n", tm.ProfitFactor)
	return os.WriteFile(outputPath, []byte(csv), 0o644)
}

// WriteEquityCurve writes the ledger's capital path as CSV
func WriteEquityCurve(ledger *Ledger, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte(NewEquityCurve(ledger).ToCSV()), 0o644)
}
