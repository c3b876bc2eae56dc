package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/daytrade-predictor/internal/models"
)

// DataSummary describes the table a backtest ran over
type DataSummary struct {
	TotalSamples int `json:"total_samples"`
	NumFeatures  int `json:"num_features"`
	RowsDropped  int `json:"rows_dropped"`
	InputRows    int `json:"input_rows"`
}

// Result is the record reported to the caller of a backtest run
type Result struct {
	Success           bool                  `json:"success"`
	Symbol            string                `json:"symbol"`
	StockSymbol       string                `json:"stock_symbol"`
	RunID             uuid.UUID             `json:"run_id"`
	BacktestedAt      time.Time             `json:"backtested_at"`
	ModelVersion      string                `json:"model_version"`
	ModelTrainedAt    string                `json:"model_trained_at"`
	DataSummary       DataSummary           `json:"data_summary"`
	PredictionMetrics ClassificationMetrics `json:"prediction_metrics"`
	TradingMetrics    TradingMetrics        `json:"trading_metrics"`
	RecentTrades      []Trade               `json:"recent_trades"`
}

// ErrorResult is reported instead of Result when a run fails
type ErrorResult struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorKind string `json:"error_kind"`
	Message   string `json:"message"`
}

// ResultParams groups the inputs of NewResult
type ResultParams struct {
	Symbol         string
	ModelVersion   string
	ModelTrainedAt string
	Summary        DataSummary
	Report         MetricsReport
	Ledger         *Ledger
	RecentLimit    int
}

// NewResult assembles a successful result, keeping only the last
// RecentLimit trades
func NewResult(params ResultParams) *Result {
	recent := []Trade{}
	if params.Ledger != nil {
		recent = append(recent, params.Ledger.Recent(params.RecentLimit)...)
	}
	return &Result{
		Success:           true,
		Symbol:            params.Symbol,
		StockSymbol:       params.Symbol,
		RunID:             uuid.New(),
		BacktestedAt:      time.Now().UTC(),
		ModelVersion:      orUnknown(params.ModelVersion),
		ModelTrainedAt:    orUnknown(params.ModelTrainedAt),
		DataSummary:       params.Summary,
		PredictionMetrics: params.Report.Classification,
		TradingMetrics:    params.Report.Trading,
		RecentTrades:      recent,
	}
}

// NewErrorResult reports err with its machine-readable kind
func NewErrorResult(err error) ErrorResult {
	kind := models.ErrorKind(err)
	return ErrorResult{
		Success:   false,
		Error:     kind,
		ErrorKind: kind,
		Message:   err.Error(),
	}
}

// ToModel converts a result into its persisted summary row
func (r *Result) ToModel(start, end time.Time) (*models.BacktestResult, error) {
	full, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	tm := r.TradingMetrics
	return &models.BacktestResult{
		ID:                 r.RunID,
		StockSymbol:        r.Symbol,
		ModelVersion:       r.ModelVersion,
		StartDate:          start,
		EndDate:            end,
		InitialCapital:     tm.InitialCapital,
		FinalCapital:       tm.FinalCapital,
		TotalReturn:        tm.TotalReturnPct,
		TotalTrades:        tm.TotalTrades,
		WinningTrades:      tm.WinningTrades,
		LosingTrades:       tm.LosingTrades,
		WinRate:            tm.WinRate,
		TotalProfitLoss:    tm.TotalProfitLoss,
		AccuracyPercentage: r.PredictionMetrics.Accuracy * 100,
		SharpeRatio:        tm.SharpeRatio,
		MaxDrawdown:        tm.MaxDrawdown,
		AvgProfitPerTrade:  tm.AvgProfitPerTrade,
		AvgLossPerTrade:    tm.AvgLoss,
		ProfitFactor:       tm.ProfitFactor,
		LargestWin:         tm.LargestWin,
		LargestLoss:        tm.LargestLoss,
		FullResults:        full,
		CreatedAt:          r.BacktestedAt,
	}, nil
}

// ExportToJSON writes any result record to a JSON file
func ExportToJSON(value any, outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// TradeModels converts the ledger into persisted trade rows for one run
func (l *Ledger) TradeModels(runID uuid.UUID, symbol string) []*models.BacktestTrade {
	out := make([]*models.BacktestTrade, 0, len(l.Trades))
	now := time.Now().UTC()
	for _, trade := range l.Trades {
		out = append(out, &models.BacktestTrade{
			ID:               uuid.New(),
			BacktestResultID: runID,
			StockSymbol:      symbol,
			EntryDate:        trade.Date,
			ExitDate:         trade.Date,
			EntryPrice:       trade.EntryPrice,
			ExitPrice:        trade.ExitPrice,
			Shares:           trade.Shares,
			Prediction:       models.DirectionLabel(trade.Prediction),
			ActualDirection:  models.DirectionLabel(trade.Actual),
			WasCorrect:       trade.WasCorrect,
			ProfitLoss:       trade.ProfitLoss.InexactFloat64(),
			ReturnPercentage: trade.ProfitLossPct,
			ConfidenceScore:  trade.Confidence,
			ExitReason:       "market_close",
			CreatedAt:        now,
		})
	}
	return out
}
