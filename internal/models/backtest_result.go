package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BacktestResult represents a persisted backtest run
type BacktestResult struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	StockSymbol        string          `db:"stock_symbol" json:"stock_symbol"`
	ModelVersion       string          `db:"model_version" json:"model_version"`
	StartDate          time.Time       `db:"start_date" json:"start_date"`
	EndDate            time.Time       `db:"end_date" json:"end_date"`
	InitialCapital     float64         `db:"initial_capital" json:"initial_capital"`
	FinalCapital       float64         `db:"final_capital" json:"final_capital"`
	TotalReturn        float64         `db:"total_return" json:"total_return"`
	TotalTrades        int             `db:"total_trades" json:"total_trades"`
	WinningTrades      int             `db:"winning_trades" json:"winning_trades"`
	LosingTrades       int             `db:"losing_trades" json:"losing_trades"`
	WinRate            float64         `db:"win_rate" json:"win_rate"`
	TotalProfitLoss    float64         `db:"total_profit_loss" json:"total_profit_loss"`
	AccuracyPercentage float64         `db:"accuracy_percentage" json:"accuracy_percentage"`
	SharpeRatio        float64         `db:"sharpe_ratio" json:"sharpe_ratio"`
	MaxDrawdown        float64         `db:"max_drawdown" json:"max_drawdown"`
	AvgProfitPerTrade  float64         `db:"avg_profit_per_trade" json:"avg_profit_per_trade"`
	AvgLossPerTrade    float64         `db:"avg_loss_per_trade" json:"avg_loss_per_trade"`
	ProfitFactor       float64         `db:"profit_factor" json:"profit_factor"`
	LargestWin         float64         `db:"largest_win" json:"largest_win"`
	LargestLoss        float64         `db:"largest_loss" json:"largest_loss"`
	FullResults        json.RawMessage `db:"full_results" json:"full_results"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
}

// BacktestTrade represents one persisted simulated trade
type BacktestTrade struct {
	ID               uuid.UUID `db:"id" json:"id"`
	BacktestResultID uuid.UUID `db:"backtest_result_id" json:"backtest_result_id"`
	StockSymbol      string    `db:"stock_symbol" json:"stock_symbol"`
	EntryDate        time.Time `db:"entry_date" json:"entry_date"`
	ExitDate         time.Time `db:"exit_date" json:"exit_date"`
	EntryPrice       float64   `db:"entry_price" json:"entry_price"`
	ExitPrice        float64   `db:"exit_price" json:"exit_price"`
	Shares           int64     `db:"shares" json:"shares"`
	Prediction       string    `db:"prediction" json:"prediction"`
	ActualDirection  string    `db:"actual_direction" json:"actual_direction"`
	WasCorrect       bool      `db:"was_correct" json:"was_correct"`
	ProfitLoss       float64   `db:"profit_loss" json:"profit_loss"`
	ReturnPercentage float64   `db:"return_percentage" json:"return_percentage"`
	ConfidenceScore  float64   `db:"confidence_score" json:"confidence_score"`
	ExitReason       string    `db:"exit_reason" json:"exit_reason"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// DirectionLabel converts a binary label into the stored up/down form
func DirectionLabel(label int) string {
	if label == 1 {
		return "up"
	}
	return "down"
}
