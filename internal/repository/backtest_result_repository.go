package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/daytrade-predictor/internal/database"
	"github.com/yourusername/daytrade-predictor/internal/models"
)

const errScanBacktestResult = "failed to scan backtest result: %w"

const backtestResultColumns = `
	id, stock_symbol, model_version, start_date, end_date,
	initial_capital, final_capital, total_return, total_trades, winning_trades, losing_trades,
	win_rate, total_profit_loss, accuracy_percentage, sharpe_ratio, max_drawdown,
	avg_profit_per_trade, avg_loss_per_trade, profit_factor, largest_win, largest_loss,
	full_results, created_at`

const backtestTradeColumns = `
	id, backtest_result_id, stock_symbol, entry_date, exit_date, entry_price, exit_price,
	shares, prediction, actual_direction, was_correct, profit_loss, return_percentage,
	confidence_score, exit_reason, created_at`

// PostgresBacktestResultRepository implements BacktestResultRepository for PostgreSQL
type PostgresBacktestResultRepository struct {
	db *database.DB
}

// NewPostgresBacktestResultRepository creates a new backtest result repository
func NewPostgresBacktestResultRepository(db *database.DB) BacktestResultRepository {
	return &PostgresBacktestResultRepository{db: db}
}

// SaveResult inserts the summary row and every trade in one transaction
func (r *PostgresBacktestResultRepository) SaveResult(ctx context.Context, result *models.BacktestResult, trades []*models.BacktestTrade) error {
	if result == nil {
		return models.NewValidationError("backtest result is required")
	}

	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query := `INSERT INTO backtest_results (` + backtestResultColumns + `)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)`

		if _, err := tx.Exec(ctx, query,
			result.ID, result.StockSymbol, result.ModelVersion, result.StartDate, result.EndDate,
			result.InitialCapital, result.FinalCapital, result.TotalReturn, result.TotalTrades, result.WinningTrades, result.LosingTrades,
			result.WinRate, result.TotalProfitLoss, result.AccuracyPercentage, result.SharpeRatio, result.MaxDrawdown,
			result.AvgProfitPerTrade, result.AvgLossPerTrade, result.ProfitFactor, result.LargestWin, result.LargestLoss,
			result.FullResults, result.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to save backtest result: %w", err)
		}

		if len(trades) == 0 {
			return nil
		}

		tradeQuery := `INSERT INTO backtest_trades (` + backtestTradeColumns + `)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`

		batch := &pgx.Batch{}
		for _, t := range trades {
			batch.Queue(tradeQuery,
				t.ID, result.ID, t.StockSymbol, t.EntryDate, t.ExitDate, t.EntryPrice, t.ExitPrice,
				t.Shares, t.Prediction, t.ActualDirection, t.WasCorrect, t.ProfitLoss, t.ReturnPercentage,
				t.ConfidenceScore, t.ExitReason, t.CreatedAt,
			)
		}

		br := tx.SendBatch(ctx, batch)
		for range trades {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("failed to save backtest trade: %w", err)
			}
		}
		return br.Close()
	})
}

// GetByID retrieves one backtest result
func (r *PostgresBacktestResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestResult, error) {
	query := `SELECT ` + backtestResultColumns + ` FROM backtest_results WHERE id = $1`

	result, err := scanBacktestResult(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("backtest result", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf(errScanBacktestResult, err)
	}
	return result, nil
}

// GetLatest retrieves a symbol's latest backtest results
func (r *PostgresBacktestResultRepository) GetLatest(ctx context.Context, symbol string, limit int) ([]*models.BacktestResult, error) {
	query := `SELECT ` + backtestResultColumns + `
		FROM backtest_results WHERE stock_symbol = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest backtest results: %w", err)
	}
	defer rows.Close()

	var results []*models.BacktestResult
	for rows.Next() {
		result, err := scanBacktestResult(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanBacktestResult, err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// GetTrades retrieves the trades of one run in date order
func (r *PostgresBacktestResultRepository) GetTrades(ctx context.Context, resultID uuid.UUID) ([]*models.BacktestTrade, error) {
	query := `SELECT ` + backtestTradeColumns + `
		FROM backtest_trades WHERE backtest_result_id = $1 ORDER BY entry_date`

	rows, err := r.db.Query(ctx, query, resultID)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest trades: %w", err)
	}
	defer rows.Close()

	var trades []*models.BacktestTrade
	for rows.Next() {
		t := &models.BacktestTrade{}
		if err := rows.Scan(
			&t.ID, &t.BacktestResultID, &t.StockSymbol, &t.EntryDate, &t.ExitDate, &t.EntryPrice, &t.ExitPrice,
			&t.Shares, &t.Prediction, &t.ActualDirection, &t.WasCorrect, &t.ProfitLoss, &t.ReturnPercentage,
			&t.ConfidenceScore, &t.ExitReason, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan backtest trade: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func scanBacktestResult(row pgx.Row) (*models.BacktestResult, error) {
	result := &models.BacktestResult{}
	err := row.Scan(
		&result.ID, &result.StockSymbol, &result.ModelVersion, &result.StartDate, &result.EndDate,
		&result.InitialCapital, &result.FinalCapital, &result.TotalReturn, &result.TotalTrades, &result.WinningTrades, &result.LosingTrades,
		&result.WinRate, &result.TotalProfitLoss, &result.AccuracyPercentage, &result.SharpeRatio, &result.MaxDrawdown,
		&result.AvgProfitPerTrade, &result.AvgLossPerTrade, &result.ProfitFactor, &result.LargestWin, &result.LargestLoss,
		&result.FullResults, &result.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}
