package database

import (
	"context"
	"fmt"

	"github.com/yourusername/daytrade-predictor/internal/config"
)

// Schema creates the backtest tables when they do not exist yet
const Schema = `
CREATE TABLE IF NOT EXISTS backtest_results (
    id                   UUID PRIMARY KEY,
    stock_symbol         TEXT NOT NULL,
    model_version        TEXT NOT NULL,
    start_date           DATE NOT NULL,
    end_date             DATE NOT NULL,
    initial_capital      DOUBLE PRECISION NOT NULL,
    final_capital        DOUBLE PRECISION NOT NULL,
    total_return         DOUBLE PRECISION NOT NULL,
    total_trades         INTEGER NOT NULL,
    winning_trades       INTEGER NOT NULL,
    losing_trades        INTEGER NOT NULL,
    win_rate             DOUBLE PRECISION NOT NULL,
    total_profit_loss    DOUBLE PRECISION NOT NULL,
    accuracy_percentage  DOUBLE PRECISION NOT NULL,
    sharpe_ratio         DOUBLE PRECISION NOT NULL,
    max_drawdown         DOUBLE PRECISION NOT NULL,
    avg_profit_per_trade DOUBLE PRECISION NOT NULL,
    avg_loss_per_trade   DOUBLE PRECISION NOT NULL,
    profit_factor        DOUBLE PRECISION NOT NULL,
    largest_win          DOUBLE PRECISION NOT NULL,
    largest_loss         DOUBLE PRECISION NOT NULL,
    full_results         JSONB,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_backtest_results_symbol_created
    ON backtest_results (stock_symbol, created_at DESC);

CREATE TABLE IF NOT EXISTS backtest_trades (
    id                 UUID PRIMARY KEY,
    backtest_result_id UUID NOT NULL REFERENCES backtest_results (id) ON DELETE CASCADE,
    stock_symbol       TEXT NOT NULL,
    entry_date         DATE NOT NULL,
    exit_date          DATE NOT NULL,
    entry_price        DOUBLE PRECISION NOT NULL,
    exit_price         DOUBLE PRECISION NOT NULL,
    shares             BIGINT NOT NULL,
    prediction         TEXT NOT NULL,
    actual_direction   TEXT NOT NULL,
    was_correct        BOOLEAN NOT NULL,
    profit_loss        DOUBLE PRECISION NOT NULL,
    return_percentage  DOUBLE PRECISION NOT NULL,
    confidence_score   DOUBLE PRECISION NOT NULL,
    exit_reason        TEXT NOT NULL,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_backtest_trades_result
    ON backtest_trades (backtest_result_id);
`

// Initialize creates a database connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema applies Schema idempotently
func EnsureSchema(ctx context.Context, db *DB) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
