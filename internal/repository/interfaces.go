package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/daytrade-predictor/internal/models"
)

// BacktestResultRepository defines backtest result persistence
type BacktestResultRepository interface {
	// SaveResult stores a run summary and its trades atomically
	SaveResult(ctx context.Context, result *models.BacktestResult, trades []*models.BacktestTrade) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestResult, error)
	// GetLatest returns a symbol's most recent runs, newest first
	GetLatest(ctx context.Context, symbol string, limit int) ([]*models.BacktestResult, error)
	GetTrades(ctx context.Context, resultID uuid.UUID) ([]*models.BacktestTrade, error)
}
