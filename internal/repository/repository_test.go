package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/daytrade-predictor/internal/database"
	"github.com/yourusername/daytrade-predictor/internal/models"
)

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}

func TestBacktestResultRepositoryRoundTrip(t *testing.T) {
	db := database.SetupTestDB(t)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	symbol := "T" + uuid.NewString()[:6]
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	result := &models.BacktestResult{
		ID:             uuid.New(),
		StockSymbol:    symbol,
		ModelVersion:   "v1",
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, 1),
		InitialCapital: 10000,
		FinalCapital:   10406,
		TotalTrades:    2,
		FullResults:    json.RawMessage(`{"success":true}`),
		CreatedAt:      time.Now().UTC(),
	}
	trades := []*models.BacktestTrade{
		{ID: uuid.New(), StockSymbol: symbol, EntryDate: start, ExitDate: start, EntryPrice: 100, ExitPrice: 101, Shares: 100, Prediction: "up", ActualDirection: "up", WasCorrect: true, ProfitLoss: 100, ExitReason: "market_close", CreatedAt: time.Now().UTC()},
		{ID: uuid.New(), StockSymbol: symbol, EntryDate: start.AddDate(0, 0, 1), ExitDate: start.AddDate(0, 0, 1), EntryPrice: 99, ExitPrice: 102, Shares: 102, Prediction: "up", ActualDirection: "up", WasCorrect: true, ProfitLoss: 306, ExitReason: "market_close", CreatedAt: time.Now().UTC()},
	}

	require.NoError(t, repos.BacktestResult.SaveResult(ctx, result, trades))

	latest, err := repos.BacktestResult.GetLatest(ctx, symbol, 5)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, result.ID, latest[0].ID)
	assert.Equal(t, 10406.0, latest[0].FinalCapital)

	stored, err := repos.BacktestResult.GetTrades(ctx, result.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, int64(102), stored[1].Shares)

	_, err = repos.BacktestResult.GetByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
