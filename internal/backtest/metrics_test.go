package backtest

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/daytrade-predictor/internal/models"
)

// ledgerFromReturns builds a ledger of one-share trades at 100 with the given
// percent returns
func ledgerFromReturns(initial float64, pcts ...float64) *Ledger {
	state := newSimulationState(decimal.NewFromFloat(initial))
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, pct := range pcts {
		pnl := decimal.NewFromFloat(pct)
		state.apply(Trade{
			Date:          day.AddDate(0, 0, i),
			Prediction:    1,
			EntryPrice:    100,
			ExitPrice:     100 + pct,
			Shares:        1,
			ProfitLoss:    pnl,
			ProfitLossPct: pct,
		})
	}
	return state.ledger()
}

func TestClassificationReport(t *testing.T) {
	m, err := ClassificationReport([]int{1, 0, 1, 1}, []int{1, 0, 0, 1}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, m.Accuracy, 1e-12)
	assert.InDelta(t, 1.0, m.Precision, 1e-12)
	assert.InDelta(t, 2.0/3.0, m.Recall, 1e-12)
	assert.InDelta(t, 0.8, m.F1Score, 1e-12)
	assert.Nil(t, m.ROCAUC)
}

func TestClassificationReportZeroDivision(t *testing.T) {
	m, err := ClassificationReport([]int{1, 0, 1}, []int{0, 0, 0}, []float64{0.2, 0.1, 0.3})
	require.NoError(t, err)
	assert.Zero(t, m.Precision)
	assert.Zero(t, m.Recall)
	assert.Zero(t, m.F1Score)
	require.NotNil(t, m.ROCAUC)
	assert.InDelta(t, 1.0, *m.ROCAUC, 1e-12)
}

func TestClassificationReportLengthMismatch(t *testing.T) {
	_, err := ClassificationReport([]int{1, 0}, []int{1}, nil)
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = ClassificationReport([]int{1, 0}, []int{1, 0}, []float64{0.3})
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestROCAUC(t *testing.T) {
	tests := []struct {
		name   string
		labels []int
		scores []float64
		want   float64
	}{
		{"ranked", []int{0, 0, 1, 1}, []float64{0.1, 0.4, 0.35, 0.8}, 0.75},
		{"ties average", []int{0, 1}, []float64{0.5, 0.5}, 0.5},
		{"perfect", []int{0, 1, 0, 1}, []float64{0.1, 0.9, 0.2, 0.8}, 1},
		{"single class", []int{1, 1, 1}, []float64{0.2, 0.6, 0.9}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, rocAUC(tt.labels, tt.scores), 1e-12)
		})
	}
}

func TestTradingReport(t *testing.T) {
	ledger := ledgerFromReturns(1000, 10, -5, -2, 1)
	m := TradingReport(ledger)

	assert.Equal(t, 4, m.TotalTrades)
	assert.InDelta(t, 4.0, m.TotalProfitLoss, 1e-9)
	assert.InDelta(t, 50.0, m.WinRate, 1e-9)
	assert.InDelta(t, 1.0, m.AvgProfitPerTrade, 1e-9)
	assert.Equal(t, 2, m.WinningTrades)
	assert.Equal(t, 2, m.LosingTrades)
	assert.InDelta(t, 5.5, m.AvgWin, 1e-9)
	assert.InDelta(t, -3.5, m.AvgLoss, 1e-9)
	assert.InDelta(t, 11.0, m.GrossProfit, 1e-9)
	assert.InDelta(t, 7.0, m.GrossLoss, 1e-9)
	assert.InDelta(t, 11.0/7.0, m.ProfitFactor, 1e-9)
	assert.Equal(t, 10.0, m.LargestWin)
	assert.Equal(t, -5.0, m.LargestLoss)
	assert.InDelta(t, -7.0, m.MaxDrawdown, 1e-9)
	assert.Equal(t, 1000.0, m.InitialCapital)
	assert.InDelta(t, 1004.0, m.FinalCapital, 1e-9)
	assert.InDelta(t, 0.4, m.TotalReturnPct, 1e-9)
	assert.InDelta(t, 4.0, m.TotalReturnDollars, 1e-9)

	returns := []float64{0.10, -0.05, -0.02, 0.01}
	assert.InDelta(t, average(returns)/sampleStddev(returns)*math.Sqrt(TradingDaysPerYear), m.SharpeRatio, 1e-9)
}

func TestTradingReportIsIdempotent(t *testing.T) {
	ledger := ledgerFromReturns(5000, 2, -1, 3, 0.5)
	assert.Equal(t, TradingReport(ledger), TradingReport(ledger))
}

func TestTradingReportGuards(t *testing.T) {
	t.Run("no losses gives zero profit factor", func(t *testing.T) {
		m := TradingReport(ledgerFromReturns(1000, 1, 2))
		assert.Zero(t, m.ProfitFactor)
		assert.Zero(t, m.MaxDrawdown)
	})

	t.Run("flat returns give zero sharpe", func(t *testing.T) {
		m := TradingReport(ledgerFromReturns(1000, 1.5, 1.5))
		assert.Zero(t, m.SharpeRatio)
	})

	t.Run("single trade gives zero sharpe", func(t *testing.T) {
		m := TradingReport(ledgerFromReturns(1000, 3))
		assert.Zero(t, m.SharpeRatio)
		assert.Equal(t, 100.0, m.WinRate)
	})

	t.Run("drawdown is never positive", func(t *testing.T) {
		m := TradingReport(ledgerFromReturns(1000, -1, -2, 4, -8, 3))
		assert.LessOrEqual(t, m.MaxDrawdown, 0.0)
		// cumulative -1, -3, 1, -7, -4 with peak -1 then 1
		assert.InDelta(t, -8.0, m.MaxDrawdown, 1e-9)
	})

	t.Run("nil ledger", func(t *testing.T) {
		assert.Equal(t, TradingMetrics{}, TradingReport(nil))
	})
}

func TestSampleStatistics(t *testing.T) {
	assert.InDelta(t, 2.5, average([]float64{1, 2, 3, 4}), 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), sampleStddev([]float64{1, 2, 3, 4}), 1e-12)
	assert.Zero(t, average(nil))
	assert.Zero(t, sampleStddev([]float64{3}))
	assert.Zero(t, sampleStddev([]float64{1.5, 1.5}))
}
