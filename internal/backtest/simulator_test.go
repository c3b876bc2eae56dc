package backtest

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/daytrade-predictor/internal/features"
	"github.com/yourusername/daytrade-predictor/internal/models"
)

type testBar struct {
	open, close float64
	target      int
}

func buildTable(bars []testBar) *features.Table {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	rows := make([]features.Row, len(bars))
	for i, b := range bars {
		rows[i] = features.Row{
			PriceBar: models.PriceBar{
				Date:   start.AddDate(0, 0, i),
				Open:   b.open,
				High:   math.Max(b.open, b.close),
				Low:    math.Min(b.open, b.close),
				Close:  b.close,
				Volume: 1000,
			},
			Features: map[string]float64{"gap_pct": 0},
			Target:   b.target,
		}
	}
	return features.NewTable(rows, []string{"gap_pct"}, features.TargetOpenToClose)
}

func workedExampleTable() *features.Table {
	return buildTable([]testBar{
		{open: 100, close: 101, target: 1},
		{open: 101, close: 100, target: 0},
		{open: 99, close: 102, target: 1},
	})
}

func TestSimulateWorkedExample(t *testing.T) {
	ledger, err := Simulate(workedExampleTable(), []int{1, 0, 1}, []float64{0.6, 0.4, 0.7}, 10000)
	require.NoError(t, err)
	require.Equal(t, 2, ledger.Len())

	first := ledger.Trades[0]
	assert.Equal(t, int64(100), first.Shares)
	assert.True(t, first.ProfitLoss.Equal(decimal.NewFromInt(100)))
	assert.True(t, first.Capital.Equal(decimal.NewFromInt(10100)))
	assert.InDelta(t, 1.0, first.ProfitLossPct, 1e-9)
	assert.True(t, first.WasCorrect)
	assert.Equal(t, 0.6, first.Confidence)

	second := ledger.Trades[1]
	assert.Equal(t, int64(102), second.Shares)
	assert.True(t, second.ProfitLoss.Equal(decimal.NewFromInt(306)))
	assert.Equal(t, 99.0, second.EntryPrice)
	assert.Equal(t, 102.0, second.ExitPrice)

	assert.True(t, ledger.InitialCapital.Equal(decimal.NewFromInt(10000)))
	assert.True(t, ledger.FinalCapital.Equal(decimal.NewFromInt(10406)))
}

func TestSimulateConservesProfitAndLoss(t *testing.T) {
	bars := make([]testBar, 60)
	predictions := make([]int, len(bars))
	confidences := make([]float64, len(bars))
	for i := range bars {
		open := 50 + 10*math.Sin(float64(i)/4) + 0.37*float64(i%7)
		bars[i] = testBar{open: math.Round(open*100) / 100, close: math.Round((open+math.Cos(float64(i))*1.3)*100) / 100}
		predictions[i] = (i / 2) % 2
		confidences[i] = 0.5
	}

	ledger, err := Simulate(buildTable(bars), predictions, confidences, 7531.25)
	require.NoError(t, err)

	ones := 0
	for _, p := range predictions {
		ones += p
	}
	assert.LessOrEqual(t, ledger.Len(), ones)
	assert.True(t, ledger.TotalProfitLoss().Equal(ledger.FinalCapital.Sub(ledger.InitialCapital)))

	// capital on each trade is the running sum
	running := ledger.InitialCapital
	for _, trade := range ledger.Trades {
		running = running.Add(trade.ProfitLoss)
		assert.True(t, running.Equal(trade.Capital))
	}
}

func TestSimulateSkipsWhenCapitalCannotBuyOneShare(t *testing.T) {
	ledger, err := Simulate(workedExampleTable(), []int{1, 1, 1}, []float64{0.9, 0.9, 0.9}, 50)
	require.NoError(t, err)
	assert.Zero(t, ledger.Len())
	assert.True(t, ledger.FinalCapital.Equal(decimal.NewFromInt(50)))
}

func TestSimulateAllFlatPredictions(t *testing.T) {
	ledger, err := Simulate(workedExampleTable(), []int{0, 0, 0}, []float64{0.1, 0.2, 0.3}, 10000)
	require.NoError(t, err)
	assert.Zero(t, ledger.Len())

	report := TradingReport(ledger)
	assert.Equal(t, TradingMetrics{InitialCapital: 10000, FinalCapital: 10000}, report)
}

func TestSimulateValidation(t *testing.T) {
	table := workedExampleTable()
	tests := []struct {
		name        string
		predictions []int
		confidences []float64
		capital     float64
	}{
		{"short predictions", []int{1, 0}, []float64{0.5, 0.5, 0.5}, 10000},
		{"short confidences", []int{1, 0, 1}, []float64{0.5}, 10000},
		{"non binary prediction", []int{1, 2, 0}, []float64{0.5, 0.5, 0.5}, 10000},
		{"zero capital", []int{1, 0, 1}, []float64{0.5, 0.5, 0.5}, 0},
		{"nan capital", []int{1, 0, 1}, []float64{0.5, 0.5, 0.5}, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Simulate(table, tt.predictions, tt.confidences, tt.capital)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrValidation))
		})
	}
}

func TestSimulateRejectsUndefinedPrices(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		open, close float64
	}{
		{"nan close", 100, math.NaN()},
		{"nan open", math.NaN(), 101},
		{"infinite close", 100, math.Inf(1)},
		{"negative infinite open", math.Inf(-1), 101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []features.Row{{
				PriceBar: models.PriceBar{Date: day, Open: tt.open, High: 102, Low: 99, Close: tt.close},
				Features: map[string]float64{"gap_pct": 0},
				Target:   1,
			}}
			table := features.NewTable(rows, []string{"gap_pct"}, features.TargetOpenToClose)

			var ledger *Ledger
			var err error
			require.NotPanics(t, func() {
				ledger, err = Simulate(table, []int{1}, []float64{0.8}, 10000)
			})
			require.Error(t, err)
			assert.Nil(t, ledger)
			assert.True(t, errors.Is(err, models.ErrValidation))
			assert.Contains(t, err.Error(), "row 0")
		})
	}
}

func TestSimulateIgnoresUndefinedPricesOnFlatRows(t *testing.T) {
	rows := []features.Row{{
		PriceBar: models.PriceBar{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Open: 100, Close: math.NaN()},
		Features: map[string]float64{"gap_pct": 0},
	}}
	table := features.NewTable(rows, []string{"gap_pct"}, features.TargetOpenToClose)

	ledger, err := Simulate(table, []int{0}, []float64{0.2}, 10000)
	require.NoError(t, err)
	assert.Zero(t, ledger.Len())
}

func TestEquityCurveFollowsLedger(t *testing.T) {
	ledger, err := Simulate(workedExampleTable(), []int{1, 0, 1}, []float64{0.6, 0.4, 0.7}, 10000)
	require.NoError(t, err)

	curve := NewEquityCurve(ledger)
	require.Len(t, curve, 3)
	assert.Equal(t, 10000.0, curve[0].Value)
	assert.Equal(t, 10100.0, curve[1].Value)
	assert.Equal(t, 10406.0, curve[2].Value)
	assert.Zero(t, curve.MaxCapitalDrawdown())
	assert.Len(t, curve.GetReturns(), 2)

	csv := curve.ToCSV()
	assert.Contains(t, csv, "date,capital,drawdown,trade_pnl\n")
	assert.Contains(t, csv, "2024-03-06,10406.000000,0.000000,306.000000")
}
