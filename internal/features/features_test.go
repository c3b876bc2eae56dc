package features

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/daytrade-predictor/internal/indicators"
	"github.com/yourusername/daytrade-predictor/internal/models"
)

func tradingDays(start time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	for d := start; len(out) < n; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		out = append(out, d)
	}
	return out
}

func syntheticBars(n int) []models.PriceBar {
	dates := tradingDays(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), n)
	bars := make([]models.PriceBar, n)
	for i := range bars {
		x := float64(i)
		open := 100 + 8*math.Sin(x/7) + 0.05*x
		close := open + 1.5*math.Sin(x*1.3)
		bars[i] = models.PriceBar{
			Date:   dates[i],
			Open:   open,
			High:   math.Max(open, close) + 0.5 + 0.3*math.Abs(math.Cos(x)),
			Low:    math.Min(open, close) - 0.5 - 0.2*math.Abs(math.Sin(x)),
			Close:  close,
			Volume: int64(1_000_000 + (i*37%11)*50_000),
		}
	}
	return bars
}

func allFeaturesConfig() Config {
	cfg := DefaultConfig()
	cfg.FeaturesEnabled = AllFlags()
	return cfg
}

func TestEngineerProducesFullyDefinedRows(t *testing.T) {
	bars := syntheticBars(300)
	table, err := Engineer(bars, allFeaturesConfig())
	require.NoError(t, err)
	require.NotZero(t, table.Len())

	assert.Equal(t, 300, table.InputRows)
	assert.Equal(t, table.InputRows, table.Len()+table.RowsDropped)
	// sma_200 needs 199 bars of history and the final bar has no label
	assert.GreaterOrEqual(t, table.RowsDropped, 200)

	names := table.FeatureNames()
	for _, row := range table.Rows {
		require.Len(t, row.Features, len(names))
		for _, name := range names {
			v, ok := row.Features[name]
			require.True(t, ok, name)
			require.False(t, indicators.Undefined(v), "%s undefined on %s", name, row.Date)
		}
		assert.Contains(t, []int{0, 1}, row.Target)
	}

	for _, name := range []string{
		"gap_pct", "close_position", "body_to_range_ratio",
		"sma_200", "above_sma200", "rsi_neutral", "macd_histogram_increasing",
		"bb_width_pct", "bb_squeeze", "bb_position", "volatility_high",
		"stochastic_d", "volume_surge", "obv_sma", "return_20d", "volatility_20d",
		"trend_strength_10d", "higher_highs_3d", "consecutive_down",
		"is_friday", "week_of_month", "month",
	} {
		assert.Contains(t, names, name)
	}
	for _, excluded := range []string{"date", "open", "high", "low", "close", "volume", "target"} {
		assert.NotContains(t, names, excluded)
	}
}

func TestEngineerGatesIndicatorFamilies(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.FeaturesEnabled.Set("sma_50", true))
	require.NoError(t, cfg.FeaturesEnabled.Set("bb_width", true))

	table, err := Engineer(syntheticBars(150), cfg)
	require.NoError(t, err)

	names := table.FeatureNames()
	assert.Contains(t, names, "sma_50")
	assert.Contains(t, names, "above_sma50")
	assert.NotContains(t, names, "sma_10")
	assert.NotContains(t, names, "rsi_14")
	assert.NotContains(t, names, "obv")
	// width is only derived together with a band
	assert.NotContains(t, names, "bb_width_pct")
	assert.NotContains(t, names, "bb_position")
}

func TestEngineerExcludesLastBar(t *testing.T) {
	bars := syntheticBars(120)
	for _, target := range []TargetType{TargetOpenToClose, TargetCloseToClose, TargetThreshold} {
		t.Run(string(target), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.TargetType = target
			table, err := Engineer(bars, cfg)
			require.NoError(t, err)
			last := table.Rows[table.Len()-1]
			assert.True(t, last.Date.Before(bars[len(bars)-1].Date))
		})
	}
}

func TestEngineerLabelsMatchNextBar(t *testing.T) {
	bars := syntheticBars(150)
	index := make(map[time.Time]int, len(bars))
	for i, bar := range bars {
		index[bar.Date] = i
	}

	table, err := Engineer(bars, DefaultConfig())
	require.NoError(t, err)
	for _, row := range table.Rows {
		next := bars[index[row.Date]+1]
		want := 0
		if next.Close > next.Open {
			want = 1
		}
		assert.Equal(t, want, row.Target, row.Date.String())
	}
}

func TestEngineerSortsStably(t *testing.T) {
	bars := syntheticBars(300)
	reversed := make([]models.PriceBar, len(bars))
	for i := range bars {
		reversed[len(bars)-1-i] = bars[i]
	}

	want, err := Engineer(bars, allFeaturesConfig(), WithMinRows(0))
	require.NoError(t, err)
	got, err := Engineer(reversed, allFeaturesConfig(), WithMinRows(0))
	require.NoError(t, err)

	require.Equal(t, want.Len(), got.Len())
	for i := range want.Rows {
		assert.Equal(t, want.Rows[i].Date, got.Rows[i].Date)
		assert.Equal(t, want.Rows[i].Target, got.Rows[i].Target)
	}
	// input slice is left untouched
	assert.Equal(t, bars[len(bars)-1].Date, reversed[0].Date)
}

func opensOn(table *Table, day time.Time) []float64 {
	var out []float64
	for _, row := range table.Rows {
		if row.Date.Equal(day) {
			out = append(out, row.Open)
		}
	}
	return out
}

func TestEngineerKeepsInputOrderForDuplicateDates(t *testing.T) {
	bars := syntheticBars(300)
	day := bars[260].Date
	bars[261].Date = day
	bars[262].Date = day
	inOrder := []float64{bars[260].Open, bars[261].Open, bars[262].Open}

	table, err := Engineer(bars, allFeaturesConfig())
	require.NoError(t, err)
	assert.Equal(t, inOrder, opensOn(table, day))

	reversed := make([]models.PriceBar, len(bars))
	for i := range bars {
		reversed[len(bars)-1-i] = bars[i]
	}
	table, err = Engineer(reversed, allFeaturesConfig())
	require.NoError(t, err)
	// ties keep the order they arrived in, so reversing the input reverses them
	assert.Equal(t, []float64{inOrder[2], inOrder[1], inOrder[0]}, opensOn(table, day))
}

func TestEngineerErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := Engineer(nil, DefaultConfig())
		assert.True(t, errors.Is(err, models.ErrValidation))
	})

	t.Run("below minimum rows", func(t *testing.T) {
		_, err := Engineer(syntheticBars(50), DefaultConfig())
		var insufficient *models.InsufficientDataError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 50, insufficient.Rows)
		assert.Equal(t, DefaultMinRows, insufficient.Minimum)
	})

	t.Run("missing date", func(t *testing.T) {
		bars := syntheticBars(120)
		bars[3].Date = time.Time{}
		_, err := Engineer(bars, DefaultConfig())
		assert.True(t, errors.Is(err, models.ErrValidation))
	})

	t.Run("nothing survives dropna", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.FeaturesEnabled.SMA200 = true
		_, err := Engineer(syntheticBars(150), cfg)
		assert.True(t, errors.Is(err, models.ErrValidation))
	})
}

func TestLabel(t *testing.T) {
	bars := []models.PriceBar{
		{Open: 100, Close: 101},
		{Open: 101, Close: 100},
		{Open: 99, Close: 102},
		{Open: 102, Close: 102.5},
	}

	tests := []struct {
		name   string
		target TargetType
		want   []float64
	}{
		{"open to close", TargetOpenToClose, []float64{0, 1, 1}},
		{"close to close", TargetCloseToClose, []float64{0, 1, 1}},
		{"threshold", TargetThreshold, []float64{0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Label(bars, tt.target, DefaultTargetThreshold)
			require.Len(t, got, len(bars))
			assert.Equal(t, tt.want, got[:3])
			assert.True(t, math.IsNaN(got[3]))
		})
	}
}

func TestTableMatrix(t *testing.T) {
	table, err := Engineer(syntheticBars(120), DefaultConfig())
	require.NoError(t, err)

	x, err := table.Matrix([]string{"gap_pct", "month"})
	require.NoError(t, err)
	require.Len(t, x, table.Len())
	assert.Equal(t, table.Rows[0].Features["month"], x[0][1])

	_, err = table.Matrix([]string{"gap_pct", "rsi_14"})
	assert.True(t, errors.Is(err, models.ErrValidation))

	assert.Len(t, table.Labels(), table.Len())
}

func TestDayOfWeekStartsMonday(t *testing.T) {
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, dayOfWeek(monday))
	assert.Equal(t, 4, dayOfWeek(monday.AddDate(0, 0, 4)))
	assert.Equal(t, 6, dayOfWeek(monday.AddDate(0, 0, 6)))
}

func TestPatternCountsStartAfterFirstComparison(t *testing.T) {
	f := newFrame(syntheticBars(10))
	addMultiTimeframeFeatures(f)

	for _, name := range []string{"higher_highs_3d", "lower_lows_3d"} {
		col := f.columns[name]
		// bar 0 has no predecessor, so the first full window of comparisons ends at bar 3
		for i := 0; i < 3; i++ {
			assert.True(t, indicators.Undefined(col[i]), "%s[%d]", name, i)
		}
		assert.False(t, indicators.Undefined(col[3]), name)
		assert.GreaterOrEqual(t, col[3], 0.0)
		assert.LessOrEqual(t, col[3], 3.0)
	}
}
