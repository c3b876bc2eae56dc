package features

import (
	"math"

	"github.com/yourusername/daytrade-predictor/internal/indicators"
)

// Epsilon guards divisions by a day's range or band width
const Epsilon = 0.0001

// DojiBodyPct is the body size, as percent of open, under which a candle is a doji
const DojiBodyPct = 0.1

func addIntradayFeatures(f *frame) {
	n := f.len()
	prevClose := indicators.Shift(f.close, 1)

	gap := percentOf(f.open, prevClose, prevClose)
	f.set("gap_pct", gap)
	f.set("gap_direction", flag(n, func(i int) bool { return gap[i] > 0 }, gap))
	f.set("gap_size", series(n, func(i int) float64 { return math.Abs(gap[i]) }))

	rangePct := percentOf(f.high, f.low, f.open)
	f.set("intraday_range_pct", rangePct)
	f.set("intraday_high_pct", percentOf(f.high, f.open, f.open))
	f.set("intraday_low_pct", percentOf(f.open, f.low, f.open))

	f.set("close_position", series(n, func(i int) float64 {
		return (f.close[i] - f.low[i]) / (f.high[i] - f.low[i] + Epsilon)
	}))

	body := series(n, func(i int) float64 {
		return math.Abs(f.close[i]-f.open[i]) / f.open[i] * 100
	})
	f.set("body_size_pct", body)
	f.set("upper_shadow_pct", series(n, func(i int) float64 {
		return (f.high[i] - math.Max(f.close[i], f.open[i])) / f.open[i] * 100
	}))
	f.set("lower_shadow_pct", series(n, func(i int) float64 {
		return (math.Min(f.close[i], f.open[i]) - f.low[i]) / f.open[i] * 100
	}))

	f.set("open_to_close_pct", percentOf(f.close, f.open, f.open))
	f.set("open_to_high_pct", percentOf(f.high, f.open, f.open))
	f.set("open_to_low_pct", percentOf(f.open, f.low, f.open))

	f.set("is_green_candle", flag(n, func(i int) bool { return f.close[i] > f.open[i] }))
	f.set("is_red_candle", flag(n, func(i int) bool { return f.close[i] < f.open[i] }))
	f.set("is_doji", flag(n, func(i int) bool { return body[i] < DojiBodyPct }, body))

	f.set("body_to_range_ratio", series(n, func(i int) float64 {
		return body[i] / (rangePct[i] + Epsilon)
	}))
}
