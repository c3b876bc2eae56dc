package features

import (
	"fmt"

	"github.com/yourusername/daytrade-predictor/internal/indicators"
)

var (
	returnHorizons    = []int{1, 2, 3, 5, 10, 20}
	volatilityWindows = []int{5, 20}
	trendWindows      = []int{10, 20}
	patternWindow     = 3
)

func addMultiTimeframeFeatures(f *frame) {
	n := f.len()
	c := f.close

	for _, h := range returnHorizons {
		f.set(fmt.Sprintf("return_%dd", h), scale(indicators.PctChange(c, h), 100))
	}

	daily := indicators.PctChange(c, 1)
	for _, w := range volatilityWindows {
		f.set(fmt.Sprintf("volatility_%dd", w), scale(indicators.RollingStd(daily, w), 100))
	}

	for _, w := range trendWindows {
		mean := indicators.SMA(c, w)
		f.set(fmt.Sprintf("trend_strength_%dd", w), series(n, func(i int) float64 { return c[i] / mean[i] }))
	}

	prevHigh := indicators.Shift(f.high, 1)
	prevLow := indicators.Shift(f.low, 1)
	higher := flag(n, func(i int) bool { return f.high[i] > prevHigh[i] }, prevHigh)
	lower := flag(n, func(i int) bool { return f.low[i] < prevLow[i] }, prevLow)
	f.set("higher_highs_3d", indicators.RollingSum(higher, patternWindow))
	f.set("lower_lows_3d", indicators.RollingSum(lower, patternWindow))

	prevClose := indicators.Shift(c, 1)
	f.set("consecutive_up", flag(n, func(i int) bool { return c[i] > prevClose[i] }, prevClose))
	f.set("consecutive_down", flag(n, func(i int) bool { return c[i] < prevClose[i] }, prevClose))
}
