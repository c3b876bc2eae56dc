package indicators

import "math"

// BollingerBands holds the band series
type BollingerBands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// Bollinger computes middle = SMA(period) and bands = middle ± k·sample std
func Bollinger(values []float64, period int, k float64) BollingerBands {
	middle := SMA(values, period)
	std := RollingStd(values, period)

	upper := make([]float64, len(values))
	lower := make([]float64, len(values))
	for i := range values {
		upper[i] = middle[i] + std[i]*k
		lower[i] = middle[i] - std[i]*k
	}
	return BollingerBands{Upper: upper, Middle: middle, Lower: lower}
}

// TrueRange is max(high-low, |high-prev close|, |low-prev close|). The first bar
// has no previous close and uses high-low alone.
func TrueRange(high, low, close []float64) []float64 {
	out := make([]float64, len(close))
	for i := range close {
		tr := high[i] - low[i]
		if i > 0 {
			tr = math.Max(tr, math.Abs(high[i]-close[i-1]))
			tr = math.Max(tr, math.Abs(low[i]-close[i-1]))
		}
		out[i] = tr
	}
	return out
}

// ATR is the trailing simple mean of the true range
func ATR(high, low, close []float64, period int) []float64 {
	return RollingMean(TrueRange(high, low, close), period)
}
