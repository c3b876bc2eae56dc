package indicators

import "math"

// SMA is the simple moving average over the trailing period bars
func SMA(values []float64, period int) []float64 {
	return RollingMean(values, period)
}

// EMA is the exponential moving average with smoothing factor 2/(period+1).
// The recursion is seeded with the first defined input (adjust=false weighting)
// and the first period-1 outputs after the seed are undefined.
func EMA(values []float64, period int) []float64 {
	raw, seed := emaRecursive(values, period)
	return maskWarmup(raw, seed, period)
}

// emaRecursive folds the series carrying the previous smoothed value. It returns
// the unmasked series and the index of the seed value (-1 when there is none).
func emaRecursive(values []float64, period int) ([]float64, int) {
	out := NaNs(len(values))
	if period <= 0 {
		return out, -1
	}
	alpha := 2.0 / (float64(period) + 1.0)
	seed := -1
	prev := 0.0
	for i, v := range values {
		if seed < 0 {
			if Undefined(v) {
				continue
			}
			seed = i
			prev = v
			out[i] = v
			continue
		}
		if Undefined(v) {
			continue
		}
		prev = alpha*v + (1-alpha)*prev
		out[i] = prev
	}
	return out, seed
}

func maskWarmup(values []float64, seed, period int) []float64 {
	if seed < 0 {
		return values
	}
	for i := seed; i < len(values) && i < seed+period-1; i++ {
		values[i] = math.NaN()
	}
	return values
}
