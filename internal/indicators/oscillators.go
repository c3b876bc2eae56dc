package indicators

// RSI is the relative strength index over period bars using trailing simple
// means of gains and losses. The first bar contributes a zero change, so RSI is
// defined from index period-1. A window with no losses reads exactly 100.
func RSI(values []float64, period int) []float64 {
	delta := Diff(values, 1)
	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	for i, d := range delta {
		if d > 0 {
			gains[i] = d
		} else if d < 0 {
			losses[i] = -d
		}
	}

	gainMean := RollingMean(gains, period)
	lossMean := RollingMean(losses, period)

	out := NaNs(len(values))
	for i := range values {
		if Undefined(gainMean[i]) || Undefined(lossMean[i]) {
			continue
		}
		if lossMean[i] == 0 {
			out[i] = 100
			continue
		}
		rs := gainMean[i] / lossMean[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// MACDResult holds the three MACD series
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD is the fast EMA minus the slow EMA, with a signal EMA of that difference.
// The lines are combined from unmasked EMAs and masked afterwards: the line is
// undefined for slow-1 bars, the signal and histogram for slow+signal-2 bars.
func MACD(values []float64, fast, slow, signal int) MACDResult {
	fastEMA, seed := emaRecursive(values, fast)
	slowEMA, _ := emaRecursive(values, slow)

	line := make([]float64, len(values))
	for i := range values {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine, _ := emaRecursive(line, signal)

	histogram := make([]float64, len(values))
	for i := range values {
		histogram[i] = line[i] - signalLine[i]
	}

	if seed < 0 {
		return MACDResult{Line: NaNs(len(values)), Signal: NaNs(len(values)), Histogram: NaNs(len(values))}
	}
	longest := slow
	if fast > longest {
		longest = fast
	}
	return MACDResult{
		Line:      maskWarmup(line, seed, longest),
		Signal:    maskWarmup(signalLine, seed, longest+signal-1),
		Histogram: maskWarmup(histogram, seed, longest+signal-1),
	}
}

// StochasticResult holds %K and its smoothed %D
type StochasticResult struct {
	K []float64
	D []float64
}

// StochasticEpsilon guards the %K division when the trailing range is flat
const StochasticEpsilon = 0.0001

// Stochastic computes %K over period bars and %D as the smooth-bar mean of %K
func Stochastic(high, low, close []float64, period, smooth int) StochasticResult {
	lowMin := RollingMin(low, period)
	highMax := RollingMax(high, period)

	k := make([]float64, len(close))
	for i := range close {
		k[i] = 100 * (close[i] - lowMin[i]) / (highMax[i] - lowMin[i] + StochasticEpsilon)
	}
	return StochasticResult{K: k, D: RollingMean(k, smooth)}
}
