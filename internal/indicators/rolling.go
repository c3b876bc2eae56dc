// Package indicators computes technical indicators over daily price series.
//
// Every function returns a slice aligned index-for-index with its input. Positions
// without a complete lookback window hold NaN.
package indicators

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Undefined reports whether a value marks a position without enough history
func Undefined(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// NaNs returns a slice of length n filled with NaN
func NaNs(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Rolling applies fn over each trailing window of the given size. A window that
// contains an undefined value produces NaN.
func Rolling(values []float64, period int, fn func(window []float64) float64) []float64 {
	out := NaNs(len(values))
	if period <= 0 {
		return out
	}
	lastUndefined := -1
	for i, v := range values {
		if Undefined(v) {
			lastUndefined = i
		}
		if i < period-1 || lastUndefined > i-period {
			continue
		}
		out[i] = fn(values[i-period+1 : i+1])
	}
	return out
}

// RollingMean is the trailing arithmetic mean
func RollingMean(values []float64, period int) []float64 {
	return Rolling(values, period, func(w []float64) float64 { return stat.Mean(w, nil) })
}

// RollingSum is the trailing sum
func RollingSum(values []float64, period int) []float64 {
	return Rolling(values, period, func(w []float64) float64 {
		sum := 0.0
		for _, v := range w {
			sum += v
		}
		return sum
	})
}

// RollingStd is the trailing sample standard deviation (n-1 denominator)
func RollingStd(values []float64, period int) []float64 {
	if period < 2 {
		return NaNs(len(values))
	}
	return Rolling(values, period, func(w []float64) float64 { return stat.StdDev(w, nil) })
}

// RollingMin is the trailing minimum
func RollingMin(values []float64, period int) []float64 {
	return Rolling(values, period, func(w []float64) float64 {
		m := w[0]
		for _, v := range w[1:] {
			m = math.Min(m, v)
		}
		return m
	})
}

// RollingMax is the trailing maximum
func RollingMax(values []float64, period int) []float64 {
	return Rolling(values, period, func(w []float64) float64 {
		m := w[0]
		for _, v := range w[1:] {
			m = math.Max(m, v)
		}
		return m
	})
}

// Shift moves values by n positions: positive n lags (reads the past), negative
// n leads (reads the future). Vacated positions are NaN.
func Shift(values []float64, n int) []float64 {
	out := NaNs(len(values))
	for i := range values {
		j := i - n
		if j >= 0 && j < len(values) {
			out[i] = values[j]
		}
	}
	return out
}

// Diff is the change from n bars earlier
func Diff(values []float64, n int) []float64 {
	prev := Shift(values, n)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v - prev[i]
	}
	return out
}

// PctChange is the fractional change from n bars earlier
func PctChange(values []float64, n int) []float64 {
	prev := Shift(values, n)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - prev[i]) / prev[i]
	}
	return out
}
