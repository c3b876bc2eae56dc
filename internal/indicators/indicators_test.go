package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func sampleSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 5*math.Sin(float64(i)/3) + float64(i)*0.1
	}
	return out
}

func assertWarmup(t *testing.T, out []float64, length, undefined int) {
	t.Helper()
	require.Len(t, out, length)
	for i := 0; i < undefined; i++ {
		assert.Truef(t, math.IsNaN(out[i]), "expected NaN at %d, got %v", i, out[i])
	}
	for i := undefined; i < length; i++ {
		assert.Falsef(t, Undefined(out[i]), "expected value at %d", i)
	}
}

func TestSMAMatchesDirectMean(t *testing.T) {
	values := sampleSeries(40)
	period := 10
	out := SMA(values, period)
	assertWarmup(t, out, len(values), period-1)

	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += values[j]
		}
		assert.InDelta(t, sum/float64(period), out[i], tolerance)
	}
}

func TestEMARecurrence(t *testing.T) {
	values := sampleSeries(60)
	period := 12
	alpha := 2.0 / float64(period+1)
	out := EMA(values, period)
	assertWarmup(t, out, len(values), period-1)

	expected := values[0]
	for i := 1; i < len(values); i++ {
		expected = alpha*values[i] + (1-alpha)*expected
		if i >= period-1 {
			assert.InDelta(t, expected, out[i], tolerance, "index %d", i)
		}
	}
}

func TestEMASeedsAfterLeadingNaN(t *testing.T) {
	values := append(NaNs(3), 10, 20, 30, 40)
	out := EMA(values, 2)
	require.Len(t, out, 7)
	assert.True(t, math.IsNaN(out[3]))
	// alpha = 2/3, seeded with 10
	assert.InDelta(t, 2.0/3*20+1.0/3*10, out[4], tolerance)
}

func TestRSI(t *testing.T) {
	t.Run("only gains saturates at 100", func(t *testing.T) {
		values := []float64{1, 2, 3, 4, 5, 6, 7, 8}
		out := RSI(values, 4)
		assertWarmup(t, out, len(values), 3)
		for i := 3; i < len(values); i++ {
			assert.Equal(t, 100.0, out[i])
		}
	})

	t.Run("flat window reads 100", func(t *testing.T) {
		values := []float64{5, 5, 5, 5, 5}
		out := RSI(values, 3)
		assert.Equal(t, 100.0, out[4])
	})

	t.Run("mixed changes", func(t *testing.T) {
		values := []float64{10, 11, 10, 12, 11}
		out := RSI(values, 4)
		// window of changes at index 4: +1, -1, +2, -1 -> gain mean 0.75, loss mean 0.5
		rs := 0.75 / 0.5
		assert.InDelta(t, 100-100/(1+rs), out[4], tolerance)
		// index 3 includes the zero change of the first bar: 0, +1, -1, +2
		rs = 0.75 / 0.25
		assert.InDelta(t, 100-100/(1+rs), out[3], tolerance)
	})

	t.Run("bounded", func(t *testing.T) {
		out := RSI(sampleSeries(80), 14)
		for _, v := range out[13:] {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 100.0)
		}
	})
}

func TestMACD(t *testing.T) {
	values := sampleSeries(80)
	result := MACD(values, 12, 26, 9)

	assertWarmup(t, result.Line, len(values), 25)
	assertWarmup(t, result.Signal, len(values), 33)
	assertWarmup(t, result.Histogram, len(values), 33)

	fast, _ := emaRecursive(values, 12)
	slow, _ := emaRecursive(values, 26)
	for i := 33; i < len(values); i++ {
		assert.InDelta(t, fast[i]-slow[i], result.Line[i], tolerance)
		assert.InDelta(t, result.Line[i]-result.Signal[i], result.Histogram[i], tolerance)
	}
}

func TestBollingerUsesSampleDeviation(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	bands := Bollinger(values, 4, 2)
	std := math.Sqrt(5.0 / 3.0)

	assertWarmup(t, bands.Middle, 4, 3)
	assert.InDelta(t, 2.5, bands.Middle[3], tolerance)
	assert.InDelta(t, 2.5+2*std, bands.Upper[3], tolerance)
	assert.InDelta(t, 2.5-2*std, bands.Lower[3], tolerance)
}

func TestATR(t *testing.T) {
	high := []float64{10, 12, 11, 15}
	low := []float64{8, 9, 9, 12}
	close := []float64{9, 11, 10, 14}

	tr := TrueRange(high, low, close)
	assert.Equal(t, []float64{2, 3, 2, 5}, tr)

	atr := ATR(high, low, close, 2)
	assertWarmup(t, atr, 4, 1)
	assert.InDelta(t, 2.5, atr[1], tolerance)
	assert.InDelta(t, 3.5, atr[3], tolerance)
}

func TestStochasticFlatRangeIsGuarded(t *testing.T) {
	flat := []float64{10, 10, 10, 10, 10}
	result := Stochastic(flat, flat, flat, 3, 3)

	assertWarmup(t, result.K, 5, 2)
	assertWarmup(t, result.D, 5, 4)
	assert.Equal(t, 0.0, result.K[4])
}

func TestStochasticRange(t *testing.T) {
	high := []float64{10, 11, 12}
	low := []float64{8, 9, 10}
	close := []float64{9, 10, 12}
	result := Stochastic(high, low, close, 3, 1)
	assert.InDelta(t, 100*(12.0-8.0)/(12.0-8.0+StochasticEpsilon), result.K[2], tolerance)
}

func TestOBV(t *testing.T) {
	close := []float64{10, 11, 11, 9, 12}
	volume := []float64{100, 200, 300, 400, 500}
	assert.Equal(t, []float64{0, 200, 200, -200, 300}, OBV(close, volume))
}

func TestPctChangeAndShift(t *testing.T) {
	values := []float64{100, 110, 121}
	pct := PctChange(values, 1)
	assert.True(t, math.IsNaN(pct[0]))
	assert.InDelta(t, 0.1, pct[1], tolerance)
	assert.InDelta(t, 0.1, pct[2], tolerance)

	lead := Shift(values, -1)
	assert.Equal(t, 110.0, lead[0])
	assert.True(t, math.IsNaN(lead[2]))
}

func TestRollingSkipsWindowsWithUndefinedValues(t *testing.T) {
	values := []float64{1, math.NaN(), 3, 4, 5}
	out := RollingSum(values, 2)
	assert.True(t, math.IsNaN(out[1]))
	assert.True(t, math.IsNaN(out[2]))
	assert.Equal(t, 7.0, out[3])
	assert.Equal(t, 9.0, out[4])
}
