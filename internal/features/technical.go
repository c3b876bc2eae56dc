package features

import "github.com/yourusername/daytrade-predictor/internal/indicators"

// Indicator windows shared with the model trainer
const (
	MACDFast         = 12
	MACDSlow         = 26
	MACDSignalPeriod = 9
	BollingerPeriod  = 20
	BollingerStdDev  = 2
	ATRPeriod        = 14
	StochasticPeriod = 14
	StochasticSmooth = 3
	RegimeWindow     = 20
	RSIOversold      = 30
	RSIOverbought    = 70
	RSINeutralLow    = 40
	RSINeutralHigh   = 60
)

func addTechnicalIndicators(f *frame, flags Flags) {
	n := f.len()
	c := f.close

	addSMA := func(period int, name, vsName, aboveName string) {
		sma := indicators.SMA(c, period)
		f.set(name, sma)
		f.set(vsName, percentOf(c, sma, sma))
		if aboveName != "" {
			f.set(aboveName, flag(n, func(i int) bool { return c[i] > sma[i] }, sma))
		}
	}
	if flags.SMA10 {
		addSMA(10, "sma_10", "price_vs_sma10", "")
	}
	if flags.SMA50 {
		addSMA(50, "sma_50", "price_vs_sma50", "above_sma50")
	}
	if flags.SMA200 {
		addSMA(200, "sma_200", "price_vs_sma200", "above_sma200")
	}

	if flags.EMA12 {
		ema := indicators.EMA(c, 12)
		f.set("ema_12", ema)
		f.set("price_vs_ema12", percentOf(c, ema, ema))
	}
	if flags.EMA26 {
		ema := indicators.EMA(c, 26)
		f.set("ema_26", ema)
		f.set("price_vs_ema26", percentOf(c, ema, ema))
	}

	if flags.RSI7 {
		f.set("rsi_7", indicators.RSI(c, 7))
	}
	if flags.RSI14 {
		rsi := indicators.RSI(c, 14)
		f.set("rsi_14", rsi)
		f.set("rsi_oversold", flag(n, func(i int) bool { return rsi[i] < RSIOversold }, rsi))
		f.set("rsi_overbought", flag(n, func(i int) bool { return rsi[i] > RSIOverbought }, rsi))
		f.set("rsi_neutral", flag(n, func(i int) bool {
			return rsi[i] >= RSINeutralLow && rsi[i] <= RSINeutralHigh
		}, rsi))
	}
	if flags.RSI21 {
		f.set("rsi_21", indicators.RSI(c, 21))
	}

	if flags.MACD || flags.MACDSignal || flags.MACDHistogram {
		addMACD(f, flags)
	}
	if flags.BBUpper || flags.BBMiddle || flags.BBLower {
		addBollinger(f, flags)
	}

	if flags.ATR {
		atr := indicators.ATR(f.high, f.low, c, ATRPeriod)
		atrPct := series(n, func(i int) float64 { return atr[i] / c[i] * 100 })
		atrMean := indicators.RollingMean(atrPct, RegimeWindow)
		f.set("atr", atr)
		f.set("atr_pct", atrPct)
		f.set("volatility_high", flag(n, func(i int) bool { return atrPct[i] > atrMean[i] }, atrPct, atrMean))
	}

	if flags.StochasticK || flags.StochasticD {
		stoch := indicators.Stochastic(f.high, f.low, c, StochasticPeriod, StochasticSmooth)
		if flags.StochasticK {
			f.set("stochastic_k", stoch.K)
		}
		if flags.StochasticD {
			f.set("stochastic_d", stoch.D)
		}
	}
}

func addMACD(f *frame, flags Flags) {
	n := f.len()
	macd := indicators.MACD(f.close, MACDFast, MACDSlow, MACDSignalPeriod)

	if flags.MACD {
		line := macd.Line
		f.set("macd", line)
		f.set("macd_positive", flag(n, func(i int) bool { return line[i] > 0 }, line))
	}
	if flags.MACDSignal {
		f.set("macd_signal", macd.Signal)
	}
	if flags.MACDHistogram {
		hist := macd.Histogram
		prev := indicators.Shift(hist, 1)
		f.set("macd_histogram", hist)
		f.set("macd_histogram_positive", flag(n, func(i int) bool { return hist[i] > 0 }, hist))
		f.set("macd_histogram_increasing", flag(n, func(i int) bool { return hist[i] > prev[i] }, hist, prev))
	}
}

// addBollinger adds the enabled bands. Width and squeeze need at least one band
// flag; position and breakout flags always accompany the bands.
func addBollinger(f *frame, flags Flags) {
	n := f.len()
	c := f.close
	bands := indicators.Bollinger(c, BollingerPeriod, BollingerStdDev)
	upper, middle, lower := bands.Upper, bands.Middle, bands.Lower

	if flags.BBUpper {
		f.set("bb_upper", upper)
	}
	if flags.BBMiddle {
		f.set("bb_middle", middle)
	}
	if flags.BBLower {
		f.set("bb_lower", lower)
	}
	if flags.BBWidth {
		width := series(n, func(i int) float64 { return (upper[i] - lower[i]) / middle[i] * 100 })
		widthMean := indicators.RollingMean(width, RegimeWindow)
		f.set("bb_width_pct", width)
		f.set("bb_squeeze", flag(n, func(i int) bool { return width[i] < widthMean[i] }, width, widthMean))
	}

	f.set("bb_position", series(n, func(i int) float64 {
		return (c[i] - lower[i]) / (upper[i] - lower[i] + Epsilon)
	}))
	f.set("bb_above_upper", flag(n, func(i int) bool { return c[i] > upper[i] }, upper))
	f.set("bb_below_lower", flag(n, func(i int) bool { return c[i] < lower[i] }, lower))
}
