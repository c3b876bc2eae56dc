package features

import "github.com/yourusername/daytrade-predictor/internal/indicators"

// Volume regime thresholds applied to volume_ratio
const (
	VolumeWindow    = 20
	VolumeSurgeRate = 1.5
	VolumeDryRate   = 0.5
)

func addVolumeIndicators(f *frame, flags Flags) {
	n := f.len()

	if flags.VolumeRatio {
		volumeSMA := indicators.SMA(f.volume, VolumeWindow)
		// +1 keeps the ratio finite for zero-volume windows
		ratio := series(n, func(i int) float64 { return f.volume[i] / (volumeSMA[i] + 1) })
		f.set("volume_sma_20", volumeSMA)
		f.set("volume_ratio", ratio)
		f.set("volume_surge", flag(n, func(i int) bool { return ratio[i] > VolumeSurgeRate }, ratio))
		f.set("volume_dry", flag(n, func(i int) bool { return ratio[i] < VolumeDryRate }, ratio))
	}

	if flags.OBV {
		obv := indicators.OBV(f.close, f.volume)
		prev := indicators.Shift(obv, 1)
		f.set("obv", obv)
		f.set("obv_sma", indicators.SMA(obv, VolumeWindow))
		f.set("obv_increasing", flag(n, func(i int) bool { return obv[i] > prev[i] }, prev))
	}
}
