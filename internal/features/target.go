package features

import "github.com/yourusername/daytrade-predictor/internal/models"

// Label derives the supervised label for each bar from the bar that follows it.
// The result is aligned with bars; positions whose label depends on a missing
// next bar are NaN, so the last bar is never labeled.
func Label(bars []models.PriceBar, targetType TargetType, threshold float64) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		if i+1 >= len(bars) {
			out[i] = nan
			continue
		}
		next := bars[i+1]
		var up bool
		switch targetType {
		case TargetCloseToClose:
			up = next.Close > bars[i].Close
		case TargetThreshold:
			if next.Open == 0 {
				out[i] = nan
				continue
			}
			up = (next.Close-next.Open)/next.Open > threshold
		default:
			up = next.Close > next.Open
		}
		if up {
			out[i] = 1
		}
	}
	return out
}
