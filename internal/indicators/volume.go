package indicators

// OBV is the cumulative sum of sign(close change)·volume. The first bar and flat
// bars contribute zero.
func OBV(close, volume []float64) []float64 {
	out := make([]float64, len(close))
	running := 0.0
	for i := range close {
		if i > 0 {
			switch {
			case close[i] > close[i-1]:
				running += volume[i]
			case close[i] < close[i-1]:
				running -= volume[i]
			}
		}
		out[i] = running
	}
	return out
}
