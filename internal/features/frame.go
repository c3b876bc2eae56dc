package features

import (
	"math"

	"github.com/yourusername/daytrade-predictor/internal/indicators"
	"github.com/yourusername/daytrade-predictor/internal/models"
)

var nan = math.NaN()

// frame is the mutable working set while a table is being engineered. Columns
// keep their insertion order so the feature list is stable across runs.
type frame struct {
	bars    []models.PriceBar
	open    []float64
	high    []float64
	low     []float64
	close   []float64
	volume  []float64
	names   []string
	columns map[string][]float64
}

func newFrame(bars []models.PriceBar) *frame {
	n := len(bars)
	f := &frame{
		bars:    bars,
		open:    make([]float64, n),
		high:    make([]float64, n),
		low:     make([]float64, n),
		close:   make([]float64, n),
		volume:  make([]float64, n),
		columns: make(map[string][]float64),
	}
	for i, bar := range bars {
		f.open[i] = bar.Open
		f.high[i] = bar.High
		f.low[i] = bar.Low
		f.close[i] = bar.Close
		f.volume[i] = float64(bar.Volume)
	}
	return f
}

func (f *frame) len() int { return len(f.bars) }

func (f *frame) set(name string, values []float64) {
	if _, ok := f.columns[name]; !ok {
		f.names = append(f.names, name)
	}
	f.columns[name] = values
}

// series builds a column element by element
func series(n int, fn func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = fn(i)
	}
	return out
}

// flag builds a 0/1 column. A position where any operand is undefined stays
// undefined so that the row is dropped rather than read as false.
func flag(n int, pred func(i int) bool, operands ...[]float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		defined := true
		for _, op := range operands {
			if indicators.Undefined(op[i]) {
				defined = false
				break
			}
		}
		switch {
		case !defined:
			out[i] = nan
		case pred(i):
			out[i] = 1
		}
	}
	return out
}

// percentOf returns (a-b)/base*100 per bar
func percentOf(a, b, base []float64) []float64 {
	return series(len(a), func(i int) float64 {
		return (a[i] - b[i]) / base[i] * 100
	})
}

func scale(values []float64, k float64) []float64 {
	return series(len(values), func(i int) float64 { return values[i] * k })
}
