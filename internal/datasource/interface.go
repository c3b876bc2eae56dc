// Package datasource loads daily OHLCV price series.
package datasource

import (
	"context"

	"github.com/yourusername/daytrade-predictor/internal/models"
)

// BarSource provides the raw price series of a symbol
type BarSource interface {
	// LoadBars returns the symbol's bars in source order
	LoadBars(ctx context.Context, symbol string) ([]models.PriceBar, error)

	// Name returns the name of the data source
	Name() string
}
