package backtest

import (
	"github.com/yourusername/daytrade-predictor/internal/features"
	"github.com/yourusername/daytrade-predictor/internal/models"
)

// DefaultTrainFraction is the share of rows handed to the trainer
const DefaultTrainFraction = 0.8

// SplitChronological divides a table into a leading training window and a
// trailing test window. Rows are never shuffled, so no test row precedes a
// training row.
func SplitChronological(table *features.Table, trainFraction float64) (*features.Table, *features.Table, error) {
	if table == nil {
		return nil, nil, models.NewValidationError("feature table is required")
	}
	if trainFraction <= 0 || trainFraction >= 1 {
		return nil, nil, models.NewValidationError("train fraction must be between 0 and 1, got %v", trainFraction)
	}
	cut := int(float64(table.Len()) * trainFraction)
	if cut == 0 || cut == table.Len() {
		return nil, nil, models.NewValidationError("%d rows cannot be split at %.2f", table.Len(), trainFraction)
	}
	return table.Slice(0, cut), table.Slice(cut, table.Len()), nil
}
