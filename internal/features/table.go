package features

import (
	"github.com/yourusername/daytrade-predictor/internal/models"
)

// Row is one retained bar with its engineered features and label
type Row struct {
	models.PriceBar
	Features map[string]float64
	Target   int
}

// Table is the engineered, fully defined feature set for one series. It is not
// modified after Engineer returns.
type Table struct {
	Rows        []Row
	TargetType  TargetType
	InputRows   int
	RowsDropped int
	names       []string
}

// NewTable assembles a table from prepared rows. featureNames fixes the column
// order reported by FeatureNames.
func NewTable(rows []Row, featureNames []string, targetType TargetType) *Table {
	names := make([]string, len(featureNames))
	copy(names, featureNames)
	return &Table{
		Rows:       rows,
		TargetType: targetType,
		InputRows:  len(rows),
		names:      names,
	}
}

// Len returns the number of rows
func (t *Table) Len() int { return len(t.Rows) }

// FeatureNames returns the engineered columns in the order they were computed,
// excluding date, OHLCV and target.
func (t *Table) FeatureNames() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Matrix returns the feature values for the given columns, one row per bar.
// Requesting a column the table does not carry is a validation error; this is
// how a train/serve feature mismatch surfaces.
func (t *Table) Matrix(names []string) ([][]float64, error) {
	if len(t.Rows) > 0 {
		var missing []string
		for _, name := range names {
			if _, ok := t.Rows[0].Features[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return nil, models.NewValidationError("features missing from engineered table: %v", missing)
		}
	}

	out := make([][]float64, len(t.Rows))
	for i, row := range t.Rows {
		values := make([]float64, len(names))
		for j, name := range names {
			values[j] = row.Features[name]
		}
		out[i] = values
	}
	return out, nil
}

// Labels returns the target column
func (t *Table) Labels() []int {
	out := make([]int, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Target
	}
	return out
}

// Bars returns the price bars of the retained rows
func (t *Table) Bars() []models.PriceBar {
	out := make([]models.PriceBar, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.PriceBar
	}
	return out
}

// Slice returns a table over rows [from, to) sharing the feature list
func (t *Table) Slice(from, to int) *Table {
	return &Table{
		Rows:       t.Rows[from:to],
		TargetType: t.TargetType,
		InputRows:  to - from,
		names:      t.names,
	}
}
