package features

import (
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/daytrade-predictor/internal/indicators"
	"github.com/yourusername/daytrade-predictor/internal/logger"
	"github.com/yourusername/daytrade-predictor/internal/models"
)

// DefaultMinRows is the smallest raw series the pipeline accepts
const DefaultMinRows = 100

type options struct {
	minRows int
	logger  logrus.FieldLogger
}

// Option customises a single Engineer call
type Option func(*options)

// WithMinRows overrides the minimum raw row count. Zero disables the check.
func WithMinRows(n int) Option {
	return func(o *options) { o.minRows = n }
}

// WithLogger routes progress messages to logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

// Engineer turns a raw price series into a labeled feature table. Stages run in
// a fixed order because later stages read earlier columns; rows with any
// undefined value are dropped last.
func Engineer(bars []models.PriceBar, cfg Config, opts ...Option) (*Table, error) {
	o := options{minRows: DefaultMinRows}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logger.OrDiscard(o.logger)

	if len(bars) == 0 {
		return nil, models.NewValidationError("price series is empty")
	}
	for i, bar := range bars {
		if bar.Date.IsZero() {
			return nil, models.NewValidationError("row %d is missing a date", i)
		}
	}
	if o.minRows > 0 && len(bars) < o.minRows {
		return nil, models.NewInsufficientDataError(len(bars), o.minRows)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sorted := make([]models.PriceBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	log := o.logger.WithField("input_rows", len(sorted))
	log.Debug("Starting feature engineering")

	f := newFrame(sorted)
	addIntradayFeatures(f)
	addTechnicalIndicators(f, cfg.FeaturesEnabled)
	addVolumeIndicators(f, cfg.FeaturesEnabled)
	addMultiTimeframeFeatures(f)
	addCalendarFeatures(f)
	target := Label(sorted, cfg.TargetType, cfg.TargetThreshold)

	table := dropUndefined(f, target)
	table.TargetType = cfg.TargetType
	table.InputRows = len(sorted)
	table.RowsDropped = len(sorted) - len(table.Rows)

	log.WithFields(logrus.Fields{
		"rows_dropped": table.RowsDropped,
		"rows":         len(table.Rows),
		"features":     len(table.names),
		"target_type":  cfg.TargetType,
	}).Info("Feature engineering complete")

	if len(table.Rows) == 0 {
		return nil, models.NewValidationError("no usable rows after dropping %d incomplete rows", table.RowsDropped)
	}
	return table, nil
}

func dropUndefined(f *frame, target []float64) *Table {
	table := &Table{names: append([]string(nil), f.names...)}
	for i, bar := range f.bars {
		if indicators.Undefined(target[i]) {
			continue
		}
		values := make(map[string]float64, len(f.names))
		complete := true
		for _, name := range f.names {
			v := f.columns[name][i]
			if indicators.Undefined(v) {
				complete = false
				break
			}
			values[name] = v
		}
		if !complete {
			continue
		}
		table.Rows = append(table.Rows, Row{PriceBar: bar, Features: values, Target: int(target[i])})
	}
	return table
}
