package datasource

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/daytrade-predictor/internal/logger"
	"github.com/yourusername/daytrade-predictor/internal/models"
)

// BarValidator reports price bars that break OHLC consistency. Such bars are
// kept; the feature pipeline tolerates them.
type BarValidator struct {
	logger logrus.FieldLogger
}

// NewBarValidator creates a new bar validator
func NewBarValidator(log logrus.FieldLogger) *BarValidator {
	return &BarValidator{logger: logger.OrDiscard(log)}
}

// ValidateBar returns the consistency problems of one bar
func (v *BarValidator) ValidateBar(bar models.PriceBar) []string {
	var problems []string

	for name, price := range map[string]float64{"open": bar.Open, "high": bar.High, "low": bar.Low, "close": bar.Close} {
		if math.IsNaN(price) || math.IsInf(price, 0) {
			problems = append(problems, fmt.Sprintf("%s is not finite", name))
		} else if price <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got %v", name, price))
		}
	}

	if bar.High < bar.Low {
		problems = append(problems, fmt.Sprintf("high %v below low %v", bar.High, bar.Low))
	}
	if bar.High < math.Max(bar.Open, bar.Close) {
		problems = append(problems, "high below open or close")
	}
	if bar.Low > math.Min(bar.Open, bar.Close) {
		problems = append(problems, "low above open or close")
	}
	if bar.Volume < 0 {
		problems = append(problems, fmt.Sprintf("volume cannot be negative, got %d", bar.Volume))
	}

	return problems
}

// Inspect logs every inconsistent bar and returns how many were found
func (v *BarValidator) Inspect(symbol string, bars []models.PriceBar) int {
	flagged := 0
	for _, bar := range bars {
		problems := v.ValidateBar(bar)
		if len(problems) == 0 {
			continue
		}
		flagged++
		v.logger.WithFields(logrus.Fields{
			"symbol":   symbol,
			"date":     bar.Date.Format("2006-01-02"),
			"problems": problems,
		}).Debug("Inconsistent price bar")
	}
	if flagged > 0 {
		v.logger.WithFields(logrus.Fields{
			"symbol":  symbol,
			"flagged": flagged,
			"total":   len(bars),
		}).Warn("Price series contains inconsistent bars")
	}
	return flagged
}
