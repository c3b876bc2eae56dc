package backtest

import (
	"fmt"

	"github.com/yourusername/daytrade-predictor/internal/config"
)

// DefaultRecentTradesLimit bounds the trades echoed back in a result
const DefaultRecentTradesLimit = 100

// BacktestConfig holds the run settings the simulator and reporter need
type BacktestConfig struct {
	InitialCapital    float64
	RecentTradesLimit int
	OutputPath        string
}

// DefaultConfig returns the settings used when no configuration is supplied
func DefaultConfig() BacktestConfig {
	return BacktestConfig{
		InitialCapital:    10000,
		RecentTradesLimit: DefaultRecentTradesLimit,
	}
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.BacktestConfig) (BacktestConfig, error) {
	if cfg == nil {
		return BacktestConfig{}, fmt.Errorf("backtest config is required")
	}
	bt := BacktestConfig{
		InitialCapital:    cfg.InitialCapital,
		RecentTradesLimit: cfg.RecentTradesLimit,
		OutputPath:        cfg.OutputPath,
	}
	return bt, bt.Validate()
}

// Validate validates backtest config parameters
func (b BacktestConfig) Validate() error {
	if b.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive")
	}
	if b.RecentTradesLimit < 0 {
		return fmt.Errorf("recent trades limit cannot be negative")
	}
	return nil
}
