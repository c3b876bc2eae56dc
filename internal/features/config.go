package features

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/yourusername/daytrade-predictor/internal/models"
)

// TargetType selects how the supervised label is derived from the next bar
type TargetType string

const (
	// TargetOpenToClose labels 1 when the next bar closes above its own open
	TargetOpenToClose TargetType = "open_to_close"
	// TargetCloseToClose labels 1 when the next bar closes above this bar's close
	TargetCloseToClose TargetType = "close_to_close"
	// TargetThreshold labels 1 when the next bar's open-to-close return exceeds the threshold
	TargetThreshold TargetType = "threshold"
)

// DefaultTargetThreshold is the fractional return used by TargetThreshold (1%)
const DefaultTargetThreshold = 0.01

// Valid reports whether t names a known target type
func (t TargetType) Valid() bool {
	switch t {
	case TargetOpenToClose, TargetCloseToClose, TargetThreshold:
		return true
	}
	return false
}

// Flags enables individual indicator families. The JSON names match the
// features_enabled document shared with the model trainer.
type Flags struct {
	SMA10         bool `json:"sma_10"`
	SMA50         bool `json:"sma_50"`
	SMA200        bool `json:"sma_200"`
	EMA12         bool `json:"ema_12"`
	EMA26         bool `json:"ema_26"`
	RSI7          bool `json:"rsi_7"`
	RSI14         bool `json:"rsi_14"`
	RSI21         bool `json:"rsi_21"`
	MACD          bool `json:"macd"`
	MACDSignal    bool `json:"macd_signal"`
	MACDHistogram bool `json:"macd_histogram"`
	BBUpper       bool `json:"bb_upper"`
	BBMiddle      bool `json:"bb_middle"`
	BBLower       bool `json:"bb_lower"`
	BBWidth       bool `json:"bb_width"`
	ATR           bool `json:"atr"`
	StochasticK   bool `json:"stochastic_k"`
	StochasticD   bool `json:"stochastic_d"`
	VolumeRatio   bool `json:"volume_ratio"`
	OBV           bool `json:"obv"`
}

// FlagNames lists every recognised features_enabled key
var FlagNames = []string{
	"sma_10", "sma_50", "sma_200", "ema_12", "ema_26",
	"rsi_7", "rsi_14", "rsi_21",
	"macd", "macd_signal", "macd_histogram",
	"bb_upper", "bb_middle", "bb_lower", "bb_width",
	"atr", "stochastic_k", "stochastic_d",
	"volume_ratio", "obv",
}

func (f *Flags) field(name string) *bool {
	switch name {
	case "sma_10":
		return &f.SMA10
	case "sma_50":
		return &f.SMA50
	case "sma_200":
		return &f.SMA200
	case "ema_12":
		return &f.EMA12
	case "ema_26":
		return &f.EMA26
	case "rsi_7":
		return &f.RSI7
	case "rsi_14":
		return &f.RSI14
	case "rsi_21":
		return &f.RSI21
	case "macd":
		return &f.MACD
	case "macd_signal":
		return &f.MACDSignal
	case "macd_histogram":
		return &f.MACDHistogram
	case "bb_upper":
		return &f.BBUpper
	case "bb_middle":
		return &f.BBMiddle
	case "bb_lower":
		return &f.BBLower
	case "bb_width":
		return &f.BBWidth
	case "atr":
		return &f.ATR
	case "stochastic_k":
		return &f.StochasticK
	case "stochastic_d":
		return &f.StochasticD
	case "volume_ratio":
		return &f.VolumeRatio
	case "obv":
		return &f.OBV
	}
	return nil
}

// Set enables or disables a flag by name. Unknown names are a validation error.
func (f *Flags) Set(name string, enabled bool) error {
	ptr := f.field(name)
	if ptr == nil {
		return models.NewValidationError("unknown feature flag %q", name)
	}
	*ptr = enabled
	return nil
}

// Enabled reports whether the named flag is on
func (f Flags) Enabled(name string) bool {
	ptr := f.field(name)
	return ptr != nil && *ptr
}

// Map returns the flags as a features_enabled document
func (f Flags) Map() map[string]bool {
	out := make(map[string]bool, len(FlagNames))
	for _, name := range FlagNames {
		out[name] = f.Enabled(name)
	}
	return out
}

// AllFlags returns flags with every indicator family enabled
func AllFlags() Flags {
	var f Flags
	for _, name := range FlagNames {
		_ = f.Set(name, true)
	}
	return f
}

// Config selects indicator families and the label definition for one run
type Config struct {
	FeaturesEnabled Flags           `json:"features_enabled"`
	TargetType      TargetType      `json:"target_type"`
	TargetThreshold float64         `json:"target_threshold,omitempty"`
	Name            string          `json:"name,omitempty"`
	Hyperparameters json.RawMessage `json:"hyperparameters,omitempty"`
}

// DefaultConfig returns a config with no optional indicators and the open-to-close label
func DefaultConfig() Config {
	return Config{
		TargetType:      TargetOpenToClose,
		TargetThreshold: DefaultTargetThreshold,
	}
}

// Validate checks the label settings
func (c Config) Validate() error {
	if !c.TargetType.Valid() {
		return models.NewValidationError("unknown target type %q", c.TargetType)
	}
	if c.TargetThreshold < 0 {
		return models.NewValidationError("target threshold must not be negative")
	}
	if c.TargetType == TargetThreshold && c.TargetThreshold == 0 {
		return models.NewValidationError("threshold target needs a positive target_threshold")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.TargetType == "" {
		c.TargetType = TargetOpenToClose
	}
}

// ParseConfig decodes a JSON configuration blob. Unknown keys, including
// misspelled feature flags, are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, models.WrapValidationError("invalid feature config", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ConfigFromMap builds a config from a features_enabled mapping and target
// type name. An empty target type selects the open-to-close label.
func ConfigFromMap(enabled map[string]bool, targetType string) (Config, error) {
	cfg := DefaultConfig()

	names := make([]string, 0, len(enabled))
	for name := range enabled {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := cfg.FeaturesEnabled.Set(name, enabled[name]); err != nil {
			return Config{}, err
		}
	}

	cfg.TargetType = TargetType(targetType)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ConfigFromMetadata reconstructs the config a model was trained with so the
// backtest engineers exactly the same columns.
func ConfigFromMetadata(meta *models.ModelMetadata) (Config, error) {
	if meta == nil {
		return DefaultConfig(), nil
	}
	cfg, err := ConfigFromMap(meta.FeaturesEnabled, meta.TargetType)
	if err != nil {
		return Config{}, fmt.Errorf("reconstruct config for %s: %w", meta.StockSymbol, err)
	}
	cfg.Name = meta.ModelVersion
	cfg.Hyperparameters = meta.Hyperparameters
	return cfg, nil
}
