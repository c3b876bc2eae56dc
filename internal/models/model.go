package models

import (
	"encoding/json"
	"time"
)

// FeatureImportance is one entry of a trained model's importance report
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ModelMetadata mirrors the document written next to a trained model artifact
type ModelMetadata struct {
	StockSymbol            string              `json:"stock_symbol"`
	TrainedAt              string              `json:"trained_at"`
	ModelVersion           string              `json:"model_version"`
	TrainSize              int                 `json:"train_size"`
	TestSize               int                 `json:"test_size"`
	TrainAccuracy          float64             `json:"train_accuracy"`
	TestAccuracy           float64             `json:"test_accuracy"`
	AvgConfidence          float64             `json:"avg_confidence"`
	NumFeatures            int                 `json:"num_features"`
	FeaturesUsed           []string            `json:"features_used"`
	FeatureImportance      []FeatureImportance `json:"feature_importance,omitempty"`
	Hyperparameters        json.RawMessage     `json:"hyperparameters,omitempty"`
	FeaturesEnabled        map[string]bool     `json:"features_enabled"`
	TargetType             string              `json:"target_type"`
	TargetDistributionTest map[string]int      `json:"target_distribution_test,omitempty"`
}

// TrainedAtTime parses the training timestamp, returning zero time when absent
func (m *ModelMetadata) TrainedAtTime() time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, m.TrainedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// GetHyperparameter retrieves a hyperparameter value from the raw JSON
func (m *ModelMetadata) GetHyperparameter(name string) (interface{}, error) {
	if m.Hyperparameters == nil {
		return nil, nil
	}

	var params map[string]interface{}
	if err := json.Unmarshal(m.Hyperparameters, &params); err != nil {
		return nil, err
	}

	return params[name], nil
}
