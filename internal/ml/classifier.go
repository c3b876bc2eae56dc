package ml

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/daytrade-predictor/internal/models"
)

// Classifier is a trained binary direction model
type Classifier interface {
	// Predict returns a 0/1 label per feature row
	Predict(ctx context.Context, X [][]float64) ([]int, error)

	// PredictProba returns [P(0), P(1)] per feature row
	PredictProba(ctx context.Context, X [][]float64) ([][]float64, error)
}

// Scorer is implemented by classifiers that produce labels and
// probabilities in a single call
type Scorer interface {
	Score(ctx context.Context, X [][]float64) ([]int, [][]float64, error)
}

// PositiveClass selects the probability of class 1 from each row
func PositiveClass(proba [][]float64) ([]float64, error) {
	out := make([]float64, len(proba))
	for i, row := range proba {
		if len(row) < 2 {
			return nil, models.NewValidationError("probability row %d has %d columns, need 2", i, len(row))
		}
		out[i] = row[1]
	}
	return out, nil
}

// Score runs a classifier over X and returns labels with the positive-class
// confidence of each row. Both must align with X.
func Score(ctx context.Context, c Classifier, X [][]float64) ([]int, []float64, error) {
	var (
		labels []int
		proba  [][]float64
		err    error
	)
	if scorer, ok := c.(Scorer); ok {
		labels, proba, err = scorer.Score(ctx, X)
		if err != nil {
			return nil, nil, err
		}
	} else {
		if labels, err = c.Predict(ctx, X); err != nil {
			return nil, nil, err
		}
		if proba, err = c.PredictProba(ctx, X); err != nil {
			return nil, nil, err
		}
	}

	if len(labels) != len(X) || len(proba) != len(X) {
		return nil, nil, models.NewValidationError(
			"classifier returned %d labels and %d probability rows for %d inputs",
			len(labels), len(proba), len(X))
	}
	confidences, err := PositiveClass(proba)
	if err != nil {
		return nil, nil, err
	}
	return labels, confidences, nil
}

// HTTPClassifier serves one symbol's model through the model service
type HTTPClassifier struct {
	client       *HTTPClient
	symbol       string
	featureNames []string
}

// NewHTTPClassifier binds a client to symbol's model. featureNames, when
// known, are sent so the service can check column order.
func NewHTTPClassifier(client *HTTPClient, symbol string, featureNames []string) *HTTPClassifier {
	return &HTTPClassifier{
		client:       client,
		symbol:       strings.ToUpper(symbol),
		featureNames: featureNames,
	}
}

// Score requests labels and probabilities in one round trip
func (h *HTTPClassifier) Score(ctx context.Context, X [][]float64) ([]int, [][]float64, error) {
	resp, err := h.client.Predict(ctx, PredictRequest{
		Symbol:       h.symbol,
		FeatureNames: h.featureNames,
		Features:     X,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("predict %s: %w", h.symbol, err)
	}
	if len(resp.Predictions) != len(X) {
		return nil, nil, models.NewValidationError("model service returned %d predictions for %d rows", len(resp.Predictions), len(X))
	}
	if len(resp.Probabilities) != len(X) {
		return nil, nil, models.NewValidationError("model service returned %d probability rows for %d rows", len(resp.Probabilities), len(X))
	}
	return resp.Predictions, resp.Probabilities, nil
}

// Predict returns a label per row
func (h *HTTPClassifier) Predict(ctx context.Context, X [][]float64) ([]int, error) {
	labels, _, err := h.Score(ctx, X)
	return labels, err
}

// PredictProba returns class probabilities per row
func (h *HTTPClassifier) PredictProba(ctx context.Context, X [][]float64) ([][]float64, error) {
	_, proba, err := h.Score(ctx, X)
	return proba, err
}

// Model is a resolved classifier together with its training metadata
type Model struct {
	Symbol     string
	Metadata   *models.ModelMetadata
	Classifier Classifier
}

// Registry resolves symbols to servable models
type Registry struct {
	store  *MetadataStore
	client *HTTPClient
}

// NewRegistry creates a registry. client may be nil when no model service is
// configured; Load then fails with ErrNoModelService.
func NewRegistry(store *MetadataStore, client *HTTPClient) *Registry {
	return &Registry{store: store, client: client}
}

// Load resolves symbol's metadata and binds its classifier
func (r *Registry) Load(ctx context.Context, symbol string) (*Model, error) {
	meta, err := r.store.Load(symbol)
	if err != nil {
		return nil, err
	}
	if r.client == nil {
		return nil, ErrNoModelService
	}
	symbol = strings.ToUpper(symbol)
	return &Model{
		Symbol:     symbol,
		Metadata:   meta,
		Classifier: NewHTTPClassifier(r.client, symbol, meta.FeaturesUsed),
	}, nil
}
