package ml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/daytrade-predictor/internal/models"
)

type stubClassifier struct {
	labels []int
	proba  [][]float64
}

func (s stubClassifier) Predict(context.Context, [][]float64) ([]int, error) {
	return s.labels, nil
}

func (s stubClassifier) PredictProba(context.Context, [][]float64) ([][]float64, error) {
	return s.proba, nil
}

func TestPositiveClass(t *testing.T) {
	got, err := PositiveClass([][]float64{{0.9, 0.1}, {0.25, 0.75}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.75}, got)

	_, err = PositiveClass([][]float64{{1}})
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestScoreWithPlainClassifier(t *testing.T) {
	c := stubClassifier{labels: []int{1, 0}, proba: [][]float64{{0.4, 0.6}, {0.8, 0.2}}}
	labels, conf, err := Score(context.Background(), c, [][]float64{{1}, {2}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, labels)
	assert.Equal(t, []float64{0.6, 0.2}, conf)

	_, _, err = Score(context.Background(), c, [][]float64{{1}})
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestRegistryLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAPL_model.pkl"), []byte("x"), 0o644))
	store := NewMetadataStore(dir, 0, nil)

	_, err := NewRegistry(store, nil).Load(context.Background(), "AAPL")
	assert.True(t, errors.Is(err, ErrNoModelService))

	client, err := NewHTTPClient(testClientConfig("http://127.0.0.1:1"), nil)
	require.NoError(t, err)
	model, err := NewRegistry(store, client).Load(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", model.Symbol)
	assert.IsType(t, &HTTPClassifier{}, model.Classifier)

	_, err = NewRegistry(store, client).Load(context.Background(), "MSFT")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
