package ml

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/daytrade-predictor/internal/config"
	"github.com/yourusername/daytrade-predictor/internal/models"
)

func testClientConfig(url string) ClientConfig {
	cfg := DefaultClientConfig()
	cfg.BaseURL = url
	cfg.MaxRetries = 0
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	cfg.RateLimit = 0
	return cfg
}

func predictHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/models/AAPL/predict", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req PredictRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "AAPL", req.Symbol)
		assert.Equal(t, []string{"gap_pct", "rsi"}, req.FeatureNames)

		resp := PredictResponse{}
		for _, row := range req.Features {
			label := 0
			if row[0] > 0 {
				label = 1
			}
			resp.Predictions = append(resp.Predictions, label)
			resp.Probabilities = append(resp.Probabilities, []float64{0.3, 0.7})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func TestHTTPClassifierScore(t *testing.T) {
	server := httptest.NewServer(predictHandler(t))
	defer server.Close()

	cfg := testClientConfig(server.URL)
	cfg.APIKey = "secret"
	client, err := NewHTTPClient(cfg, nil)
	require.NoError(t, err)
	defer client.Close()

	classifier := NewHTTPClassifier(client, "aapl", []string{"gap_pct", "rsi"})
	labels, confidences, err := Score(context.Background(), classifier, [][]float64{{0.5, 40}, {-0.2, 55}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, labels)
	assert.Equal(t, []float64{0.7, 0.7}, confidences)
}

func TestHTTPClassifierNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client, err := NewHTTPClient(testClientConfig(server.URL), nil)
	require.NoError(t, err)

	_, err = NewHTTPClassifier(client, "ZZZ", nil).Predict(context.Background(), [][]float64{{1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestHTTPClassifierLengthMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[1],"probabilities":[[0.4,0.6]]}`))
	}))
	defer server.Close()

	client, err := NewHTTPClient(testClientConfig(server.URL), nil)
	require.NoError(t, err)

	_, err = NewHTTPClassifier(client, "AAPL", nil).PredictProba(context.Background(), [][]float64{{1}, {2}})
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestHTTPClientInvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client, err := NewHTTPClient(testClientConfig(server.URL), nil)
	require.NoError(t, err)

	_, err = client.Predict(context.Background(), PredictRequest{Symbol: "AAPL", Features: [][]float64{{1}}})
	assert.True(t, errors.Is(err, ErrInvalidResponse))
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"predictions":[1],"probabilities":[[0.2,0.8]]}`))
	}))
	defer server.Close()

	cfg := testClientConfig(server.URL)
	cfg.MaxRetries = 2
	client, err := NewHTTPClient(cfg, nil)
	require.NoError(t, err)

	resp, err := client.Predict(context.Background(), PredictRequest{Symbol: "AAPL", Features: [][]float64{{1}}})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, resp.Predictions)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPClientCircuitBreaker(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testClientConfig(server.URL)
	cfg.CircuitBreakerMax = 2
	cfg.CircuitCooldown = time.Hour
	client, err := NewHTTPClient(cfg, nil)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		err := client.HealthCheck(ctx)
		assert.True(t, errors.Is(err, ErrModelServiceUnavailable))
	}

	err = client.HealthCheck(ctx)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestNewHTTPClientRequiresURL(t *testing.T) {
	_, err := NewHTTPClient(DefaultClientConfig(), nil)
	assert.True(t, errors.Is(err, ErrNoModelService))
}

func TestClientConfigFrom(t *testing.T) {
	cfg := ClientConfigFrom(config.ModelServiceConfig{
		URL:            "http://models:8000",
		APIKey:         "k",
		TimeoutSeconds: 7,
		RetryAttempts:  1,
		RateLimit:      2.5,
	})
	assert.Equal(t, "http://models:8000", cfg.BaseURL)
	assert.Equal(t, 7*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, 2.5, cfg.RateLimit)
}
