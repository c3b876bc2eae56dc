package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/daytrade-predictor/internal/config"
	"github.com/yourusername/daytrade-predictor/internal/logger"
	"github.com/yourusername/daytrade-predictor/internal/models"
)

// ClientConfig holds configuration for the model service client
type ClientConfig struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	MaxRetries        int
	RetryWaitMin      time.Duration
	RetryWaitMax      time.Duration
	RateLimit         float64 // requests per second
	CircuitBreakerMax int     // consecutive failures before the circuit opens
	CircuitCooldown   time.Duration
}

// DefaultClientConfig returns recommended defaults
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:           30 * time.Second,
		MaxRetries:        3,
		RetryWaitMin:      100 * time.Millisecond,
		RetryWaitMax:      5 * time.Second,
		RateLimit:         10.0,
		CircuitBreakerMax: 5,
		CircuitCooldown:   30 * time.Second,
	}
}

// ClientConfigFrom converts app config to client config
func ClientConfigFrom(cfg config.ModelServiceConfig) ClientConfig {
	out := DefaultClientConfig()
	out.BaseURL = cfg.URL
	out.APIKey = cfg.APIKey
	if cfg.TimeoutSeconds > 0 {
		out.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.RetryAttempts >= 0 {
		out.MaxRetries = cfg.RetryAttempts
	}
	if cfg.RateLimit > 0 {
		out.RateLimit = cfg.RateLimit
	}
	return out
}

// PredictRequest is the body posted to the predict endpoint
type PredictRequest struct {
	Symbol       string      `json:"symbol"`
	FeatureNames []string    `json:"feature_names,omitempty"`
	Features     [][]float64 `json:"features"`
}

// PredictResponse carries one label and one probability row per input row
type PredictResponse struct {
	Predictions   []int       `json:"predictions"`
	Probabilities [][]float64 `json:"probabilities"`
}

// HTTPClient talks to the model-serving endpoint with retries, client-side
// rate limiting and a circuit breaker
type HTTPClient struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
	logger  logrus.FieldLogger

	mu                sync.Mutex
	circuitBreakerMax int
	cooldown          time.Duration
	consecutiveErrors int
	openedAt          time.Time
	lastError         error
}

// NewHTTPClient creates a new model service client
func NewHTTPClient(cfg ClientConfig, log logrus.FieldLogger) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNoModelService
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid model service url: %w", err)
	}
	log = logger.OrDiscard(log).WithField("component", "model_client")

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = retryPolicy()
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil
	retryClient.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			log.WithFields(logrus.Fields{"url": req.URL.String(), "attempt": attempt}).Debug("Retrying model service request")
		}
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	breakerMax := cfg.CircuitBreakerMax
	if breakerMax <= 0 {
		breakerMax = 1
	}

	return &HTTPClient{
		client:            retryClient,
		limiter:           rate.NewLimiter(limit, 1),
		baseURL:           strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:            cfg.APIKey,
		logger:            log,
		circuitBreakerMax: breakerMax,
		cooldown:          cfg.CircuitCooldown,
	}, nil
}

// Predict scores a feature matrix with symbol's model
func (c *HTTPClient) Predict(ctx context.Context, req PredictRequest) (*PredictResponse, error) {
	start := time.Now()
	defer func() {
		ModelRequestLatency.WithLabelValues("predict").Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/v1/models/%s/predict", c.baseURL, url.PathEscape(strings.ToUpper(req.Symbol)))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.do(ctx, httpReq)
	if err != nil {
		ModelRequestErrorsTotal.WithLabelValues("predict", "network").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		ModelRequestErrorsTotal.WithLabelValues("predict", "not_found").Inc()
		return nil, models.NewNotFoundError("model", endpoint)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		ModelRequestErrorsTotal.WithLabelValues("predict", "rejected").Inc()
		return nil, models.NewValidationError("model service rejected request: %s", strings.TrimSpace(string(msg)))
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		ModelRequestErrorsTotal.WithLabelValues("predict", "http_error").Inc()
		return nil, fmt.Errorf("%w: status %d: %s", ErrModelServiceUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		ModelRequestErrorsTotal.WithLabelValues("predict", "decode").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	ModelPredictionsTotal.WithLabelValues(strings.ToUpper(req.Symbol)).Add(float64(len(req.Features)))
	c.logger.WithFields(logrus.Fields{
		"symbol":   req.Symbol,
		"rows":     len(req.Features),
		"duration": time.Since(start),
	}).Debug("Model service scored rows")
	return &out, nil
}

// HealthCheck checks model service health
func (c *HTTPClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrModelServiceUnavailable, resp.StatusCode)
	}
	return nil
}

// Close closes any resources held by the client
func (c *HTTPClient) Close() error {
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.checkCircuit(); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	retryReq, err := retryablehttp.FromRequest(req)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(retryReq)
	if err != nil {
		c.recordFailure(err)
		return nil, fmt.Errorf("%w: %v", ErrModelServiceUnavailable, err)
	}
	if resp.StatusCode >= 500 {
		c.recordFailure(fmt.Errorf("status %d", resp.StatusCode))
	} else {
		c.recordSuccess()
	}
	return resp, nil
}

func (c *HTTPClient) checkCircuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.openedAt.IsZero() {
		return nil
	}
	if c.cooldown > 0 && time.Since(c.openedAt) >= c.cooldown {
		// half-open: let one request through
		c.openedAt = time.Time{}
		c.consecutiveErrors = c.circuitBreakerMax - 1
		return nil
	}
	return fmt.Errorf("%w: %v", ErrCircuitOpen, c.lastError)
}

func (c *HTTPClient) recordFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveErrors++
	c.lastError = err
	if c.consecutiveErrors >= c.circuitBreakerMax && c.openedAt.IsZero() {
		c.openedAt = time.Now()
		c.logger.WithError(err).WithField("failures", c.consecutiveErrors).Warn("Model service circuit breaker opened")
	}
}

func (c *HTTPClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveErrors = 0
	c.openedAt = time.Time{}
}

// retryPolicy retries network errors, 429 and gateway-class 5xx responses
func retryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true, nil
		}
		return false, nil
	}
}
