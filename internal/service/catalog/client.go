package catalog

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/constants"
	"github.com/kapu/poketeam-kakao-bot/internal/util"
	"github.com/kapu/poketeam-kakao-bot/pkg/errors"
)

// Requester fetches raw PokeAPI payloads.
type Requester interface {
	DoRequest(ctx context.Context, path string, params url.Values) ([]byte, error)
	IsCircuitOpen() bool
}

// Client is a PokeAPI HTTP client with retries and a circuit breaker.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	maxAttempts int
	breaker     *util.CircuitBreaker
	sleep       func(context.Context, time.Duration) error
	logger      *zap.Logger
}

// NewClient creates a client for baseURL. An empty baseURL uses the public API.
func NewClient(httpClient *http.Client, baseURL string, logger *zap.Logger) *Client {
	logger = util.LoggerOrNop(logger)
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.APIConfig.PokeAPITimeout}
	}
	if baseURL == "" {
		baseURL = constants.APIConfig.PokeAPIBaseURL
	}

	c := &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxAttempts: constants.APIConfig.MaxRetryAttempts,
		sleep:       sleepContext,
		logger:      logger,
	}
	c.breaker = util.NewCircuitBreaker(util.CircuitBreakerConfig{
		Name:                "pokeapi",
		FailureThreshold:    constants.CircuitBreakerConfig.FailureThreshold,
		ResetTimeout:        constants.CircuitBreakerConfig.ResetTimeout,
		HealthCheckInterval: constants.CircuitBreakerConfig.HealthCheckInterval,
		HealthCheck:         c.healthCheck,
	}, logger)
	return c
}

// healthCheck calls the cheapest list endpoint while the circuit is open.
func (c *Client) healthCheck() bool {
	ctx, cancel := context.WithTimeout(context.Background(), constants.CircuitBreakerConfig.HealthCheckTimeout)
	defer cancel()

	_, status, err := c.get(ctx, c.resolve("pokemon")+"?limit=1")
	if err != nil {
		c.logger.Debug("PokeAPI health check failed", zap.Error(err))
		return false
	}
	return status < http.StatusInternalServerError && status != http.StatusTooManyRequests
}

// DoRequest GETs path (relative to the base URL, or an absolute PokeAPI URL).
// 404 becomes a NotFoundError, other 4xx an APIError, and 5xx or transport
// failures are retried with backoff before giving up.
func (c *Client) DoRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if !c.breaker.CanExecute() {
		retryAfter := c.breaker.RetryAfter()
		status := c.breaker.GetStatus()
		c.logger.Warn("Circuit breaker is open",
			zap.String("state", status.State.String()),
			zap.Int("failures", status.FailureCount),
			zap.Duration("retry_after", retryAfter),
		)
		return nil, errors.NewAPIError("Circuit breaker open", http.StatusServiceUnavailable, map[string]any{
			"retry_after_ms": retryAfter.Milliseconds(),
		})
	}

	reqURL := c.resolve(path)
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.computeDelay(attempt - 1)
			c.logger.Warn("PokeAPI request failed, retrying",
				zap.String("url", reqURL),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		body, status, err := c.get(ctx, reqURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			c.breaker.RecordFailure(0)
			if !c.breaker.CanExecute() {
				break
			}
			continue
		}

		switch {
		case status == http.StatusNotFound:
			c.breaker.RecordSuccess()
			return nil, errors.NewNotFoundError("pokeapi", path)
		case status == http.StatusTooManyRequests:
			c.breaker.RecordFailure(constants.CircuitBreakerConfig.RateLimitTimeout)
			return nil, errors.NewAPIError("Rate limited", status, map[string]any{"url": reqURL})
		case status >= 500:
			lastErr = errors.NewAPIError(fmt.Sprintf("Server error: %d", status), status, map[string]any{"url": reqURL})
			c.breaker.RecordFailure(0)
			if !c.breaker.CanExecute() {
				return nil, lastErr
			}
			continue
		case status >= 400:
			return nil, errors.NewAPIError(fmt.Sprintf("Client error: %d", status), status, map[string]any{
				"url":  reqURL,
				"body": util.TruncateString(string(body), 200),
			})
		}

		c.breaker.RecordSuccess()
		return body, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("pokeapi request failed: %s", reqURL)
}

// IsCircuitOpen reports whether requests are currently short-circuited.
func (c *Client) IsCircuitOpen() bool {
	return !c.breaker.CanExecute()
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) computeDelay(attempt int) time.Duration {
	base := constants.RetryConfig.BaseDelay * time.Duration(math.Pow(2, float64(attempt)))
	jitter := time.Duration(rand.Float64() * float64(constants.RetryConfig.Jitter))
	return base + jitter
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
