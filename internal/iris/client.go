package iris

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/util"
	"github.com/kapu/poketeam-kakao-bot/pkg/errors"
)

const (
	configPath = "/config"
	replyPath  = "/reply"

	defaultTimeout = 10 * time.Second
	// error bodies are only kept for logging
	maxErrorBody = 1024
)

// Sender delivers text replies to a chat room.
type Sender interface {
	SendMessage(ctx context.Context, room, message string) error
}

// Client talks to the Iris HTTP bridge.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// ClientOption customizes a Client built by NewClient.
type ClientOption func(*Client)

// WithTimeout bounds every bridge call. Non-positive values keep the default.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying transport, mainly for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func NewClient(baseURL string, logger *zap.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  util.LoggerOrNop(logger),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetConfig reads the bridge settings. It doubles as a health check.
func (c *Client) GetConfig(ctx context.Context) (*Config, error) {
	cfg, err := call[Config](ctx, c, http.MethodGet, configPath, nil)
	if err != nil {
		c.logger.Error("Iris config lookup failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

func (c *Client) SendMessage(ctx context.Context, room, message string) error {
	reply := ReplyRequest{Type: "text", Room: room, Data: message}
	if _, err := call[struct{}](ctx, c, http.MethodPost, replyPath, reply); err != nil {
		c.logger.Error("Iris reply failed",
			zap.String("room", room),
			zap.Int("length", len(message)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) bool {
	_, err := c.GetConfig(ctx)
	return err == nil
}

// call sends one JSON request and decodes the reply into T. A struct{} T
// skips decoding so empty bodies are accepted.
func call[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	endpoint := c.baseURL + path
	details := map[string]any{"url": endpoint, "method": method}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, bridgeError("encode iris request", http.StatusBadRequest, details, err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return nil, bridgeError("build iris request", http.StatusInternalServerError, details, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, bridgeError("iris unreachable", http.StatusBadGateway, details, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		details["body"] = strings.TrimSpace(string(snippet))
		return nil, errors.NewAPIError(fmt.Sprintf("iris responded %s", resp.Status), resp.StatusCode, details)
	}

	out := new(T)
	if _, skip := any(out).(*struct{}); skip {
		_, _ = io.Copy(io.Discard, resp.Body)
		return out, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, bridgeError("decode iris response", http.StatusBadGateway, details, err)
	}
	return out, nil
}

// bridgeError keeps the APIError type when a cause is attached.
func bridgeError(message string, status int, details map[string]any, cause error) *errors.APIError {
	apiErr := errors.NewAPIError(message, status, details)
	apiErr.Cause = cause
	return apiErr
}
