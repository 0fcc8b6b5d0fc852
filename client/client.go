package client

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

	"github.com/lumera-labs/marketplace-backend/pkg/logger"
)

// ResponseInterceptor observes every HTTP response before the SDK decodes
// it. Interceptors run in registration order; a returned error aborts
// decoding and is surfaced to the caller.
type ResponseInterceptor func(*http.Response) error

// Config assembles an explicit HTTP client for the SDK. Nothing here is
// global: two Clients with separate Configs share no state.
type Config struct {
	// BaseURL is the backend origin, e.g. "https://shop.example.com".
	BaseURL string
	// HTTPClient carries the transport; defaults to a 10s-timeout client.
	// Tests inject an httptest transport here.
	HTTPClient *http.Client
	// Storage persists the cart id and auth tokens.
	Storage Storage
	// Interceptors run against every response.
	Interceptors []ResponseInterceptor
	Logger       *logger.Logger
}

// Client is the SDK's request layer. It attaches the bearer token from
// Storage to every request and funnels every response through the configured
// interceptors.
type Client struct {
	baseURL      string
	http         *http.Client
	storage      Storage
	interceptors []ResponseInterceptor
	logg         *logger.Logger
}

// APIError is a non-2xx backend response decoded from the error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// New builds a Client. BaseURL and Storage are required.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.Storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		http:         httpClient,
		storage:      cfg.Storage,
		interceptors: cfg.Interceptors,
		logg:         cfg.Logger,
	}, nil
}

// UnauthorizedInterceptor returns the global 401 handler: the first 401 seen
// clears all persisted auth and cart state and fires redirect exactly once,
// no matter how many in-flight requests fail concurrently. Share one
// instance across every Client that should participate in the reset.
func UnauthorizedInterceptor(store Storage, redirect func()) ResponseInterceptor {
	var once sync.Once
	return func(resp *http.Response) error {
		if resp.StatusCode != http.StatusUnauthorized {
			return nil
		}
		once.Do(func() {
			store.Delete(KeyAccessToken)
			store.Delete(KeyRefreshToken)
			store.Delete(KeyUserProfile)
			store.Delete(KeyCartID)
			if redirect != nil {
				redirect()
			}
		})
		return nil
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.storage.Get(KeyAccessToken); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	for _, intercept := range c.interceptors {
		if err := intercept(resp); err != nil {
			return err
		}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(payload, &envelope); err == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether an access token is persisted.
func (c *Client) IsAuthenticated() bool {
	token, ok := c.storage.Get(KeyAccessToken)
	return ok && token != ""
}

func (c *Client) logError(ctx context.Context, msg string, err error) {
	if c.logg != nil {
		c.logg.Error(ctx, msg, err)
	}
}
