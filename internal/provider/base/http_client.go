package base

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"daraja/internal/provider"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds every provider call.
const DefaultTimeout = 2 * time.Second

// HTTPClient runs exactly one HTTP call per Request. It never retries.
type HTTPClient struct {
	client *http.Client
	name   string // provider name for logging
	logger zerolog.Logger
}

// NewHTTPClient creates a client with a fixed per-call timeout
func NewHTTPClient(providerName string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
		name:   providerName,
		logger: log.Logger,
	}
}

// WithLogger returns a copy of c that logs to logger
func (c *HTTPClient) WithLogger(logger zerolog.Logger) *HTTPClient {
	cp := *c
	cp.logger = logger
	return &cp
}

// RequestOption customizes a single outgoing request
type RequestOption func(*http.Request)

// WithBasicAuth sets HTTP Basic credentials on the request
func WithBasicAuth(username, password string) RequestOption {
	return func(req *http.Request) { req.SetBasicAuth(username, password) }
}

// Request dispatches GET, POST or PUT. Any other method fails before I/O.
// A nil response with a non-nil error means the provider was never reached
// or never answered.
func (c *HTTPClient) Request(ctx context.Context, method, url string, payload any, headers map[string]string, opts ...RequestOption) (*HTTPResponse, error) {
	var body io.Reader
	switch method {
	case http.MethodGet:
		c.logger.Debug().Str("provider", c.name).Msgf("Retrieving data from: %s.", url)
	case http.MethodPost, http.MethodPut:
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON payload: %w", err)
		}
		body = bytes.NewReader(b)
		verb := "Posting"
		if method == http.MethodPut {
			verb = "Putting"
		}
		c.logger.Debug().Str("provider", c.name).Msgf("%s to: %s with: [%s].", verb, url, strings.Join(payloadFields(b), " "))
	default:
		return nil, &provider.UnsupportedMethodError{Method: method}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", fmt.Sprintf("daraja-sdk/%s", c.name))
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().
			Str("provider", c.name).
			Str("method", method).
			Str("url", url).
			Err(err).
			Msg("HTTP request failed")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	return c.handleResponse(resp)
}

// handleResponse drains and closes the body
func (c *HTTPClient) handleResponse(resp *http.Response) (*HTTPResponse, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug().
		Str("provider", c.name).
		Int("status_code", resp.StatusCode).
		Int("body_length", len(body)).
		Msg("received HTTP response")

	return &HTTPResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

// HTTPResponse represents an HTTP response
type HTTPResponse struct {
	StatusCode int
	Status     string // reason phrase as sent, e.g. "400 Bad Request"
	Headers    http.Header
	Body       []byte
}

// IsSuccess checks if the response indicates success (2xx status code)
func (r *HTTPResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// UnmarshalJSON unmarshals the response body into the provided value
func (r *HTTPResponse) UnmarshalJSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// String returns the response body as a string
func (r *HTTPResponse) String() string {
	return string(r.Body)
}

// Preprocess logs the status band and decodes the body. The band only
// affects logging. An empty body, null or {} yields nil.
func Preprocess(resp *HTTPResponse, logger zerolog.Logger) (map[string]any, error) {
	code, reason := resp.StatusCode, resp.Status

	switch {
	case code >= 100 && code < 200:
		logger.Error().Msgf("Informational errors: %d, reason: %s.", code, reason)
	case code >= 300 && code < 400:
		logger.Error().Msgf("Redirect Issues: %d, reason: %s.", code, reason)
	case code >= 400 && code < 500:
		logger.Error().Msgf("Client Error: %d, reason: %s.", code, reason)
	case code >= 500 && code < 600:
		logger.Error().Msgf("Server Error: %d, reason: %s.", code, reason)
	case code == http.StatusOK:
		logger.Info().Msg("Request was successful, returning response.")
	}

	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil, nil
	}

	var out map[string]any
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// payloadFields lists the top-level keys of an encoded payload. Values are
// never logged.
func payloadFields(b []byte) []string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
