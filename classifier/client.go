// Package classifier is the HTTP transport for the top505 item classification API.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"avito-parser/models"
)

const apiKeyHeader = "X-API-Key"

var (
	ErrMissingAPIKey     = errors.New("classifier: api key is not set")
	ErrUnauthorized      = errors.New("classifier: authentication failed")
	ErrRateLimited       = errors.New("classifier: rate limited")
	ErrTimeout           = errors.New("classifier: request timed out")
	ErrMalformedResponse = errors.New("classifier: malformed response")
)

// StatusError is returned for HTTP statuses without a dedicated sentinel.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("classifier: unexpected status %d: %s", e.Code, e.Body)
}

// Retryable reports whether the status is a server-side failure.
func (e *StatusError) Retryable() bool {
	return e.Code >= http.StatusInternalServerError
}

// Config is the connection configuration of a Client.
type Config struct {
	Endpoint string
	APIKey   string
	Source   string
	Timeout  time.Duration
}

// RequestObserver is notified of every request with its outcome label.
type RequestObserver interface {
	ObserveRequest(outcome string, duration time.Duration)
}

// Client sends batches of titles to the classification endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	observer   RequestObserver
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver reports request outcomes to o.
func WithObserver(o RequestObserver) Option {
	return func(c *Client) { c.observer = o }
}

// New creates a Client. It fails when cfg carries no API key.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Source == "" {
		cfg.Source = "1c"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type requestItem struct {
	Title string `json:"title"`
	Day   string `json:"day"`
}

type batchRequest struct {
	Source string        `json:"source"`
	Data   []requestItem `json:"data"`
}

type batchResponse struct {
	ProcessedData []models.Classification `json:"processed_data"`
}

// Classify submits titles stamped with day and returns the classification
// objects in the order the service returned them. The list may be shorter
// than titles.
func (c *Client) Classify(ctx context.Context, titles []string, day string) ([]models.Classification, error) {
	payload := batchRequest{Source: c.cfg.Source, Data: make([]requestItem, len(titles))}
	for i, t := range titles {
		payload.Data[i] = requestItem{Title: t, Day: day}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("classifier: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("classifier: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = classifyTransportError(ctx, err)
		c.observe(outcomeOf(err, 0), start)
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32*1024*1024))
	if err != nil {
		err = classifyTransportError(ctx, err)
		c.observe(outcomeOf(err, resp.StatusCode), start)
		return nil, err
	}
	c.observe(outcomeOf(nil, resp.StatusCode), start)

	switch {
	case resp.StatusCode == http.StatusOK:
		var decoded batchResponse
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if decoded.ProcessedData == nil {
			return []models.Classification{}, nil
		}
		return decoded.ProcessedData, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(raw), 200)}
	}
}

// classifyTransportError maps client-side deadlines to ErrTimeout. A
// cancelled parent context is returned untouched so callers can stop.
func classifyTransportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("classifier: transport: %w", err)
}

func (c *Client) observe(outcome string, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(outcome, time.Since(start))
	}
}

func outcomeOf(err error, status int) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case err != nil:
		return "transport_error"
	default:
		return fmt.Sprintf("%d", status)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
