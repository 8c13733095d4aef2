// Package klaviyo is the typed HTTP client for the marketing platform
// API. One call per outbound request; retry policy is intentionally not
// implemented here.
package klaviyo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/marketbridge/marketbridge/internal/model"
)

const maxErrorBody = 4096

type Config struct {
	BaseURL  string
	APIKey   string
	Revision string
	Timeout  time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// DeliveryError is a rejection by the marketing API: the response status
// and (truncated) body, kept for logs and dead-letter bookkeeping.
type DeliveryError struct {
	Status int
	Body   string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("marketing api rejected request: status %d: %s", e.Status, e.Body)
}

type requestBody struct {
	Data requestData `json:"data"`
}

type requestData struct {
	Type       string `json:"type"`
	Attributes any    `json:"attributes"`
}

// SendEvent sends one outbound request. Metric events go to the events
// endpoint, profile upserts to the profiles endpoint. Non-2xx responses
// return a *DeliveryError.
func (c *Client) SendEvent(ctx context.Context, req *model.OutboundRequest) error {
	if c == nil {
		return fmt.Errorf("klaviyo client not configured")
	}

	var path string
	var attributes any
	switch req.Kind {
	case model.KindEvent:
		path = "/api/events/"
		attributes = req.Event
	case model.KindProfile:
		path = "/api/profiles/"
		attributes = req.Profile
	default:
		return fmt.Errorf("unknown outbound kind %q", req.Kind)
	}

	bodyBytes, err := json.Marshal(requestBody{
		Data: requestData{Type: string(req.Kind), Attributes: attributes},
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Klaviyo-API-Key "+c.cfg.APIKey)
	if c.cfg.Revision != "" {
		request.Header.Set("revision", c.cfg.Revision)
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &DeliveryError{Status: resp.StatusCode, Body: string(body)}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
