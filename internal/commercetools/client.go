// Package commercetools is the typed read client for the commerce
// platform API: OAuth client-credentials auth plus the handful of GETs
// the processors and the bulk sync need.
package commercetools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/marketbridge/marketbridge/internal/model"
)

// ErrNotFound marks a missing resource (404 or an empty query result).
var ErrNotFound = errors.New("resource not found")

const defaultPageLimit = 20

type Config struct {
	APIURL       string
	AuthURL      string
	ProjectKey   string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Timeout      time.Duration
	PageLimit    int
}

type Client struct {
	cfg        Config
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.PageLimit == 0 {
		cfg.PageLimit = defaultPageLimit
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// OrderByID fetches one order.
func (c *Client) OrderByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	if err := c.getJSON(ctx, "/orders/"+id, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// PaymentByID fetches one payment with its transactions.
func (c *Client) PaymentByID(ctx context.Context, id string) (*model.Payment, error) {
	var payment model.Payment
	if err := c.getJSON(ctx, "/payments/"+id, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// CustomerByID fetches one customer.
func (c *Client) CustomerByID(ctx context.Context, id string) (*model.Customer, error) {
	var customer model.Customer
	if err := c.getJSON(ctx, "/customers/"+id, nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// OrderByPaymentID resolves the order owning a payment. An order without
// a match returns ErrNotFound.
func (c *Client) OrderByPaymentID(ctx context.Context, paymentID string) (*model.Order, error) {
	query := url.Values{}
	query.Set("limit", "1")
	query.Set("where", fmt.Sprintf("paymentInfo(payments(id = %q))", paymentID))

	var page struct {
		Results []model.Order `json:"results"`
	}
	if err := c.getJSON(ctx, "/orders", query, &page); err != nil {
		return nil, err
	}
	if len(page.Results) == 0 {
		return nil, fmt.Errorf("order for payment %s: %w", paymentID, ErrNotFound)
	}
	return &page.Results[0], nil
}

// OrdersPage is one page of the full order scan.
type OrdersPage struct {
	Data    []model.Order
	HasMore bool
	LastID  string
}

// OrdersAfter pages through all orders by ascending id. Pass the last id
// of the previous page, or empty for the first page.
func (c *Client) OrdersAfter(ctx context.Context, lastID string) (*OrdersPage, error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", c.cfg.PageLimit))
	query.Set("withTotal", "false")
	query.Set("sort", "id asc")
	if lastID != "" {
		query.Set("where", fmt.Sprintf("id > %q", lastID))
	}

	var page struct {
		Count   int           `json:"count"`
		Results []model.Order `json:"results"`
	}
	if err := c.getJSON(ctx, "/orders", query, &page); err != nil {
		return nil, err
	}

	out := &OrdersPage{
		Data:    page.Results,
		HasMore: page.Count == c.cfg.PageLimit,
	}
	if len(page.Results) > 0 {
		out.LastID = page.Results[len(page.Results)-1].ID
	}
	return out, nil
}

// GetCustomObject checks for a custom object; ErrNotFound when absent.
func (c *Client) GetCustomObject(ctx context.Context, container, key string) error {
	var obj map[string]any
	return c.getJSON(ctx, "/custom-objects/"+container+"/"+key, nil, &obj)
}

// CreateCustomObject creates or replaces a custom object.
func (c *Client) CreateCustomObject(ctx context.Context, container, key, value string) error {
	body, err := json.Marshal(map[string]string{
		"container": container,
		"key":       key,
		"value":     value,
	})
	if err != nil {
		return fmt.Errorf("marshal custom object: %w", err)
	}
	return c.send(ctx, http.MethodPost, "/custom-objects", strings.NewReader(string(body)))
}

// DeleteCustomObject removes a custom object.
func (c *Client) DeleteCustomObject(ctx context.Context, container, key string) error {
	return c.send(ctx, http.MethodDelete, "/custom-objects/"+container+"/"+key, nil)
}

// bearerToken returns a cached client-credentials token, refreshing it
// when close to expiry.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	if len(c.cfg.Scopes) > 0 {
		form.Set("scope", strings.Join(c.cfg.Scopes, " "))
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	request.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("send token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("token response status %d: %s", resp.StatusCode, string(body))
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	c.token = token.AccessToken
	// Refresh one minute early to avoid racing the expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}

	u := c.cfg.APIURL + "/" + c.cfg.ProjectKey + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("response status %d for %s: %s", resp.StatusCode, path, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader) error {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, method, c.cfg.APIURL+"/"+c.cfg.ProjectKey+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("response status %d for %s: %s", resp.StatusCode, path, string(respBody))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
