// Package client talks to the ordering API on behalf of the customer menu
// and the kitchen display.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"tableorder-backend/models"

	"github.com/google/uuid"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// OrderLine is one line of an order submission.
type OrderLine struct {
	MenuItemID uuid.UUID `json:"menuItem"`
	Quantity   int       `json:"quantity"`
}

// OrderRequest is the body of POST /api/orders.
type OrderRequest struct {
	TableNumber         int         `json:"tableNumber"`
	Items               []OrderLine `json:"items"`
	CustomerName        string      `json:"customerName,omitempty"`
	CustomerPhone       string      `json:"customerPhone,omitempty"`
	SpecialInstructions string      `json:"specialInstructions,omitempty"`
}

type LoginResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Manager   models.Manager `json:"manager"`
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient uses a client with a 10 second timeout when httpClient is nil.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) ListMenu(ctx context.Context, category string) ([]models.MenuItem, error) {
	path := "/api/menu"
	if category != "" {
		path += "?" + url.Values{"category": {category}}.Encode()
	}
	var items []models.MenuItem
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Login signs in a manager and keeps the token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{"username": username, "password": password}
	var res LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/manager/login", body, &res); err != nil {
		return nil, err
	}
	c.SetToken(res.Token)
	return &res, nil
}

func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*models.OrderView, error) {
	var res struct {
		Order models.OrderView `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, &res); err != nil {
		return nil, err
	}
	return &res.Order, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]models.OrderView, error) {
	var orders []models.OrderView
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) OrdersByTable(ctx context.Context, tableNumber int) ([]models.OrderView, error) {
	var orders []models.OrderView
	if err := c.do(ctx, http.MethodGet, "/api/orders/table/"+strconv.Itoa(tableNumber), nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.OrderView, error) {
	body := map[string]models.OrderStatus{"status": status}
	var res struct {
		Order models.OrderView `json:"order"`
	}
	if err := c.do(ctx, http.MethodPatch, "/api/orders/"+orderID.String()+"/status", body, &res); err != nil {
		return nil, err
	}
	return &res.Order, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
			apiErr.Message = envelope.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
