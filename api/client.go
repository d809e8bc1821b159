// Package api talks to the REST collaborators that serve full collections.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-dashboard/models"
)

const (
	OrdersPath        = "/api/orders"
	KitchenTokensPath = "/api/kitchen-tokens"
	BillsPath         = "/api/bills"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: GET %s returned %d: %s", e.Path, e.StatusCode, e.Body)
}

// envelope mirrors utils.JSONResponse on the server.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) FetchOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.getCollection(ctx, OrdersPath, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) FetchKitchenTokens(ctx context.Context) ([]models.KitchenToken, error) {
	var tokens []models.KitchenToken
	if err := c.getCollection(ctx, KitchenTokensPath, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (c *Client) FetchBills(ctx context.Context) ([]models.Bill, error) {
	var bills []models.Bill
	if err := c.getCollection(ctx, BillsPath, &bills); err != nil {
		return nil, err
	}
	return bills, nil
}

// getCollection decodes either a bare JSON array or the {status,message,data}
// envelope into out.
func (c *Client) getCollection(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return fmt.Errorf("api: decode %s envelope: %w", path, err)
		}
		trimmed = bytes.TrimSpace(env.Data)
	}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("api: decode %s: %w", path, err)
	}
	return nil
}
