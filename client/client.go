// Package client is a typed HTTP client for the owner API. It plays the UI's
// role in the optimistic reorder flow: lists are cached in reorder.Cache
// and moves are persisted through the positions endpoints.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"menufic/model"
	"menufic/reorder"

	"github.com/goccy/go-json"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Error}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

type Tokens struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         *model.User `json:"user"`
}

// Login authenticates and uses the access token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*Tokens, error) {
	var tokens Tokens
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &tokens); err != nil {
		return nil, err
	}
	c.token = tokens.AccessToken
	return &tokens, nil
}

func (c *Client) ListMenus(ctx context.Context, restaurantID string) ([]model.Menu, error) {
	var out []model.Menu
	if err := c.do(ctx, http.MethodGet, "/api/restaurants/"+restaurantID+"/menus", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCategories(ctx context.Context, menuID string) ([]model.Category, error) {
	var out []model.Category
	if err := c.do(ctx, http.MethodGet, "/api/menus/"+menuID+"/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListItems(ctx context.Context, categoryID string) ([]model.MenuItem, error) {
	var out []model.MenuItem
	if err := c.do(ctx, http.MethodGet, "/api/categories/"+categoryID+"/items", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateMenu(ctx context.Context, restaurantID, name string) (*model.Menu, error) {
	var out model.Menu
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/api/restaurants/"+restaurantID+"/menus", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCategory(ctx context.Context, menuID, name string) (*model.Category, error) {
	var out model.Category
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/api/menus/"+menuID+"/categories", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type positionsBody struct {
	Items []reorder.PositionUpdate `json:"items"`
}

func (c *Client) UpdateMenuPositions(ctx context.Context, updates []reorder.PositionUpdate) ([]model.Menu, error) {
	var out []model.Menu
	if err := c.do(ctx, http.MethodPost, "/api/menus/positions", positionsBody{updates}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateCategoryPositions(ctx context.Context, updates []reorder.PositionUpdate) ([]model.Category, error) {
	var out []model.Category
	if err := c.do(ctx, http.MethodPost, "/api/categories/positions", positionsBody{updates}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateItemPositions(ctx context.Context, updates []reorder.PositionUpdate) ([]model.MenuItem, error) {
	var out []model.MenuItem
	if err := c.do(ctx, http.MethodPost, "/api/items/positions", positionsBody{updates}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteRestaurant returns the restaurant tree as it was before deletion.
func (c *Client) DeleteRestaurant(ctx context.Context, id string) (*model.Restaurant, error) {
	var out model.Restaurant
	if err := c.do(ctx, http.MethodDelete, "/api/restaurants/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMenu(ctx context.Context, id string) (*model.Menu, error) {
	var out model.Menu
	if err := c.do(ctx, http.MethodDelete, "/api/menus/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) (*model.Category, error) {
	var out model.Category
	if err := c.do(ctx, http.MethodDelete, "/api/categories/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteItem(ctx context.Context, id string) (*model.MenuItem, error) {
	var out model.MenuItem
	if err := c.do(ctx, http.MethodDelete, "/api/items/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
