package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Failure classes the controller cares about. ErrUnauthorized means
// "re-authenticate", everything else means "roll back and tell the user".
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("invalid request")
	ErrServer       = errors.New("server error")
)

// Line mirrors the API's cart item shape.
type Line struct {
	ProductID uint    `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

// LoginResult is the /auth/login response pair.
type LoginResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// Client is a typed HTTP client for the storefront API.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.Mutex
	token string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken installs (or with "" clears) the bearer token used on every call.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Login authenticates and returns the token pair. It does not install the
// token; the caller decides when to switch identities.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var result LoginResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding login response: %w", err)
	}
	return &result, nil
}

// Logout revokes the server-side refresh tokens for the current identity.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil)
	return err
}

func (c *Client) FetchCart(ctx context.Context) ([]Line, error) {
	return c.snapshot(ctx, http.MethodGet, "/user/cart/", nil)
}

func (c *Client) UpsertItem(ctx context.Context, line Line) ([]Line, error) {
	return c.snapshot(ctx, http.MethodPost, "/user/cart/", line)
}

func (c *Client) ReplaceCart(ctx context.Context, lines []Line) ([]Line, error) {
	return c.snapshot(ctx, http.MethodPut, "/user/cart/", map[string]interface{}{"items": lines})
}

func (c *Client) SetQuantity(ctx context.Context, productID uint, quantity int) ([]Line, error) {
	path := fmt.Sprintf("/user/cart/%d", productID)
	return c.snapshot(ctx, http.MethodPut, path, map[string]int{"quantity": quantity})
}

func (c *Client) RemoveItem(ctx context.Context, productID uint) ([]Line, error) {
	path := fmt.Sprintf("/user/cart/%d", productID)
	return c.snapshot(ctx, http.MethodDelete, path, nil)
}

func (c *Client) ClearCart(ctx context.Context) ([]Line, error) {
	return c.snapshot(ctx, http.MethodDelete, "/user/cart/", nil)
}

// snapshot runs a cart call and decodes the authoritative {items: [...]}.
func (c *Client) snapshot(ctx context.Context, method, path string, payload interface{}) ([]Line, error) {
	body, err := c.do(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Items []Line `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding cart snapshot: %w", err)
	}
	if resp.Items == nil {
		resp.Items = []Line{}
	}
	return resp.Items, nil
}

// do performs one request and classifies the response status. Transport
// failures come back unwrapped so callers can treat them as transient.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, serverMessage(body))
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, serverMessage(body))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fmt.Errorf("%w: %s", ErrValidation, serverMessage(body))
	default:
		return nil, fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
	}
}

func serverMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return "request failed"
}
