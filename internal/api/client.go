package api

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

	"shopfront/internal/util"
	"shopfront/pkg/domain"
)

// TokenSource supplies the current bearer token. An empty string means no
// authenticated session; the request goes out without an Authorization header.
type TokenSource interface {
	Token() string
}

// Client calls the storefront API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu       sync.RWMutex
	tokens   TokenSource
	onUnauth []func()
}

// APIError represents a storefront API error response.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return http.StatusText(e.Status)
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient constructs a storefront API client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource installs the bearer-token provider. The identity store
// registers itself here so outgoing requests always carry its current token.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

// OnUnauthenticated registers a handler fired whenever any API call comes
// back with a 401. Handlers run synchronously before the error is returned
// to the caller, so by the time callers see the failure the session has
// already been torn down.
func (c *Client) OnUnauthenticated(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauth = append(c.onUnauth, fn)
}

// authResponse is the login / code-exchange response body.
type authResponse struct {
	Token string           `json:"token"`
	User  domain.Principal `json:"user"`
}

// LoginUser exchanges credentials for a token and principal.
func (c *Client) LoginUser(ctx context.Context, email, password string) (domain.Principal, string, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", false, payload, &resp); err != nil {
		return domain.Principal{}, "", err
	}
	return resp.User, resp.Token, nil
}

// RegisterParams is the new-account request body.
type RegisterParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RegisterUser creates an account. It does not authenticate; callers route
// to login afterwards.
func (c *Client) RegisterUser(ctx context.Context, p RegisterParams) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/register", false, p, nil)
}

// Me fetches the principal for the current token.
func (c *Client) Me(ctx context.Context) (domain.Principal, error) {
	var user domain.Principal
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", true, nil, &user); err != nil {
		return domain.Principal{}, err
	}
	return user, nil
}

// ExchangeAuthCode trades a provider-issued one-time code for a token and
// principal. The server enforces single use; the client must not retry on
// ambiguous failure.
func (c *Client) ExchangeAuthCode(ctx context.Context, code string) (domain.Principal, string, error) {
	payload := map[string]string{"code": code}
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/google/callback", false, payload, &resp); err != nil {
		return domain.Principal{}, "", err
	}
	return resp.User, resp.Token, nil
}

// ProductQuery filters the product listing.
type ProductQuery struct {
	CategoryID string
	Sort       string
	Search     string
}

// ListProducts returns the product listing, filtered by query.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]domain.Product, error) {
	params := url.Values{}
	if q.CategoryID != "" {
		params.Set("category_id", q.CategoryID)
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	path := "/api/products"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var products []domain.Product
	if err := c.doJSON(ctx, http.MethodGet, path, true, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches one product.
func (c *Client) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var product domain.Product
	path := fmt.Sprintf("/api/products/%s", url.PathEscape(id))
	if err := c.doJSON(ctx, http.MethodGet, path, true, nil, &product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// RelatedProducts lists products related to the given one.
func (c *Client) RelatedProducts(ctx context.Context, id string) ([]domain.Product, error) {
	var products []domain.Product
	path := fmt.Sprintf("/api/productdetails/%s/related", url.PathEscape(id))
	if err := c.doJSON(ctx, http.MethodGet, path, true, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListCategories returns all product categories.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.doJSON(ctx, http.MethodGet, "/api/categories", true, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCart fetches the current cart.
func (c *Client) GetCart(ctx context.Context) (domain.Cart, error) {
	var cart domain.Cart
	if err := c.doJSON(ctx, http.MethodGet, "/api/cart", true, nil, &cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// AddCartItem adds a line item.
func (c *Client) AddCartItem(ctx context.Context, productID string, quantity int) error {
	payload := map[string]any{"product_id": productID, "quantity": quantity}
	return c.doJSON(ctx, http.MethodPost, "/api/cart/items", true, payload, nil)
}

// UpdateCartItem sets a line item's quantity.
func (c *Client) UpdateCartItem(ctx context.Context, itemID string, quantity int) error {
	payload := map[string]any{"quantity": quantity}
	path := fmt.Sprintf("/api/cart/items/%s", url.PathEscape(itemID))
	return c.doJSON(ctx, http.MethodPut, path, true, payload, nil)
}

// RemoveCartItem deletes a line item.
func (c *Client) RemoveCartItem(ctx context.Context, itemID string) error {
	path := fmt.Sprintf("/api/cart/items/%s", url.PathEscape(itemID))
	return c.doJSON(ctx, http.MethodDelete, path, true, nil, nil)
}

// ClearCart deletes all line items.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/cart", true, nil, nil)
}

// Checkout places an order from the server-held cart.
func (c *Client) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error) {
	var order domain.Order
	if err := c.doJSON(ctx, http.MethodPost, "/api/checkout", true, req, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// ListOrders returns the current principal's orders.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.doJSON(ctx, http.MethodGet, "/api/orders", true, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches one order.
func (c *Client) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	var order domain.Order
	path := fmt.Sprintf("/api/orders/%s", url.PathEscape(id))
	if err := c.doJSON(ctx, http.MethodGet, path, true, nil, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, authed bool, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", util.NewRequestID())
	if authed {
		if token := c.currentToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// A 401 on the login/register path is a failed attempt, not an
	// invalidation of the session we already hold, so only authenticated
	// requests tear the session down.
	if resp.StatusCode == http.StatusUnauthorized && authed {
		c.fireUnauthenticated()
	}
	if resp.StatusCode >= 400 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return &APIError{Status: resp.StatusCode, Detail: strings.TrimSpace(errResp.Detail)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) fireUnauthenticated() {
	c.mu.RLock()
	handlers := make([]func(), len(c.onUnauth))
	copy(handlers, c.onUnauth)
	c.mu.RUnlock()
	for _, fn := range handlers {
		fn()
	}
}
