// Package dummyjson implements the client for the remote demo catalog API.
package dummyjson

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopfront/api/internal/domain"
)

const (
	defaultTimeout       = 10 * time.Second
	maxErrorBodyBytes    = 4 << 10
	defaultListPageLimit = 10
)

var (
	// ErrNotFound indicates the upstream resource does not exist.
	ErrNotFound = errors.New("dummyjson: resource not found")
	// ErrInvalidCredentials indicates a rejected login attempt.
	ErrInvalidCredentials = errors.New("dummyjson: invalid credentials")
	// ErrUnauthorized indicates the upstream rejected the call with 401
	// outside the login flow.
	ErrUnauthorized = errors.New("dummyjson: unauthorized")
	// ErrUnavailable indicates the upstream could not be reached or answered with a server error.
	ErrUnavailable = errors.New("dummyjson: upstream unavailable")
)

// Client issues read calls against the remote catalog service.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption customises client construction.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client. Intended for tests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient constructs a client rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	client := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Products fetches one page of the product listing.
func (c *Client) Products(ctx context.Context, limit, skip int) (domain.ProductPage, error) {
	var payload productListPayload
	query := pageQuery(limit, skip)
	if err := c.getJSON(ctx, &payload, query, "products"); err != nil {
		return domain.ProductPage{}, err
	}
	return payload.toDomain(), nil
}

// Product fetches a single product by identifier, together with its embedded reviews.
func (c *Client) Product(ctx context.Context, id int) (domain.Product, []Review, error) {
	var payload productPayload
	if err := c.getJSON(ctx, &payload, nil, "products", strconv.Itoa(id)); err != nil {
		return domain.Product{}, nil, err
	}
	reviews := make([]Review, 0, len(payload.Reviews))
	for _, review := range payload.Reviews {
		reviews = append(reviews, review.toReview())
	}
	return payload.toDomain(), reviews, nil
}

// SearchProducts fetches one page of products matching the query string.
func (c *Client) SearchProducts(ctx context.Context, q string, limit, skip int) (domain.ProductPage, error) {
	var payload productListPayload
	query := pageQuery(limit, skip)
	query.Set("q", q)
	if err := c.getJSON(ctx, &payload, query, "products", "search"); err != nil {
		return domain.ProductPage{}, err
	}
	return payload.toDomain(), nil
}

// ProductsByCategory fetches one page of products in the named category.
func (c *Client) ProductsByCategory(ctx context.Context, category string, limit, skip int) (domain.ProductPage, error) {
	var payload productListPayload
	query := pageQuery(limit, skip)
	if err := c.getJSON(ctx, &payload, query, "products", "category", category); err != nil {
		return domain.ProductPage{}, err
	}
	return payload.toDomain(), nil
}

// Categories fetches the category directory.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var payload []categoryPayload
	if err := c.getJSON(ctx, &payload, nil, "products", "categories"); err != nil {
		return nil, err
	}
	categories := make([]Category, 0, len(payload))
	for _, item := range payload {
		categories = append(categories, Category{Slug: item.Slug, Name: item.Name})
	}
	return categories, nil
}

// Comments fetches one page of the global comment feed.
func (c *Client) Comments(ctx context.Context, limit, skip int) (CommentPage, error) {
	var payload commentListPayload
	query := pageQuery(limit, skip)
	if err := c.getJSON(ctx, &payload, query, "comments"); err != nil {
		return CommentPage{}, err
	}
	return payload.toPage(), nil
}

// CommentsForPost fetches comments attached to the given post identifier.
func (c *Client) CommentsForPost(ctx context.Context, postID int) ([]Comment, error) {
	var payload commentListPayload
	if err := c.getJSON(ctx, &payload, nil, "comments", "post", strconv.Itoa(postID)); err != nil {
		return nil, err
	}
	return payload.toPage().Comments, nil
}

// Users fetches one page of the user directory.
func (c *Client) Users(ctx context.Context, limit, skip int) (UserPage, error) {
	var payload userListPayload
	query := pageQuery(limit, skip)
	if err := c.getJSON(ctx, &payload, query, "users"); err != nil {
		return UserPage{}, err
	}
	return payload.toPage(), nil
}

// User fetches a single user by identifier.
func (c *Client) User(ctx context.Context, id int) (User, error) {
	var payload userPayload
	if err := c.getJSON(ctx, &payload, nil, "users", strconv.Itoa(id)); err != nil {
		return User{}, err
	}
	return payload.toUser(), nil
}

// Carts fetches one page of the demo cart listing.
func (c *Client) Carts(ctx context.Context, limit, skip int) ([]Cart, error) {
	var payload cartListPayload
	query := pageQuery(limit, skip)
	if err := c.getJSON(ctx, &payload, query, "carts"); err != nil {
		return nil, err
	}
	carts := make([]Cart, 0, len(payload.Carts))
	for _, item := range payload.Carts {
		carts = append(carts, item.toCart())
	}
	return carts, nil
}

// Login verifies credentials against the upstream auth endpoint.
func (c *Client) Login(ctx context.Context, username, password string) (AuthenticatedUser, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return AuthenticatedUser{}, fmt.Errorf("dummyjson: encode login payload: %w", err)
	}

	endpoint, err := c.endpoint(nil, "auth", "login")
	if err != nil {
		return AuthenticatedUser{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return AuthenticatedUser{}, fmt.Errorf("dummyjson: build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return AuthenticatedUser{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		return AuthenticatedUser{}, ErrInvalidCredentials
	case resp.StatusCode >= 500:
		return AuthenticatedUser{}, fmt.Errorf("%w: login status %d", ErrUnavailable, resp.StatusCode)
	default:
		return AuthenticatedUser{}, fmt.Errorf("dummyjson: login status %d: %s", resp.StatusCode, drainError(resp.Body))
	}

	var payload loginPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return AuthenticatedUser{}, fmt.Errorf("dummyjson: decode login response: %w", err)
	}
	return payload.toAuthenticatedUser(), nil
}

func (c *Client) getJSON(ctx context.Context, out interface{}, query url.Values, pathSegments ...string) error {
	endpoint, err := c.endpoint(query, pathSegments...)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("dummyjson: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("dummyjson: status %d: %s", resp.StatusCode, drainError(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("dummyjson: decode response: %w", err)
	}
	return nil
}

func (c *Client) endpoint(query url.Values, pathSegments ...string) (string, error) {
	if c == nil || c.baseURL == "" {
		return "", fmt.Errorf("%w: base URL not configured", ErrUnavailable)
	}
	segments := append([]string{c.baseURL}, pathSegments...)
	endpoint, err := url.JoinPath(segments[0], segments[1:]...)
	if err != nil {
		return "", fmt.Errorf("dummyjson: build endpoint: %w", err)
	}
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}
	return endpoint, nil
}

func pageQuery(limit, skip int) url.Values {
	query := url.Values{}
	if limit <= 0 {
		limit = defaultListPageLimit
	}
	query.Set("limit", strconv.Itoa(limit))
	if skip > 0 {
		query.Set("skip", strconv.Itoa(skip))
	}
	return query
}

func drainError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil || len(data) == 0 {
		return "<empty body>"
	}
	return strings.TrimSpace(string(data))
}
