// Package client is a typed HTTP client for the intervw API.
//
// Every protected call sends "Authorization: Bearer <token>". There is no
// code path that sends a bare token.
package client

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

	"github.com/sakif/intervw/internal/model"
)

// ErrNoToken is returned by protected calls made before a token is set.
var ErrNoToken = errors.New("client: not logged in")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int    `json:"-"`
	Kind       string `json:"error"`
	Message    string `json:"message"`
	Field      string `json:"field"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
}

// AuthResult is the body of a successful register or login.
type AuthResult struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// Client talks to one API server. It is safe for concurrent use as long as
// SetToken is not called concurrently with requests.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken presets the bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a Client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken sets the bearer token used by protected calls.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current bearer token.
func (c *Client) Token() string { return c.token }

// Register creates an account. On success the returned token is also
// stored on the client.
func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	var res AuthResult
	err := c.do(ctx, http.MethodPost, "/api/register", false, model.RegisterInput{
		Username: username, Email: email, Password: password,
	}, &res)
	if err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

// Login verifies credentials. On success the returned token is also stored
// on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	err := c.do(ctx, http.MethodPost, "/api/login", false, model.LoginInput{
		Email: email, Password: password,
	}, &res)
	if err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

// Create stores a new submission owned by the logged-in user.
func (c *Client) Create(ctx context.Context, in model.SubmissionInput) (*model.Submission, error) {
	var sub model.Submission
	if err := c.do(ctx, http.MethodPost, "/api/submissions", true, in, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// List fetches one page of the public listing. Zero page or limit lets
// the server choose its default.
func (c *Client) List(ctx context.Context, page, limit int) (*model.Page, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/submissions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var p model.Page
	if err := c.do(ctx, http.MethodGet, path, false, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListMine fetches every submission of the logged-in user.
func (c *Client) ListMine(ctx context.Context) ([]model.Submission, error) {
	var subs []model.Submission
	if err := c.do(ctx, http.MethodGet, "/api/submissions/user", true, nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// Update sends a partial update for submission id.
func (c *Client) Update(ctx context.Context, id string, patch model.SubmissionPatch) (*model.Submission, error) {
	var sub model.Submission
	if err := c.do(ctx, http.MethodPut, "/api/submissions/"+url.PathEscape(id), true, patch, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Delete removes submission id and returns what was deleted.
func (c *Client) Delete(ctx context.Context, id string) (*model.Submission, error) {
	var sub model.Submission
	if err := c.do(ctx, http.MethodDelete, "/api/submissions/"+url.PathEscape(id), true, nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *Client) do(ctx context.Context, method, path string, authed bool, body, out any) error {
	if authed && c.token == "" {
		return ErrNoToken
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		// a non-JSON error body still yields a usable APIError
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decoding %s %s response: %w", method, path, err)
	}
	return nil
}
