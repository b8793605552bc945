// Package backend implements the REST AuthBackend client for the
// Spectrum 358 API. It owns the transport details the session core is
// deliberately ignorant of: endpoint paths, bearer-token handling, request
// IDs, and the mapping of non-2xx responses to APIError values carrying
// the server's message.
package backend

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

	"github.com/google/uuid"
	"github.com/spectrum358/adminauth"
)

// Responses are small JSON documents; anything larger is a server fault.
const maxResponseBytes = 1 << 20

// APIError is a non-2xx backend response. Message is always non-empty:
// when the body carries no usable text the HTTP status text stands in.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client is the HTTP implementation of adminauth.AuthBackend. It is safe
// for concurrent use; the bearer token captured at login is attached to
// every subsequent request until logout.
type Client struct {
	base string
	http *http.Client

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

var _ adminauth.AuthBackend = (*Client)(nil)

// NewClient builds a client from the backend configuration. The base URL
// is required; the timeout falls back to the config default.
func NewClient(cfg adminauth.BackendConfig) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, errors.New("backend base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
	}, nil
}

// Login authenticates with email and password. A token in the response is
// retained for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (*adminauth.LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp adminauth.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if resp.Token != "" {
		c.setToken(resp.Token)
	}
	return &resp, nil
}

// Register creates an account and, like Login, retains any returned token.
func (c *Client) Register(ctx context.Context, req adminauth.RegisterRequest) (*adminauth.LoginResponse, error) {
	var resp adminauth.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	if resp.Token != "" {
		c.setToken(resp.Token)
	}
	return &resp, nil
}

// AdminRegisterUser creates an account on behalf of another user. The
// response payload is returned raw; its shape is the backend's business.
func (c *Client) AdminRegisterUser(ctx context.Context, req adminauth.AdminRegisterRequest) (json.RawMessage, error) {
	var payload json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/auth/admin/users", req, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Logout invalidates the server-side session and drops the bearer token.
// The token is dropped even when the call fails; holding on to it after a
// logout attempt would be worse than re-authenticating.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.clearToken()
	return err
}

// GetProfile fetches the account record for uid. A success with a nil
// user means the account no longer exists.
func (c *Client) GetProfile(ctx context.Context, uid string) (*adminauth.ProfileResponse, error) {
	var resp adminauth.ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/users/"+uid, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProfile writes the set fields of updates to the account record.
func (c *Client) UpdateProfile(ctx context.Context, uid string, updates adminauth.ProfileUpdate) (*adminauth.UpdateResponse, error) {
	var resp adminauth.UpdateResponse
	if err := c.do(ctx, http.MethodPut, "/users/"+uid, updates, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("building %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return apiErrorFrom(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// apiErrorFrom extracts the server's message from an error body. The
// backend uses "message"; "error" is accepted for older deployments.
func apiErrorFrom(status int, body []byte) *APIError {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &parsed)

	message := parsed.Message
	if message == "" {
		message = parsed.Error
	}
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return &APIError{Status: status, Message: message}
}
