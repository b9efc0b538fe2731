// Package gateway is the REST client for the expense backend. It owns the
// transport concerns of the client side: request encoding, the session
// bearer token, and classifying failures into the taxonomy the view layer
// reacts to. It never retries; retry policy belongs to the caller.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finman/internal/core"
)

var (
	// ErrUnavailable wraps transport failures: the backend is unreachable
	// or returned a malformed response. Retryable from the caller's side.
	ErrUnavailable = errors.New("gateway unavailable")
	// ErrUnauthorized means the credentials or session token were rejected.
	// The caller should prompt for re-authentication.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound means the mutation targeted an id the backend no longer
	// has. The local store must be left unchanged.
	ErrNotFound = errors.New("not found")
)

// Client talks to one backend instance. Safe for use from a single session
// owner; the token is set once at login.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New creates a client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken installs the session token attached to every subsequent call.
func (c *Client) SetToken(token string) {
	c.token = token
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  core.User `json:"user"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a session token and the authenticated
// user. The token is installed on the client on success.
func (c *Client) Login(ctx context.Context, email, password string) (core.User, string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", credentials{Email: email, Password: password}, &resp)
	if err != nil {
		return core.User{}, "", err
	}
	c.token = resp.Token
	return resp.User, resp.Token, nil
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, name, email, password string) (core.User, error) {
	var u core.User
	err := c.do(ctx, http.MethodPost, "/api/users", registerRequest{Name: name, Email: email, Password: password}, &u)
	return u, err
}

// List returns all expenses belonging to the user.
func (c *Client) List(ctx context.Context, userID int64) ([]core.Expense, error) {
	var out []core.Expense
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/expenses/user/%d", userID), nil, &out)
	return out, err
}

// Create sends a record without an id and returns it with the
// server-assigned id and version.
func (c *Client) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	var out core.Expense
	err := c.do(ctx, http.MethodPost, "/api/expenses", e, &out)
	return out, err
}

// Update replaces the record with the given id and returns the confirmed
// state with its bumped version.
func (c *Client) Update(ctx context.Context, id int64, e core.Expense) (core.Expense, error) {
	var out core.Expense
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/expenses/%d", id), e, &out)
	return out, err
}

// Delete removes the record with the given id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", id), nil, nil)
}

// Summary fetches the server-computed overview for a date range. Unset
// bounds are omitted from the query.
func (c *Client) Summary(ctx context.Context, userID int64, from, to core.Date) (core.Summary, error) {
	query := url.Values{}
	if !from.IsZero() {
		query.Set("from", from.String())
	}
	if !to.IsZero() {
		query.Set("to", to.String())
	}
	path := fmt.Sprintf("/api/expenses/user/%d/summary", userID)
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var out core.Summary
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func classifyStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := http.StatusText(resp.StatusCode)
	var body errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	default:
		return fmt.Errorf("backend error (%d): %s", resp.StatusCode, msg)
	}
}
