package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const httpTimeout = 15 * time.Second

// Client is a Provider backed by the hosted auth service's REST API.
// It performs one identity check at construction (Resume) and then
// caches the result; Login/LoginGuest/SignUp replace it.
type Client struct {
	baseURL string
	client  *http.Client

	mu      sync.Mutex
	id      *Identity
	token   string
	loading bool
}

// NewClient constructs a Client against the auth service at baseURL.
// The client starts in the loading state until Resume is called.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: httpTimeout},
		loading: true,
	}
}

// sessionResponse mirrors the auth service's session JSON.
type sessionResponse struct {
	Token     string `json:"token"`
	UID       string `json:"uid"`
	Email     string `json:"email"`
	Anonymous bool   `json:"anonymous"`
}

// Current implements Provider.
func (c *Client) Current() (*Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id, c.loading
}

// Resume restores a previous session from a stored token. An empty or
// rejected token resolves to "signed out" without error; only transport
// failures are returned. Either way the loading state ends.
func (c *Client) Resume(ctx context.Context, token string) error {
	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	if token == "" {
		return nil
	}

	var sess sessionResponse
	status, err := c.do(ctx, http.MethodGet, "/v1/session", token, nil, &sess)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return nil // token expired or revoked: signed out
	}

	c.setSession(sess)
	return nil
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.openSession(ctx, "/v1/session", map[string]string{
		"email":    email,
		"password": password,
	})
}

// SignUp creates an account and signs in.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	return c.openSession(ctx, "/v1/accounts", map[string]string{
		"email":    email,
		"password": password,
	})
}

// LoginGuest opens an anonymous guest session.
func (c *Client) LoginGuest(ctx context.Context) error {
	return c.openSession(ctx, "/v1/session/guest", nil)
}

// Logout implements Provider. The local session is cleared even when
// the remote call fails: the caller treats failure as "stay logged in"
// only for the error it logs, but a dead auth service must not trap the
// user in the board.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	token := c.token
	c.id = nil
	c.token = ""
	c.mu.Unlock()

	if token == "" {
		return nil
	}
	status, err := c.do(ctx, http.MethodDelete, "/v1/session", token, nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return fmt.Errorf("logout: auth service returned %d", status)
	}
	return nil
}

// Token returns the bearer token of the active session, for callers
// that persist it across runs.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) openSession(ctx context.Context, path string, body map[string]string) error {
	var sess sessionResponse
	status, err := c.do(ctx, http.MethodPost, path, "", body, &sess)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("auth service returned %d", status)
	}

	c.setSession(sess)
	return nil
}

func (c *Client) setSession(sess sessionResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = &Identity{UID: sess.UID, Email: sess.Email, Anonymous: sess.Anonymous}
	c.token = sess.Token
	c.loading = false
}

// do performs one JSON round-trip against the auth service and decodes
// a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) (int, error) {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("auth %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read body: %w", err)
	}

	if out != nil && resp.StatusCode < 300 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("json unmarshal: %w", err)
		}
	}
	return resp.StatusCode, nil
}
