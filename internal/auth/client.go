// Package auth talks to the unified authentication service and owns the
// local session. The auth service is a remote collaborator: tokens are
// issued and validated there, never minted locally.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pulasa-client/models"
)

type Client struct {
	baseURL string
	hc      *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout},
	}
}

// authResponse is the common envelope the auth service answers with.
type authResponse struct {
	Success bool         `json:"success"`
	Valid   bool         `json:"valid"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
	Error   string       `json:"error"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	resp, err := c.post(ctx, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, "", err
	}
	if !resp.Success {
		return nil, "", &Error{Message: resp.Error}
	}
	return resp.User, resp.Token, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*models.User, string, error) {
	resp, err := c.post(ctx, "/api/auth/register", "", req)
	if err != nil {
		return nil, "", err
	}
	if !resp.Success {
		return nil, "", &Error{Message: resp.Error}
	}
	return resp.User, resp.Token, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.post(ctx, "/api/auth/logout", token, nil)
	return err
}

// ValidateToken asks the auth service whether a token is still good. Used by
// the one-time token-transfer handshake before adopting a foreign token.
func (c *Client) ValidateToken(ctx context.Context, token string) (bool, error) {
	resp, err := c.post(ctx, "/api/auth/validate", "", map[string]string{"token": token})
	if err != nil {
		return false, err
	}
	return resp.Success && resp.Valid, nil
}

// Profile fetches the user the token belongs to.
func (c *Client) Profile(ctx context.Context, token string) (*models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/profile", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	httpResp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: profile: %w", err)
	}
	defer httpResp.Body.Close()

	var resp authResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("auth: decode profile: %w", err)
	}
	if !resp.Success || resp.User == nil {
		return nil, &Error{StatusCode: httpResp.StatusCode, Message: resp.Error}
	}
	return resp.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token, userID string, update ProfileUpdate) (*models.User, error) {
	resp, err := c.post(ctx, "/api/auth/users/"+userID, token, update)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &Error{Message: resp.Error}
	}
	return resp.User, nil
}

func (c *Client) post(ctx context.Context, path, token string, body any) (*authResponse, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: %s: %w", path, err)
	}
	defer httpResp.Body.Close()

	var resp authResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("auth: decode %s: %w", path, err)
	}
	if httpResp.StatusCode >= http.StatusBadRequest {
		return nil, &Error{StatusCode: httpResp.StatusCode, Message: resp.Error}
	}
	return &resp, nil
}

// Error carries the auth service's message verbatim.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("auth: request failed with status %d", e.StatusCode)
}
