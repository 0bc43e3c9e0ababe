// Package api is the REST client for the auction/bid/wallet/notification
// server. It authenticates with the session's bearer token and surfaces
// server-provided error messages verbatim, so the view layer can show them
// unchanged.
package api

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

	"pulasa-client/utils"
)

// TokenSource yields the current session token, empty when logged out.
type TokenSource func() string

type Client struct {
	baseURL string
	hc      *http.Client
	token   TokenSource

	// breaker guards passive refreshes only; user-initiated actions always
	// go through so the user gets a real answer.
	breaker *utils.CircuitBreaker
}

func NewClient(baseURL string, timeout time.Duration, token TokenSource) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
		token:   token,
		breaker: utils.NewCircuitBreaker("auction-api"),
	}
}

// APIError is a server-rejected request (4xx/5xx with an error payload).
// Message carries the server's text verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api: request failed with status %d", e.StatusCode)
}

// IsAuthError reports whether err is a 401/403 rejection, which forces the
// session into the logged-out state.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// errorPayload covers both error shapes the server uses: a single message
// and express-validator style lists.
type errorPayload struct {
	Error  string `json:"error"`
	Errors []struct {
		Msg string `json:"msg"`
	} `json:"errors"`
}

func (p *errorPayload) message() string {
	if p.Error != "" {
		return p.Error
	}
	if len(p.Errors) > 0 {
		msgs := make([]string, 0, len(p.Errors))
		for _, e := range p.Errors {
			if e.Msg != "" {
				msgs = append(msgs, e.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// getPassive is get behind the circuit breaker, for background refreshes
// that may silently fail and retry on the next trigger.
func (c *Client) getPassive(ctx context.Context, path string, query url.Values, out any) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.get(ctx, path, query, out)
	})
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
		reqBody = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var payload errorPayload
		data, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(data, &payload)
		return &APIError{StatusCode: resp.StatusCode, Message: payload.message()}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}
