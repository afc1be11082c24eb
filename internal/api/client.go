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
)

// TokenSource supplies the bearer token attached to outgoing requests.
type TokenSource interface {
	Token() (string, bool)
}

// Envelope is the response wrapper shared by every backend endpoint.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Client is the single HTTP client the stores talk through. It attaches the
// bearer token when one is held, enforces the configured timeout, and runs
// the unauthorized hook on any 401 before the calling operation sees the
// error.
type Client struct {
	base           *url.URL
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func()
}

// New constructs a Client for the given backend base URL.
func New(baseURL string, timeout time.Duration, tokens TokenSource) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("api: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api: parse base URL: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		base:       parsed,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}, nil
}

// SetUnauthorizedHook registers the forced-logout side effect. The hook fires
// on every 401 regardless of which operation triggered it.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

// SetHTTPClient swaps the underlying http.Client. Test servers hand out
// preconfigured clients.
func (c *Client) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.httpClient = hc
	}
}

// Get performs a GET request and decodes the envelope data into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body and decodes the envelope data
// into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	target := c.base.JoinPath(path)

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), bodyReader)
	if err != nil {
		return fmt.Errorf("api: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Message: "request failed: " + netErrReason(err), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Message: "read response: " + err.Error(), Err: err}
	}

	var env Envelope
	if len(respBody) > 0 {
		// Non-2xx bodies share the envelope shape; a parse failure falls
		// through with an empty message.
		_ = json.Unmarshal(respBody, &env)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &UnauthorizedError{Message: messageOr(env.Message, "unauthorized")}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := messageOr(env.Message, fmt.Sprintf("request failed with status %d", resp.StatusCode))
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
			return &ValidationError{Message: msg}
		}
		return &BackendError{Message: msg}
	}

	if !env.Success {
		return &BackendError{Message: messageOr(env.Message, "request was not successful")}
	}

	if out != nil {
		if len(env.Data) == 0 {
			return &BackendError{Message: "response data is missing"}
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &BackendError{Message: "unexpected response shape: " + err.Error()}
		}
	}

	return nil
}

func netErrReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		if ue.Timeout() {
			return "request timed out"
		}
		return ue.Err.Error()
	}
	return err.Error()
}

func messageOr(message, fallback string) string {
	if strings.TrimSpace(message) == "" {
		return fallback
	}
	return message
}
