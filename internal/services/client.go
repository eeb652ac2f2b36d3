package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the bearer token for authenticated calls. An empty
// token means the session is anonymous.
type TokenSource interface {
	Token() string
}

// Client talks to the storefront backend. It is constructed once per session
// and passed explicitly to every component that needs it.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewClient builds a backend client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// requestOpts captures inputs for a backend call.
type requestOpts struct {
	Method   string
	Path     string
	Query    map[string]string
	Body     any
	Op       string
	AuthOpts authMode
}

type authMode int

const (
	// authRequired fails with AuthRequiredError when no token is present.
	authRequired authMode = iota
	// authOptional sends the token when present, anonymous otherwise.
	authOptional
)

type response struct {
	Status int
	Body   []byte
}

// envelope is the backend's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, opts requestOpts) (*response, error) {
	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	if token == "" && opts.AuthOpts == authRequired {
		return nil, &AuthRequiredError{Op: opts.Op}
	}

	targetURL, err := c.makeURL(opts.Path, opts.Query)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, targetURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: opts.Op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: opts.Op, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &AuthRequiredError{Op: opts.Op}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &BackendError{
			Op:      opts.Op,
			Status:  resp.StatusCode,
			Message: extractMessage(respBody),
		}
	}

	return &response{Status: resp.StatusCode, Body: respBody}, nil
}

// decode unwraps the `{success,data,message}` envelope when present and
// unmarshals into out. Bare payloads without the envelope are accepted too.
func decode(resp *response, op string, out any) error {
	if out == nil || len(resp.Body) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err == nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s: decode response data: %w", op, err)
		}
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func extractMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Message
}

func (c *Client) makeURL(path string, query map[string]string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		values := u.Query()
		for k, v := range query {
			values.Set(k, v)
		}
		u.RawQuery = values.Encode()
	}
	return u.String(), nil
}
