// Package api is the HTTP client for the remote task API.
// Expected HTTP failures never surface as Go errors: every call
// returns a Result carrying either decoded data or the server's
// error text plus status code.
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
	"time"

	"github.com/existflow/taskdeck/internal/logger"
)

// Result is the uniform outcome of an API call. Exactly one of
// Data or Error is meaningful, selected by Success.
type Result[T any] struct {
	Success bool
	Data    T
	Error   string
	Status  int
}

// Client talks to the remote API. It holds no session state;
// the token is passed per call by whoever owns it.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given server URL. The
// /api/v1 prefix is appended unless the URL already carries it.
func NewClient(serverURL string) *Client {
	base := strings.TrimSuffix(serverURL, "/")
	if !strings.Contains(base, "/api/v1") {
		base += "/api/v1"
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// request performs a single HTTP exchange and normalizes the outcome.
// Non-2xx responses become Success=false with the body text as Error;
// transport failures become Success=false with status 500.
func request[T any](c *Client, ctx context.Context, method, endpoint, token string, body []byte, contentType string) Result[T] {
	var out Result[T]

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		out.Status = http.StatusInternalServerError
		out.Error = err.Error()
		return out
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger.Debug("HTTP request", logger.F("method", method), logger.F("endpoint", endpoint))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("HTTP request failed", logger.F("endpoint", endpoint), logger.F("error", err))
		out.Status = http.StatusInternalServerError
		out.Error = err.Error()
		return out
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, _ := io.ReadAll(resp.Body)
	out.Status = resp.StatusCode

	logger.Debug("HTTP response", logger.F("endpoint", endpoint), logger.F("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		out.Error = strings.TrimSpace(string(respBody))
		return out
	}

	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &out.Data); err != nil {
			out.Status = http.StatusInternalServerError
			out.Error = fmt.Sprintf("malformed response: %v", err)
			return out
		}
	}
	out.Success = true
	return out
}

func jsonBody(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

// TokenResponse is the credential exchange result.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterResponse is the newly created account.
type RegisterResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// SignIn exchanges credentials for a token. The endpoint takes
// form-encoded fields, not JSON.
func (c *Client) SignIn(ctx context.Context, email, password string) Result[TokenResponse] {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)
	return request[TokenResponse](c, ctx, http.MethodPost, "/auth/signin", "",
		[]byte(form.Encode()), "application/x-www-form-urlencoded")
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, email, password string) Result[RegisterResponse] {
	body := jsonBody(map[string]string{"email": email, "password": password})
	return request[RegisterResponse](c, ctx, http.MethodPost, "/auth/", "", body, "application/json")
}
