// Package client implements the litbot commands that drive a running
// litbotd over its admin API.
package client

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

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envAPIToken = "LITBOT_API_TOKEN"
	envAPIURL   = "LITBOT_API_URL"

	defaultAPIURL = "http://localhost:8080"
	userAgent     = "litbot-cli"
)

type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewAPIClientWithCmd builds a client from the --api-token and --api-url
// flags, a .env file in the working directory, the environment and the saved
// login, in that order of precedence.
func NewAPIClientWithCmd(cmd *cobra.Command) (*APIClient, error) {
	_ = godotenv.Load()

	var flagToken, flagURL string
	if cmd != nil {
		flagToken, _ = cmd.Flags().GetString("api-token")
		flagURL, _ = cmd.Flags().GetString("api-url")
	}

	creds, err := ResolveCredentials(flagToken, flagURL)
	if err != nil {
		return nil, err
	}
	if creds.Token == "" {
		return nil, fmt.Errorf("%s not set (run 'litbot auth login' or set the environment variable)", envAPIToken)
	}
	return NewAPIClientWithConfig(creds.Token, creds.URL), nil
}

func NewAPIClientWithConfig(token, baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		// Manual sweeps fetch every feed before responding.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// APIResponse is the admin API envelope.
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Decode unmarshals the data payload into v.
func (r *APIResponse) Decode(v interface{}) error {
	if r == nil || len(r.Data) == 0 {
		return fmt.Errorf("empty response")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	return nil
}

// APIError is a non-2xx reply. Data holds the partial result the server sent
// alongside the error, if any.
type APIError struct {
	StatusCode int
	Message    string
	Data       json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Partial decodes the data sent with the error into v and reports whether
// there was any.
func (e *APIError) Partial(v interface{}) bool {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return false
	}
	return json.Unmarshal(e.Data, v) == nil
}

func (c *APIClient) Get(ctx context.Context, path string, query url.Values) (*APIResponse, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *APIClient) Post(ctx context.Context, path string, body interface{}) (*APIResponse, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *APIClient) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *APIClient) do(ctx context.Context, method, path string, body interface{}) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return decodeEnvelope(resp.StatusCode, raw)
}

func decodeEnvelope(status int, raw []byte) (*APIResponse, error) {
	failed := status >= http.StatusBadRequest
	if len(bytes.TrimSpace(raw)) == 0 {
		if failed {
			return nil, &APIError{StatusCode: status, Message: http.StatusText(status)}
		}
		return &APIResponse{}, nil
	}

	var env APIResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		if failed {
			return nil, &APIError{StatusCode: status, Message: strings.TrimSpace(string(raw))}
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if failed {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(status)
		}
		return nil, &APIError{StatusCode: status, Message: msg, Data: env.Data}
	}
	return &env, nil
}
