// Package client talks to a hostgate gateway. It translates caller-convention
// paths to host convention on the way out and back again for display.
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
	"strings"
	"time"

	"github.com/xdg/hostgate/internal/gateway"
	"github.com/xdg/hostgate/internal/pathutil"
	"github.com/xdg/hostgate/internal/workspace"
)

// DefaultTimeout bounds each request when no HTTP client is supplied.
const DefaultTimeout = 30 * time.Second

// ErrUnreachable wraps transport failures: the gateway could not be reached
// or did not answer in time.
var ErrUnreachable = errors.New("gateway unreachable")

// APIError is a non-2xx response delivered by the gateway.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// Client provides methods to call the gateway API.
type Client struct {
	// BaseURL is the gateway address (e.g., "http://127.0.0.1:5000").
	BaseURL string

	// APIKey is sent in the X-API-Key header of every request.
	APIKey string

	// HTTPClient is the HTTP client used for requests.
	// If nil, a client with DefaultTimeout is used.
	HTTPClient *http.Client

	// Paths translates between caller and host path conventions.
	Paths pathutil.Translator
}

// NewClient creates a gateway client with the given per-request timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration, paths pathutil.Translator) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
		Paths:      paths,
	}
}

// doRequest executes an HTTP request and decodes a 200 response into result.
// If body is not nil, it's JSON-encoded and sent as the request body.
// Transport failures wrap ErrUnreachable; other statuses return *APIError.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(gateway.APIKeyHeader, c.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrUnreachable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return apiErrorFrom(resp.StatusCode, data)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// apiErrorFrom builds an APIError from a response body, preferring the
// gateway's JSON error message over the raw text.
func apiErrorFrom(status int, body []byte) *APIError {
	var errResp gateway.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{StatusCode: status, Message: errResp.Error}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}

// Status returns the gateway status with the workspace root in caller
// convention.
func (c *Client) Status(ctx context.Context) (*gateway.StatusResponse, error) {
	var st gateway.StatusResponse
	if err := c.doRequest(ctx, http.MethodGet, "/status", nil, nil, &st); err != nil {
		return nil, err
	}
	st.WorkspaceRoot = c.Paths.ToCallerPath(st.WorkspaceRoot)
	return &st, nil
}

// RunCommand asks the gateway to run command, optionally in cwd (caller
// convention). A command that exits non-zero is not an error.
func (c *Client) RunCommand(ctx context.Context, command, cwd string) (*gateway.CommandResponse, error) {
	req := gateway.CommandRequest{Command: &command}
	if cwd != "" {
		req.Cwd = c.Paths.ToHostPath(cwd)
	}
	var resp gateway.CommandResponse
	if err := c.doRequest(ctx, http.MethodPost, "/command", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReadFile returns the content of the file at path (caller convention).
func (c *Client) ReadFile(ctx context.Context, path string) (string, error) {
	q := url.Values{"path": {c.Paths.ToHostPath(path)}}
	var resp gateway.FileReadResponse
	if err := c.doRequest(ctx, http.MethodGet, "/file/read", q, nil, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

// WriteFile writes content to path (caller convention). The returned Path is
// in caller convention.
func (c *Client) WriteFile(ctx context.Context, path, content string) (*gateway.FileWriteResponse, error) {
	hostPath := c.Paths.ToHostPath(path)
	req := gateway.FileWriteRequest{Path: &hostPath, Content: &content}
	var resp gateway.FileWriteResponse
	if err := c.doRequest(ctx, http.MethodPost, "/file/write", nil, req, &resp); err != nil {
		return nil, err
	}
	resp.Path = c.Paths.ToCallerPath(resp.Path)
	return &resp, nil
}

// List lists the directory at path (caller convention), or the gateway's
// workspace root when path is empty. Entries keep the server's order; the
// returned Path is in caller convention.
func (c *Client) List(ctx context.Context, path string) (*workspace.Listing, error) {
	var q url.Values
	if path != "" {
		q = url.Values{"path": {c.Paths.ToHostPath(path)}}
	}
	var listing workspace.Listing
	if err := c.doRequest(ctx, http.MethodGet, "/workspace/list", q, nil, &listing); err != nil {
		return nil, err
	}
	listing.Path = c.Paths.ToCallerPath(listing.Path)
	return &listing, nil
}
