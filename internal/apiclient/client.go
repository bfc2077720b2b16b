package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marquee/internal/api"
)

// ErrUnavailable reports a client built without an API address.
var ErrUnavailable = errors.New("marquee API unavailable")

// Error is a non-2xx reply from the daemon.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 reply.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsUnavailable reports whether err means the daemon could not be reached.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	var opErr *net.OpError
	return errors.Is(err, ErrUnavailable) || errors.As(err, &opErr)
}

// Client talks to the daemon HTTP API.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

// Option customizes a Client.
type Option func(*Client)

// WithToken attaches an admin session token to every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New builds a client for bind, which may be a host:port or a full URL.
// An empty bind yields a nil client whose methods return ErrUnavailable.
func New(bind string, opts ...Option) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, nil
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, fmt.Errorf("parse api address: %w", err)
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	c := &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the resolved API root.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.base.String()
}

// Health fetches the public health summary.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var out api.HealthResponse
	err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, &out)
	return out, err
}

// State fetches the slideshow state.
func (c *Client) State(ctx context.Context) (api.StateResponse, error) {
	var out api.StateResponse
	err := c.do(ctx, http.MethodGet, "/api/slideshow/state", nil, nil, &out)
	return out, err
}

// Slides fetches the merged playback deck.
func (c *Client) Slides(ctx context.Context) (api.SlidesResponse, error) {
	var out api.SlidesResponse
	err := c.do(ctx, http.MethodGet, "/api/slideshow/slides", nil, nil, &out)
	return out, err
}

// Inventory fetches the video inventory with play counts.
func (c *Client) Inventory(ctx context.Context) (api.InventoryResponse, error) {
	var out api.InventoryResponse
	err := c.do(ctx, http.MethodGet, "/api/inventory", nil, nil, &out)
	return out, err
}

// ReloadInventory asks the daemon to rescan videos and reload play counts.
func (c *Client) ReloadInventory(ctx context.Context) (api.ReloadResult, error) {
	var out api.ReloadResult
	err := c.do(ctx, http.MethodPost, "/api/inventory/reload", nil, nil, &out)
	return out, err
}

// Login exchanges the admin password for a session token.
func (c *Client) Login(ctx context.Context, password string) (api.LoginResponse, error) {
	var out api.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/admin/login", nil, api.LoginRequest{Password: password}, &out)
	return out, err
}

// Logout invalidates the client's session token.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/admin/logout", nil, nil, nil)
}

// Verify reports whether the client's token is a live session.
func (c *Client) Verify(ctx context.Context) (bool, error) {
	var out api.VerifyResponse
	err := c.do(ctx, http.MethodGet, "/api/admin/verify", nil, nil, &out)
	if IsUnauthorized(err) {
		return false, nil
	}
	return out.Valid, err
}

// Submissions lists submissions, optionally filtered by status.
func (c *Client) Submissions(ctx context.Context, status string) (api.SubmissionList, error) {
	query := url.Values{}
	if status = strings.TrimSpace(status); status != "" {
		query.Set("status", status)
	}
	var out api.SubmissionList
	err := c.do(ctx, http.MethodGet, "/api/submissions", query, nil, &out)
	return out, err
}

// Submit posts a guest submission.
func (c *Client) Submit(ctx context.Context, req api.SubmissionRequest) (api.SubmitResult, error) {
	var out api.SubmitResult
	err := c.do(ctx, http.MethodPost, "/api/submissions", nil, req, &out)
	return out, err
}

// Approve approves a submission.
func (c *Client) Approve(ctx context.Context, id int64) (api.ModerationResult, error) {
	return c.moderate(ctx, http.MethodPut, id, "/approve")
}

// Reject rejects a submission.
func (c *Client) Reject(ctx context.Context, id int64) (api.ModerationResult, error) {
	return c.moderate(ctx, http.MethodPut, id, "/reject")
}

// ResetToPending moves a submission back to pending.
func (c *Client) ResetToPending(ctx context.Context, id int64) (api.ModerationResult, error) {
	return c.moderate(ctx, http.MethodPut, id, "/pending")
}

// Delete removes a submission.
func (c *Client) Delete(ctx context.Context, id int64) (api.ModerationResult, error) {
	return c.moderate(ctx, http.MethodDelete, id, "")
}

func (c *Client) moderate(ctx context.Context, method string, id int64, suffix string) (api.ModerationResult, error) {
	var out api.ModerationResult
	path := "/api/submissions/" + strconv.FormatInt(id, 10) + suffix
	err := c.do(ctx, method, path, nil, nil, &out)
	return out, err
}

// Control sends an admin playback command.
func (c *Client) Control(ctx context.Context, req api.ControlRequest) (api.StateResponse, error) {
	var out api.StateResponse
	err := c.do(ctx, http.MethodPost, "/api/slideshow/control", nil, req, &out)
	return out, err
}

// Hide hides a slide for every client.
func (c *Client) Hide(ctx context.Context, slideID string) (api.StateResponse, error) {
	var out api.StateResponse
	err := c.do(ctx, http.MethodPost, "/api/slideshow/hide/"+slideID, nil, nil, &out)
	return out, err
}

// Unhide restores a hidden slide.
func (c *Client) Unhide(ctx context.Context, slideID string) (api.StateResponse, error) {
	var out api.StateResponse
	err := c.do(ctx, http.MethodPost, "/api/slideshow/unhide/"+slideID, nil, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c == nil {
		return ErrUnavailable
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	endpoint := c.base.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var payload api.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &Error{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
