package pinboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotLoggedIn reports that the provider rejected the session.
var ErrNotLoggedIn = errors.New("not logged in to the pin provider")

// Fetcher defines the provider operations the rest of Pinterval consumes.
// It is implemented by *Client and can be faked in tests.
type Fetcher interface {
	FetchBoards(ctx context.Context) ([]Board, error)
	FetchPins(ctx context.Context, query PinQuery) ([]Pin, error)
	Search(ctx context.Context, text string, limit int) ([]Pin, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the provider HTTP API and its same-origin image proxy.
type Client struct {
	baseURL   *url.URL
	proxyPath string
	http      *http.Client
	userAgent string
}

const (
	defaultAPIBase   = "http://127.0.0.1:3000"
	defaultProxyPath = "/api/image-proxy"
	defaultUserAgent = "pinterval/0.1"
	defaultTimeout   = 10 * time.Second

	// MaxLimit bounds list requests.
	MaxLimit = 500
	// MaxSearchLimit bounds free-text search requests.
	MaxSearchLimit = 120
)

// Option customizes a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithProxyPath overrides the image proxy endpoint path.
func WithProxyPath(path string) Option {
	return func(c *Client) {
		if p := strings.TrimSpace(path); p != "" {
			c.proxyPath = p
		}
	}
}

// NewClient builds a Client for the provider at apiBase.
func NewClient(apiBase string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		proxyPath: defaultProxyPath,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchBoards lists the boards of the signed-in user.
func (c *Client) FetchBoards(ctx context.Context) ([]Board, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload BoardListResponse
	if err := c.do(ctx, &url.URL{Path: "/api/me/boards"}, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// PinQuery configures pin list requests.
type PinQuery struct {
	Board string // board id, or "all"/empty for every pin
	Limit int
}

// FetchPins lists pins for a board, or all pins when the board is "all".
func (c *Client) FetchPins(ctx context.Context, query PinQuery) ([]Pin, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("limit", strconv.Itoa(clampLimit(query.Limit, MaxLimit)))

	board := strings.TrimSpace(query.Board)
	rel := &url.URL{Path: "/api/me/pins", RawQuery: values.Encode()}
	if board != "" && board != ScopeAll {
		rel = &url.URL{
			Path:     "/api/boards/" + board + "/pins",
			RawPath:  "/api/boards/" + url.PathEscape(board) + "/pins",
			RawQuery: values.Encode(),
		}
	}
	var payload PinListResponse
	if err := c.do(ctx, rel, &payload); err != nil {
		return nil, err
	}
	return Usable(payload.Items), nil
}

// Search runs a free-text pin search.
func (c *Client) Search(ctx context.Context, text string, limit int) ([]Pin, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	q := strings.TrimSpace(text)
	if q == "" {
		return nil, fmt.Errorf("search query required")
	}
	values := url.Values{}
	values.Set("q", q)
	values.Set("limit", strconv.Itoa(clampLimit(limit, MaxSearchLimit)))
	var payload PinListResponse
	if err := c.do(ctx, &url.URL{Path: "/api/search", RawQuery: values.Encode()}, &payload); err != nil {
		return nil, err
	}
	return Usable(payload.Items), nil
}

// ProxyURL returns the same-origin proxy address that re-serves original.
func (c *Client) ProxyURL(original string) string {
	values := url.Values{}
	values.Set("url", original)
	rel := &url.URL{Path: c.proxyPath, RawQuery: values.Encode()}
	return c.baseURL.ResolveReference(rel).String()
}

// LoginURL returns the provider's interactive login page.
func (c *Client) LoginURL() string {
	return c.baseURL.ResolveReference(&url.URL{Path: "/auth/login"}).String()
}

// OpenImage fetches original through the image proxy. The caller closes the body.
func (c *Client) OpenImage(ctx context.Context, original string) (io.ReadCloser, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ProxyURL(original), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("image proxy returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (c *Client) do(ctx context.Context, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrNotLoggedIn
	}
	if resp.StatusCode >= 400 {
		var body errorBody
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&body); err == nil && isAuthMessage(body.Error) {
			return ErrNotLoggedIn
		}
		return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// isAuthMessage reports whether a provider error message describes an
// authentication failure. The provider localizes some messages.
func isAuthMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range []string{"認証", "unauthorized", "authenticat", "access token", "login"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func clampLimit(limit, upper int) int {
	if limit <= 0 || limit > upper {
		return upper
	}
	return limit
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", apiBase, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
