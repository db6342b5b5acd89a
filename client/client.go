package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	classAuth "github.com/MrEthical07/classAuth"
)

// Defaults applied by New. A 401 navigates to DefaultLoginPath, or to
// DefaultEntryPath when the credential had expired.
const (
	DefaultBaseURL    = "http://localhost:4000/api"
	DefaultLoginPath  = "/login"
	DefaultEntryPath  = "/"
	DefaultStorageKey = "accessToken"
	defaultTimeout    = 30 * time.Second
)

// Config configures a Client. Zero values take the defaults above; Storage
// defaults to a MemoryStorage.
type Config struct {
	BaseURL    string
	LoginPath  string
	EntryPath  string
	StorageKey string
	Timeout    time.Duration

	Storage   Storage
	Navigator Navigator
	Logger    *slog.Logger

	// Base is the underlying RoundTripper. Defaults to http.DefaultTransport.
	Base http.RoundTripper
	// Extra interceptors run after the built-in ones.
	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor
}

// Client calls the API with the stored credential attached. Cookies set by
// the server are kept in a jar and sent back on every call.
type Client struct {
	baseURL    *url.URL
	storage    Storage
	storageKey string
	http       *http.Client
}

// StatusError is returned for non-2xx responses. Code and Message are
// filled when the body is a classAuth error response.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
	Body       []byte
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsUnauthorized reports whether err is a 401 StatusError.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}

// New returns a Client with the credential attacher and the 401 handler
// installed ahead of any caller interceptors.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = DefaultLoginPath
	}
	if cfg.EntryPath == "" {
		cfg.EntryPath = DefaultEntryPath
	}
	if cfg.StorageKey == "" {
		cfg.StorageKey = DefaultStorageKey
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Storage == nil {
		cfg.Storage = NewMemoryStorage()
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https, got %q", cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	transport := &Transport{
		Base: cfg.Base,
		Request: append([]RequestInterceptor{
			AttachCredential(cfg.Storage, cfg.StorageKey),
		}, cfg.RequestInterceptors...),
		Response: append([]ResponseInterceptor{
			ClearOnUnauthorized(cfg.Storage, cfg.StorageKey, cfg.Navigator, cfg.LoginPath, cfg.EntryPath, cfg.Logger),
		}, cfg.ResponseInterceptors...),
	}

	return &Client{
		baseURL:    base,
		storage:    cfg.Storage,
		storageKey: cfg.StorageKey,
		http: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   cfg.Timeout,
		},
	}, nil
}

// SetCredential stores token for subsequent requests, typically after a
// login call.
func (c *Client) SetCredential(token string) error {
	return c.storage.Set(c.storageKey, token)
}

// Credential returns the stored token, or "" when none is stored.
func (c *Client) Credential() (string, error) {
	return c.storage.Get(c.storageKey)
}

// ClearCredential removes the stored token.
func (c *Client) ClearCredential() error {
	return c.storage.Remove(c.storageKey)
}

// HTTPClient exposes the configured http.Client, interceptors included.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// NewRequest builds a request for path relative to the base URL. A non-nil
// body is JSON encoded.
func (c *Client) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")

	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Do sends req. Transport errors are returned unchanged. A non-2xx response
// is read, closed and returned as *StatusError.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	se := &StatusError{StatusCode: resp.StatusCode, Body: body}
	var apiErr classAuth.ErrorResponse
	if json.Unmarshal(body, &apiErr) == nil {
		se.Code = apiErr.Code
		se.Message = apiErr.Message
	}
	return nil, se
}

// DoJSON sends in as the JSON body and decodes a 2xx response into out.
// in and out may be nil.
func (c *Client) DoJSON(ctx context.Context, method, path string, in, out any) error {
	req, err := c.NewRequest(ctx, method, path, in)
	if err != nil {
		return err
	}
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Get issues a GET to path and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.DoJSON(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST of in as JSON to path and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.DoJSON(ctx, http.MethodPost, path, in, out)
}
