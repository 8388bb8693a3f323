package tool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"
)

// HTTPToolOption configures tools that call out over HTTP.
type HTTPToolOption func(*httpToolConfig)

type httpToolConfig struct {
	client          *http.Client
	baseURL         string
	allowedHosts    []string
	blockedHosts    []string
	maxResponseSize int64
	timeout         time.Duration
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) HTTPToolOption {
	return func(cfg *httpToolConfig) {
		cfg.client = c
	}
}

// WithBaseURL overrides the endpoint the tool calls.
func WithBaseURL(u string) HTTPToolOption {
	return func(cfg *httpToolConfig) {
		cfg.baseURL = u
	}
}

// WithAllowedHosts restricts requests to specific hosts and their subdomains.
func WithAllowedHosts(hosts ...string) HTTPToolOption {
	return func(cfg *httpToolConfig) {
		cfg.allowedHosts = hosts
	}
}

// WithBlockedHosts blocks requests to specific hosts and their subdomains.
func WithBlockedHosts(hosts ...string) HTTPToolOption {
	return func(cfg *httpToolConfig) {
		cfg.blockedHosts = hosts
	}
}

// WithMaxResponseSize sets the maximum response body size.
// Default is 1MB.
func WithMaxResponseSize(bytes int64) HTTPToolOption {
	return func(cfg *httpToolConfig) {
		cfg.maxResponseSize = bytes
	}
}

// WithHTTPTimeout sets the request timeout.
// Default is 30 seconds.
func WithHTTPTimeout(d time.Duration) HTTPToolOption {
	return func(cfg *httpToolConfig) {
		cfg.timeout = d
	}
}

func applyHTTPOpts(baseURL string, opts []HTTPToolOption) *httpToolConfig {
	cfg := &httpToolConfig{
		baseURL:         baseURL,
		maxResponseSize: 1024 * 1024,
		timeout:         30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.client == nil {
		cfg.client = &http.Client{Timeout: cfg.timeout}
	}
	return cfg
}

func matchesHost(host, pattern string) bool {
	return host == pattern || strings.HasSuffix(host, "."+pattern)
}

func (c *httpToolConfig) checkHost(u *url.URL) error {
	host := u.Hostname()

	if lo.ContainsBy(c.blockedHosts, func(b string) bool { return matchesHost(host, b) }) {
		return fmt.Errorf("host %q is blocked", host)
	}
	if len(c.allowedHosts) > 0 && !lo.ContainsBy(c.allowedHosts, func(a string) bool { return matchesHost(host, a) }) {
		return fmt.Errorf("host %q is not in allowed list", host)
	}
	return nil
}

// get issues a GET against the base URL with query and returns the body,
// truncated to the configured maximum size. Non-2xx responses are errors.
func (c *httpToolConfig) get(ctx context.Context, query url.Values) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if err := c.checkHost(u); err != nil {
		return nil, err
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned %s", u.Host, resp.Status)
	}
	return body, nil
}
