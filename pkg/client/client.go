// Package client is the HTTP collaborator used for listing pages, video
// pages and the playJson API.
package client

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/ytget/letv/errs"
	"github.com/ytget/letv/internal/logger"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRetries = 3

	userAgentValue    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	acceptEncoding    = "gzip, deflate, br"
	initialBackoff    = 200 * time.Millisecond
	maxBackoff        = 3 * time.Second
	successMinCode    = http.StatusOK                  // 200
	clientErrMinCode  = http.StatusBadRequest          // 400
	retryableMinCode  = http.StatusInternalServerError // 500
	maxBodyBytes      = 32 << 20
	errorSnippetBytes = 256
)

// defaultTransport is a tuned HTTP transport reused across clients.
// Compression is negotiated by hand so brotli can be offered as well.
var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ResponseHeaderTimeout: 10 * time.Second,
	ForceAttemptHTTP2:     true,
	DisableCompression:    true,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

// Fetcher retrieves pages and JSON documents.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	FetchJSON(ctx context.Context, url string, v any) error
}

// Config holds optional client parameters. Zero values use defaults.
type Config struct {
	Timeout   time.Duration
	Retries   int
	UserAgent string
	ProxyURL  string
}

// Client wraps http.Client with retry/backoff, default headers and
// response decompression.
type Client struct {
	HTTPClient *http.Client
	Retries    int
	UserAgent  string
}

var _ Fetcher = (*Client)(nil)

// New creates a new Client with a tuned Transport, default timeout, and retries.
func New() *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: defaultTransport,
		},
		Retries:   defaultRetries,
		UserAgent: userAgentValue,
	}
}

// NewWith creates a new client with provided config. Zero values use defaults.
// An unparseable ProxyURL is reported rather than silently ignored.
func NewWith(cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = defaultRetries
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = userAgentValue
	}

	tr := defaultTransport.Clone()
	if cfg.ProxyURL != "" {
		proxyFunc, err := proxyFromURLString(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("proxy url: %w", err)
		}
		tr.Proxy = proxyFunc
	}

	return &Client{
		HTTPClient: &http.Client{Timeout: timeout, Transport: tr},
		Retries:    retries,
		UserAgent:  ua,
	}, nil
}

// Get performs a GET request with a retry policy for transient errors
// (HTTP 5xx or network failures). 4xx responses are returned at once.
// The caller owns the returned body.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	log := logger.WithComponent(logger.ComponentClient)

	ua := c.UserAgent
	if ua == "" {
		ua = userAgentValue
	}
	retries := c.Retries
	if retries < 1 {
		retries = 1
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	var (
		resp    *http.Response
		err     error
		backoff = initialBackoff
	)
	for attempt := 0; attempt < retries; attempt++ {
		req, rerr := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if rerr != nil {
			return nil, rerr
		}
		req.Header.Set("User-Agent", ua)
		req.Header.Set("Accept", "text/html,application/json;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.6")
		req.Header.Set("Accept-Encoding", acceptEncoding)

		resp, err = httpClient.Do(req)
		if err == nil && resp.StatusCode >= successMinCode && resp.StatusCode < retryableMinCode {
			return resp, nil
		}
		if err == nil {
			log.Debug("retryable status", map[string]any{"url": rawURL, "status": resp.StatusCode, "attempt": attempt + 1})
		} else {
			log.Debug("request failed", map[string]any{"url": rawURL, "error": err.Error(), "attempt": attempt + 1})
		}
		if attempt == retries-1 {
			break
		}
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
			resp = nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return resp, err
}

// Fetch downloads rawURL and returns the decoded body. Any failure is
// reported as *errs.NetworkError.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &errs.NetworkError{URL: rawURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := readBody(resp)
	if err != nil {
		return nil, &errs.NetworkError{URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode >= clientErrMinCode {
		snippet := body
		if len(snippet) > errorSnippetBytes {
			snippet = snippet[:errorSnippetBytes]
		}
		logger.WithComponent(logger.ComponentClient).Warn("unexpected status", map[string]any{
			"url":    rawURL,
			"status": resp.StatusCode,
			"body":   string(bytes.TrimSpace(snippet)),
		})
		return nil, &errs.NetworkError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	return body, nil
}

// FetchJSON downloads rawURL and decodes it into v.
func (c *Client) FetchJSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.Fetch(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// readBody reads a response body, undoing any Content-Encoding.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fr := flate.NewReader(resp.Body)
		defer fr.Close()
		reader = fr
	}
	body, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// proxyFromURLString parses a proxy URL and returns a Proxy function.
func proxyFromURLString(raw string) (func(*http.Request) (*url.URL, error), error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("proxy url %q needs a scheme and host", raw)
	}
	return http.ProxyURL(u), nil
}
