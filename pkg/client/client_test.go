package client

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/ytget/letv/errs"
)

func TestNew(t *testing.T) {
	client := New()

	if client.HTTPClient == nil {
		t.Fatal("Expected HTTPClient to be initialized")
	}
	if client.HTTPClient.Timeout != defaultTimeout {
		t.Errorf("Expected timeout %v, got %v", defaultTimeout, client.HTTPClient.Timeout)
	}
	if client.Retries != defaultRetries {
		t.Errorf("Expected retries %d, got %d", defaultRetries, client.Retries)
	}
	if client.UserAgent != userAgentValue {
		t.Errorf("Expected user agent '%s', got '%s'", userAgentValue, client.UserAgent)
	}
}

func TestNewWith(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		wantTimeout time.Duration
		wantRetries int
		wantUA      string
		wantErr     bool
	}{
		{
			name:        "custom values",
			cfg:         Config{Timeout: 10 * time.Second, Retries: 5, UserAgent: "Custom Agent", ProxyURL: "http://proxy.example.com:8080"},
			wantTimeout: 10 * time.Second,
			wantRetries: 5,
			wantUA:      "Custom Agent",
		},
		{
			name:        "zero values use defaults",
			cfg:         Config{},
			wantTimeout: defaultTimeout,
			wantRetries: defaultRetries,
			wantUA:      userAgentValue,
		},
		{
			name:        "negative values use defaults",
			cfg:         Config{Timeout: -time.Second, Retries: -1},
			wantTimeout: defaultTimeout,
			wantRetries: defaultRetries,
			wantUA:      userAgentValue,
		},
		{
			name:    "invalid proxy",
			cfg:     Config{ProxyURL: "invalid-proxy-url"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewWith(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if client.HTTPClient.Timeout != tt.wantTimeout {
				t.Errorf("Expected timeout %v, got %v", tt.wantTimeout, client.HTTPClient.Timeout)
			}
			if client.Retries != tt.wantRetries {
				t.Errorf("Expected retries %d, got %d", tt.wantRetries, client.Retries)
			}
			if client.UserAgent != tt.wantUA {
				t.Errorf("Expected user agent '%s', got '%s'", tt.wantUA, client.UserAgent)
			}
		})
	}
}

func TestFetch_SetsHeaders(t *testing.T) {
	var gotUA, gotEncoding string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotEncoding = r.Header.Get("Accept-Encoding")
		_, _ = w.Write([]byte("plain body"))
	}))
	defer server.Close()

	client := New()
	client.UserAgent = "letv-test"
	body, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(body) != "plain body" {
		t.Errorf("Expected 'plain body', got %q", body)
	}
	if gotUA != "letv-test" {
		t.Errorf("Expected User-Agent letv-test, got %q", gotUA)
	}
	if gotEncoding != acceptEncoding {
		t.Errorf("Expected Accept-Encoding %q, got %q", acceptEncoding, gotEncoding)
	}
}

func TestFetch_Decompression(t *testing.T) {
	const payload = `{"playstatus":{"status":1}}`

	var gzBuf bytes.Buffer
	gz := gzip.NewWriter(&gzBuf)
	_, _ = gz.Write([]byte(payload))
	_ = gz.Close()

	var brBuf bytes.Buffer
	br := brotli.NewWriter(&brBuf)
	_, _ = br.Write([]byte(payload))
	_ = br.Close()

	tests := []struct {
		name     string
		encoding string
		body     []byte
	}{
		{name: "gzip", encoding: "gzip", body: gzBuf.Bytes()},
		{name: "brotli", encoding: "br", body: brBuf.Bytes()},
		{name: "identity", encoding: "", body: []byte(payload)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.encoding != "" {
					w.Header().Set("Content-Encoding", tt.encoding)
				}
				_, _ = w.Write(tt.body)
			}))
			defer server.Close()

			var out struct {
				PlayStatus struct {
					Status int `json:"status"`
				} `json:"playstatus"`
			}
			if err := New().FetchJSON(context.Background(), server.URL, &out); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if out.PlayStatus.Status != 1 {
				t.Errorf("Expected status 1, got %d", out.PlayStatus.Status)
			}
		})
	}
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	body, err := New().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("Expected 'ok', got %q", body)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Expected 3 calls, got %d", got)
	}
}

func TestFetch_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := New().Fetch(context.Background(), server.URL)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	var ne *errs.NetworkError
	if !errors.As(err, &ne) || ne.StatusCode != http.StatusNotFound {
		t.Errorf("Expected NetworkError with 404, got %+v", ne)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 call, got %d", got)
	}
}

func TestFetch_ExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New()
	client.Retries = 2
	_, err := client.Fetch(context.Background(), server.URL)
	if !errors.Is(err, errs.ErrNetwork) {
		t.Fatalf("Expected ErrNetwork, got %v", err)
	}
	if errors.Is(err, errs.ErrNotFound) {
		t.Error("503 should not be reported as not found")
	}
}

func TestFetch_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	client := New()
	client.Retries = 1
	_, err := client.Fetch(context.Background(), addr)
	var ne *errs.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("Expected NetworkError, got %v", err)
	}
	if ne.StatusCode != 0 || ne.Err == nil {
		t.Errorf("Expected transport error without status, got %+v", ne)
	}
}

func TestFetch_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Fetch(ctx, server.URL)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestFetchJSON_InvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	var v map[string]any
	err := New().FetchJSON(context.Background(), server.URL, &v)
	if err == nil {
		t.Fatal("Expected decode error, got nil")
	}
	if errs.IsExpected(err) {
		t.Errorf("Malformed JSON is an internal error, got expected-class %v", err)
	}
}
