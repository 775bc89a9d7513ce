package fetcher

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"testing"

	"github.com/aluiziolira/go-cat-gallery/config"
	"github.com/aluiziolira/go-cat-gallery/parser"
	"github.com/jarcoal/httpmock"
)

const testEndpoint = "http://example.test/v1/images/search"

func newTestClient(t *testing.T) (*Client, *httpmock.MockTransport) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Endpoint = testEndpoint

	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	transport := httpmock.NewMockTransport()
	c.WithTransport(transport)
	return c, transport
}

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "context timeout", err: context.DeadlineExceeded, expected: "timeout"},
		{name: "net timeout", err: &net.DNSError{IsTimeout: true}, expected: "timeout"},
		{name: "connection refused", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, expected: "connection"},
		{name: "dns failure", err: &net.DNSError{Err: "no such host", Name: "example.test"}, expected: "connection"},
		{name: "other", err: errors.New("some other error"), expected: "connection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyTransportError(tt.err)
			label := "other"
			var timeout ErrTimeout
			var conn ErrConnection
			switch {
			case errors.As(got, &timeout):
				label = "timeout"
			case errors.As(got, &conn):
				label = "connection"
			}
			if label != tt.expected {
				t.Fatalf("classifyTransportError(%v) = %q, want %q", tt.err, label, tt.expected)
			}
			if !IsNetwork(got) {
				t.Fatalf("IsNetwork(%v) = false, want true", got)
			}
			if !errors.Is(got, tt.err) {
				t.Fatalf("classified error should wrap the cause")
			}
		})
	}

	if classifyTransportError(nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}

func TestCheckStatus(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNoContent} {
		if err := checkStatus(status); err != nil {
			t.Fatalf("checkStatus(%d) = %v, want nil", status, err)
		}
	}
	for _, status := range []int{0, http.StatusNotModified, http.StatusNotFound, http.StatusTooManyRequests, http.StatusInternalServerError} {
		var httpErr ErrHTTPStatus
		if err := checkStatus(status); !errors.As(err, &httpErr) || httpErr.Status != status {
			t.Fatalf("checkStatus(%d) = %v, want ErrHTTPStatus", status, err)
		}
	}
}

func TestSearchSuccess(t *testing.T) {
	c, transport := newTestClient(t)
	transport.RegisterResponder("GET", testEndpoint,
		httpmock.NewStringResponder(200, `[{"id":"abc","url":"https://example/cat1.jpg","width":640,"height":480}]`))

	images, err := c.Search(context.Background())
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(images) != 1 || images[0].URL != "https://example/cat1.jpg" {
		t.Fatalf("unexpected images %+v", images)
	}

	// revisiting the same endpoint must issue a fresh request
	if _, err := c.Search(context.Background()); err != nil {
		t.Fatalf("second search: %v", err)
	}
	if got := transport.GetTotalCallCount(); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestSearchSendsAPIKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Endpoint = testEndpoint
	cfg.APIKey = "secret"
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	transport := httpmock.NewMockTransport()
	c.WithTransport(transport)

	var gotKey, gotAgent string
	transport.RegisterResponder("GET", testEndpoint, func(req *http.Request) (*http.Response, error) {
		gotKey = req.Header.Get("x-api-key")
		gotAgent = req.Header.Get("User-Agent")
		return httpmock.NewStringResponse(200, `[]`), nil
	})

	if _, err := c.Search(context.Background()); err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotKey != "secret" {
		t.Fatalf("x-api-key = %q, want secret", gotKey)
	}
	if gotAgent != cfg.UserAgent {
		t.Fatalf("user agent = %q, want %q", gotAgent, cfg.UserAgent)
	}
}

func TestSearchHTTPStatus(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusTooManyRequests, http.StatusInternalServerError} {
		c, transport := newTestClient(t)
		transport.RegisterResponder("GET", testEndpoint, httpmock.NewStringResponder(status, `{"message":"nope"}`))

		_, err := c.Search(context.Background())
		var httpErr ErrHTTPStatus
		if !errors.As(err, &httpErr) {
			t.Fatalf("status %d: error = %v, want ErrHTTPStatus", status, err)
		}
		if httpErr.Status != status {
			t.Fatalf("status = %d, want %d", httpErr.Status, status)
		}
		if IsNetwork(err) {
			t.Fatalf("http status must not be classified as network")
		}
	}
}

func TestSearchTransportFailure(t *testing.T) {
	c, transport := newTestClient(t)
	cause := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	transport.RegisterResponder("GET", testEndpoint, httpmock.NewErrorResponder(cause))

	_, err := c.Search(context.Background())
	var conn ErrConnection
	if !errors.As(err, &conn) {
		t.Fatalf("error = %v, want ErrConnection", err)
	}
}

func TestSearchTimeout(t *testing.T) {
	c, transport := newTestClient(t)
	transport.RegisterResponder("GET", testEndpoint, httpmock.NewErrorResponder(&net.DNSError{IsTimeout: true}))

	_, err := c.Search(context.Background())
	var timeout ErrTimeout
	if !errors.As(err, &timeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
}

func TestSearchMalformedBody(t *testing.T) {
	c, transport := newTestClient(t)
	transport.RegisterResponder("GET", testEndpoint, httpmock.NewStringResponder(200, `<html>oops</html>`))

	_, err := c.Search(context.Background())
	var malformed parser.ErrMalformedBody
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want ErrMalformedBody", err)
	}
}

func TestSearchCanceledContext(t *testing.T) {
	c, transport := newTestClient(t)
	transport.RegisterResponder("GET", testEndpoint, httpmock.NewStringResponder(200, `[]`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Search(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if got := transport.GetTotalCallCount(); got != 0 {
		t.Fatalf("calls = %d, want 0", got)
	}
}

func TestDownload(t *testing.T) {
	c, transport := newTestClient(t)
	payload := []byte{0x89, 'P', 'N', 'G'}
	transport.RegisterResponder("GET", "https://cdn.example.test/cat1.png", httpmock.NewBytesResponder(200, payload))
	transport.RegisterResponder("GET", "https://cdn.example.test/gone.png", httpmock.NewStringResponder(404, "missing"))

	got, err := c.Download(context.Background(), "https://cdn.example.test/cat1.png")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("body = %v, want %v", got, payload)
	}

	_, err = c.Download(context.Background(), "https://cdn.example.test/gone.png")
	var httpErr ErrHTTPStatus
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusNotFound {
		t.Fatalf("error = %v, want 404 ErrHTTPStatus", err)
	}
}

func TestDownloadBodyLimit(t *testing.T) {
	const large = 12 << 20
	payload := bytes.Repeat([]byte{0xAB}, large)

	tests := []struct {
		name     string
		limit    int
		wantErr  bool
		wantSize int
	}{
		{name: "over limit", limit: 10 << 20, wantErr: true},
		{name: "exactly at limit", limit: large, wantSize: large},
		{name: "unlimited", limit: 0, wantSize: large},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Endpoint = testEndpoint
			cfg.MaxBodyBytes = tt.limit
			c, err := NewClient(cfg)
			if err != nil {
				t.Fatalf("new client: %v", err)
			}
			transport := httpmock.NewMockTransport()
			c.WithTransport(transport)
			transport.RegisterResponder("GET", "https://cdn.example.test/big.gif", httpmock.NewBytesResponder(200, payload))

			got, err := c.Download(context.Background(), "https://cdn.example.test/big.gif")
			if tt.wantErr {
				var tooLarge ErrBodyTooLarge
				if !errors.As(err, &tooLarge) || tooLarge.Limit != tt.limit {
					t.Fatalf("error = %v, want ErrBodyTooLarge{%d}", err, tt.limit)
				}
				if got != nil {
					t.Fatalf("oversized body should not be returned, got %d bytes", len(got))
				}
				return
			}
			if err != nil {
				t.Fatalf("download: %v", err)
			}
			if len(got) != tt.wantSize {
				t.Fatalf("body length = %d, want %d", len(got), tt.wantSize)
			}
		})
	}
}

func TestNewClientRejectsHostlessEndpoint(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Endpoint = "/v1/images/search"
	if _, err := NewClient(cfg); err == nil {
		t.Fatalf("expected error for endpoint without host")
	}
}
