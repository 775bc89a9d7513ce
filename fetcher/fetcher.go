// Package fetcher issues the outbound HTTP requests of the gallery: the
// image-search call and the download of the photo it points at.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/aluiziolira/go-cat-gallery/config"
	"github.com/aluiziolira/go-cat-gallery/models"
	"github.com/aluiziolira/go-cat-gallery/parser"
	"github.com/gocolly/colly/v2"
)

const (
	ctxStatus = "status"
	ctxBody   = "body"
	ctxStart  = "start"
)

// Client wraps a synchronous colly collector for the image endpoint.
type Client struct {
	cfg       *config.Config
	collector *colly.Collector
}

// NewClient builds a client configured from cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	parsed, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("endpoint must include a host")
	}

	// colly truncates at MaxBodySize without an error, so read one byte past
	// the limit to tell an oversized body from one that fits exactly.
	bodyLimit := 0
	if cfg.MaxBodyBytes > 0 {
		bodyLimit = cfg.MaxBodyBytes + 1
	}
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.ParseHTTPErrorResponse(),
		colly.MaxBodySize(bodyLimit),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	c := &Client{
		cfg:       cfg,
		collector: collector,
	}
	c.configureHandlers()
	return c, nil
}

// WithTransport swaps the HTTP transport, e.g. for a mock in tests.
func (c *Client) WithTransport(rt http.RoundTripper) {
	c.collector.WithTransport(rt)
}

// Search issues one GET against the endpoint and decodes the image records.
func (c *Client) Search(ctx context.Context) ([]models.CatImage, error) {
	hdr := http.Header{}
	hdr.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		hdr.Set("x-api-key", c.cfg.APIKey)
	}

	body, err := c.get(ctx, c.cfg.Endpoint, hdr)
	if err != nil {
		return nil, err
	}
	return parser.ParseImages(body)
}

// Download fetches the raw bytes behind an image URL.
func (c *Client) Download(ctx context.Context, imageURL string) ([]byte, error) {
	return c.get(ctx, imageURL, http.Header{})
}

func (c *Client) get(ctx context.Context, target string, hdr http.Header) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reqCtx := colly.NewContext()
	if err := c.collector.Request(http.MethodGet, target, nil, reqCtx, hdr); err != nil {
		classified := classifyTransportError(err)
		slog.Debug("request failed",
			slog.String("url", target),
			slog.Any("error", classified),
		)
		return nil, classified
	}

	status, _ := reqCtx.GetAny(ctxStatus).(int)
	if err := checkStatus(status); err != nil {
		return nil, err
	}
	body, _ := reqCtx.GetAny(ctxBody).([]byte)
	if limit := c.cfg.MaxBodyBytes; limit > 0 && len(body) > limit {
		slog.Warn("response body over limit",
			slog.String("url", target),
			slog.Int("limit", limit),
		)
		return nil, ErrBodyTooLarge{Limit: limit}
	}
	return body, nil
}

func (c *Client) configureHandlers() {
	c.collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put(ctxStart, time.Now())
		slog.Debug("request started", slog.String("url", r.URL.String()))
	})

	c.collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(ctxStatus, r.StatusCode)
		r.Ctx.Put(ctxBody, r.Body)

		attrs := []any{
			slog.Int("status", r.StatusCode),
			slog.String("url", r.Request.URL.String()),
			slog.Int("bytes", len(r.Body)),
		}
		if start, ok := r.Ctx.GetAny(ctxStart).(time.Time); ok {
			attrs = append(attrs, slog.Duration("elapsed", time.Since(start)))
		}
		if r.StatusCode >= http.StatusBadRequest {
			slog.Warn("non-2xx response", attrs...)
			return
		}
		slog.Debug("response received", attrs...)
	})
}
