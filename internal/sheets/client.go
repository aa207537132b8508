// Package sheets reads rows from published Google Sheets through the gviz query endpoint.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"pharmadash/internal/kv"
)

const DefaultBaseURL = "https://docs.google.com"

var ErrMalformed = errors.New("sheets: malformed response")

// TransportError reports a network failure or a non-2xx answer from the sheets endpoint.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("sheets: upstream returned %d", e.StatusCode)
	}
	return fmt.Sprintf("sheets: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Fetcher fetches the rows of a sheet range.
type Fetcher interface {
	Fetch(ctx context.Context, sheetID, sheetName, rng string) ([]Row, error)
}

// Client talks to the gviz endpoint. Requests are never retried.
type Client struct {
	http     *resty.Client
	cache    kv.KV
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewClient creates a sheets client. cache may be nil or cacheTTL zero to disable caching.
func NewClient(baseURL string, timeout time.Duration, cache kv.KV, cacheTTL time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetHeader("Accept", "application/json, text/javascript")

	return &Client{
		http:     httpClient,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Cache drops cached rows so the next fetch goes upstream.
type Cache interface {
	Invalidate(ctx context.Context, sheetID string) (int, error)
}

var (
	_ Fetcher = (*Client)(nil)
	_ Cache   = (*Client)(nil)
)

func cachePrefix(sheetID string) string { return "sheets:" + sheetID + ":" }

func cacheKey(sheetID, sheetName, rng string) string {
	return cachePrefix(sheetID) + sheetName + ":" + rng
}

// Fetch returns the rows of sheetName (empty for the first sheet) limited to rng (e.g. "A1:F50", may be empty).
func (c *Client) Fetch(ctx context.Context, sheetID, sheetName, rng string) ([]Row, error) {
	if sheetID == "" {
		return nil, errors.New("sheets: sheet id is required")
	}

	key := cacheKey(sheetID, sheetName, rng)
	if rows, ok := c.cached(ctx, key); ok {
		return rows, nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", sheetID).
		SetQueryParams(map[string]string{
			"tqx":   "out:json",
			"sheet": sheetName,
			"range": rng,
		}).
		Get("/spreadsheets/d/{id}/gviz/tq")
	if err != nil {
		c.logger.Warn("sheets request failed", zap.String("sheet_id", sheetID), zap.Error(err))
		return nil, &TransportError{Err: err}
	}
	if resp.IsError() {
		c.logger.Warn("sheets upstream error",
			zap.String("sheet_id", sheetID),
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, &TransportError{StatusCode: resp.StatusCode()}
	}

	rows, err := parse(resp.Body())
	if err != nil {
		c.logger.Warn("sheets response rejected", zap.String("sheet_id", sheetID), zap.Error(err))
		return nil, err
	}

	c.store(ctx, key, rows)
	c.logger.Debug("sheet fetched", zap.String("sheet_id", sheetID), zap.Int("rows", len(rows)))
	return rows, nil
}

// Invalidate removes every cached sheet and range of sheetID and returns how many entries were dropped.
func (c *Client) Invalidate(ctx context.Context, sheetID string) (int, error) {
	if sheetID == "" {
		return 0, errors.New("sheets: sheet id is required")
	}
	if c.cache == nil {
		return 0, nil
	}
	keys, err := c.cache.ScanKeys(ctx, cachePrefix(sheetID))
	if err != nil {
		return 0, fmt.Errorf("scan sheets cache: %w", err)
	}
	for _, key := range keys {
		if err := c.cache.Delete(ctx, key); err != nil {
			return 0, fmt.Errorf("drop sheets cache entry: %w", err)
		}
	}
	c.logger.Info("sheets cache invalidated", zap.String("sheet_id", sheetID), zap.Int("entries", len(keys)))
	return len(keys), nil
}

func (c *Client) cached(ctx context.Context, key string) ([]Row, bool) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrMiss) {
			c.logger.Warn("sheets cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var rows []Row
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, false
	}
	return rows, true
}

func (c *Client) store(ctx context.Context, key string, rows []Row) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, string(raw), c.cacheTTL); err != nil {
		c.logger.Warn("sheets cache write failed", zap.Error(err))
	}
}
