// Package firestore is a REST client for a Firestore-shaped document store.
// Every call returns a result.Result; transport errors never escape as-is.
package firestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/medstore/internal/domain/document"
	"github.com/kailas-cloud/medstore/internal/domain/document/patch"
	"github.com/kailas-cloud/medstore/internal/domain/query"
	"github.com/kailas-cloud/medstore/internal/metrics"
	"github.com/kailas-cloud/medstore/internal/result"
)

// Client talks to the store's documents endpoint. It holds no per-call state
// and is safe for concurrent use when its *http.Client is.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Config holds the store connection settings.
type Config struct {
	// BaseURL is the documents root, e.g.
	// https://firestore.googleapis.com/v1/projects/<p>/databases/(default)/documents
	BaseURL string
	// HTTPClient carries timeouts and any retry policy. Defaults to http.DefaultClient.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient creates a store client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("firestore: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("firestore: invalid base url: %w", err)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		logger:  logger,
	}, nil
}

// Create adds a document with a store-generated id to collection.
func (c *Client) Create(ctx context.Context, collection string, w document.Write) result.Result[document.Read] {
	return call[document.Read](ctx, c, "create", http.MethodPost, c.collectionURL(collection), w)
}

// Get fetches one document.
func (c *Client) Get(ctx context.Context, collection, id string) result.Result[document.Read] {
	return call[document.Read](ctx, c, "get", http.MethodGet, c.documentURL(collection, id), nil)
}

// List fetches one page of a collection. An empty pageToken starts from the beginning.
func (c *Client) List(ctx context.Context, collection, pageToken string) result.Result[document.List] {
	target := c.collectionURL(collection)
	if pageToken != "" {
		target += "?" + url.Values{"pageToken": {pageToken}}.Encode()
	}
	return call[document.List](ctx, c, "list", http.MethodGet, target, nil)
}

// Patch updates exactly the fields named by p's mask.
func (c *Client) Patch(ctx context.Context, collection, id string, p patch.Patch) result.Result[document.Read] {
	target := c.documentURL(collection, id) + "?" + p.Query().Encode()
	return call[document.Read](ctx, c, "patch", http.MethodPatch, target, p.Write())
}

// RunQuery executes a structured query. The response may contain elements
// without documents; see document.Matched.
func (c *Client) RunQuery(ctx context.Context, q query.Request) result.Result[[]document.Match] {
	return call[[]document.Match](ctx, c, "query", http.MethodPost, c.baseURL+":runQuery", q)
}

// Delete removes one document.
func (c *Client) Delete(ctx context.Context, collection, id string) result.Result[struct{}] {
	return call[struct{}](ctx, c, "delete", http.MethodDelete, c.documentURL(collection, id), nil)
}

// Ping checks that the store answers by listing collection ids.
func (c *Client) Ping(ctx context.Context) error {
	type listIDs struct {
		PageSize int `json:"pageSize"`
	}
	r := call[map[string]any](ctx, c, "ping", http.MethodPost, c.baseURL+":listCollectionIds", listIDs{PageSize: 1})
	if _, err := r.Unpack(); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}

func (c *Client) collectionURL(collection string) string {
	return c.baseURL + "/" + url.PathEscape(collection)
}

func (c *Client) documentURL(collection, id string) string {
	return c.collectionURL(collection) + "/" + url.PathEscape(id)
}

// call performs one HTTP exchange through result.Wrap and records metrics.
// Failures to build the request are client bugs and classified Unknown.
func call[T any](ctx context.Context, c *Client, op, method, target string, body any) result.Result[T] {
	start := time.Now()

	req, err := newRequest(ctx, method, target, body)
	if err != nil {
		return result.Fail[T](result.NewFailure(op, result.Unknown, err))
	}

	res := result.Wrap(op, func() (*http.Response, error) {
		return c.http.Do(req)
	}, func(b []byte, into *T) error {
		return json.Unmarshal(b, into)
	})

	status := "ok"
	if !res.IsOk() {
		status = res.Reason().String()
	}
	metrics.StoreRequestsTotal.WithLabelValues(op, status).Inc()
	metrics.StoreRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if res.IsOk() {
		c.logger.Debug("store call",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("url", target),
			zap.Duration("latency", time.Since(start)),
		)
	} else {
		c.logger.Warn("store call failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("url", target),
			zap.String("reason", res.Reason().String()),
			zap.Error(res.Failure()),
		)
	}
	return res
}

func newRequest(ctx context.Context, method, target string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
