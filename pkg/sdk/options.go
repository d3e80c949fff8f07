package medstore

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	uploader   Uploader
	now        func() time.Time

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithBaseURL sets the store's documents root, e.g.
// https://firestore.googleapis.com/v1/projects/<p>/databases/(default)/documents.
// Required.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = url
	})
}

// WithHTTPClient sets the client used for store calls. Timeouts and retry
// policies live here; the SDK itself never retries. Defaults to
// http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithUploader sets the asset backend. Without one, writes that carry asset
// bytes fail at the upload stage with ErrUploadFailed.
func WithUploader(u Uploader) Option {
	return optionFunc(func(c *clientConfig) {
		c.uploader = u
	})
}

// WithClock overrides the source of createdAt and updatedAt. A nil clock is
// ignored.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(c *clientConfig) {
		if now != nil {
			c.now = now
		}
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
