// Package storage uploads assets to a Firebase-Storage-compatible REST bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/medstore/internal/domain/asset"
)

// Uploader performs the two-step upload: store the object, then read its
// metadata to obtain a download token for the public URL.
type Uploader struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// Config holds the storage bucket settings.
type Config struct {
	// BaseURL is the bucket endpoint, e.g.
	// https://firebasestorage.googleapis.com/v0/b/<bucket>
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewUploader creates a storage uploader.
func NewUploader(cfg *Config) (*Uploader, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("storage: base url is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		logger:  logger,
	}, nil
}

// objectMeta is the subset of object metadata the uploader reads.
type objectMeta struct {
	Name           string `json:"name"`
	Bucket         string `json:"bucket"`
	ContentType    string `json:"contentType"`
	DownloadTokens string `json:"downloadTokens"`
}

// Upload implements asset.Uploader.
func (u *Uploader) Upload(ctx context.Context, data []byte, folder, name string) (string, error) {
	key, err := asset.ObjectKey(folder, name)
	if err != nil {
		return "", err
	}
	escaped := url.PathEscape(key)

	q := url.Values{}
	q.Set("uploadType", "media")
	q.Set("name", key)
	uploadURL := u.baseURL + "/o?" + q.Encode()

	if _, err := u.do(ctx, http.MethodPost, uploadURL, data, http.DetectContentType(data)); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	meta, err := u.do(ctx, http.MethodGet, u.baseURL+"/o/"+escaped, nil, "")
	if err != nil {
		return "", fmt.Errorf("read metadata %s: %w", key, err)
	}
	token, _, _ := strings.Cut(meta.DownloadTokens, ",")
	if token == "" {
		return "", fmt.Errorf("object %s has no download token: %w", key, asset.ErrUploadFailed)
	}

	u.logger.Debug("asset uploaded",
		zap.String("key", key),
		zap.Int("bytes", len(data)),
		zap.String("content_type", meta.ContentType),
	)
	return u.baseURL + "/o/" + escaped + "?alt=media&token=" + url.QueryEscape(token), nil
}

// HealthCheck reads the bucket metadata.
func (u *Uploader) HealthCheck(ctx context.Context) error {
	if _, err := u.do(ctx, http.MethodGet, u.baseURL, nil, ""); err != nil {
		return fmt.Errorf("storage bucket: %w", err)
	}
	return nil
}

func (u *Uploader) do(ctx context.Context, method, target string, body []byte, contentType string) (objectMeta, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return objectMeta{}, fmt.Errorf("create request: %w: %w", err, asset.ErrUploadFailed)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return objectMeta{}, fmt.Errorf("perform request: %w: %w", err, asset.ErrUploadFailed)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return objectMeta{}, fmt.Errorf("read response: %w: %w", err, asset.ErrUploadFailed)
	}
	if resp.StatusCode >= 400 {
		return objectMeta{}, fmt.Errorf("status %d: %s: %w", resp.StatusCode, extractMessage(raw), asset.ErrUploadFailed)
	}

	var meta objectMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return objectMeta{}, fmt.Errorf("decode metadata: %w: %w", err, asset.ErrUploadFailed)
	}
	return meta, nil
}

// extractMessage pulls error.message out of a storage error body.
func extractMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return string(body)
}
