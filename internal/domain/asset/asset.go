// Package asset defines the binary asset upload capability the write
// orchestrator depends on.
package asset

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrUploadFailed marks any upload adapter failure.
var ErrUploadFailed = errors.New("asset upload failed")

// Uploader stores bytes under folder/name and returns a publicly resolvable
// URL. Uploading the same folder/name again overwrites the object.
type Uploader interface {
	Upload(ctx context.Context, data []byte, folder, name string) (string, error)
}

// UploaderFunc adapts a function to Uploader.
type UploaderFunc func(ctx context.Context, data []byte, folder, name string) (string, error)

// Upload implements Uploader.
func (f UploaderFunc) Upload(ctx context.Context, data []byte, folder, name string) (string, error) {
	return f(ctx, data, folder, name)
}

// Disabled rejects every upload. Used when no asset backend is configured.
type Disabled struct{}

// Upload implements Uploader.
func (Disabled) Upload(_ context.Context, _ []byte, folder, name string) (string, error) {
	return "", fmt.Errorf("%s/%s: no asset backend configured: %w", folder, name, ErrUploadFailed)
}

// ObjectKey joins folder and name into an object key, rejecting names that
// would escape the folder.
func ObjectKey(folder, name string) (string, error) {
	if folder == "" || name == "" {
		return "", fmt.Errorf("folder and name are required: %w", ErrUploadFailed)
	}
	if strings.Contains(name, "/") || name == "." || name == ".." {
		return "", fmt.Errorf("invalid asset name %q: %w", name, ErrUploadFailed)
	}
	return path.Join(strings.Trim(folder, "/"), name), nil
}
