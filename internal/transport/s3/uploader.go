// Package s3 uploads assets to an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/medstore/internal/domain/asset"
)

// api is the consumer interface over the S3 client.
type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Uploader writes assets with PutObject and serves them from PublicBaseURL.
type Uploader struct {
	client        api
	bucket        string
	publicBaseURL string
	logger        *zap.Logger
}

// Config holds S3 settings. If Endpoint is non-empty, path-style addressing
// is enabled (MinIO and similar).
type Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
	Logger        *zap.Logger
}

// NewUploader loads AWS credentials from the environment and creates an uploader.
func NewUploader(ctx context.Context, cfg *Config) (*Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	return newUploader(s3.NewFromConfig(awsCfg, opts...), cfg)
}

func newUploader(client api, cfg *Config) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}
	base := cfg.PublicBaseURL
	if base == "" {
		base = defaultPublicBaseURL(cfg)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		logger:        logger,
	}, nil
}

// defaultPublicBaseURL derives the object URL prefix when none is configured.
func defaultPublicBaseURL(cfg *Config) string {
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

// Upload implements asset.Uploader.
func (u *Uploader) Upload(ctx context.Context, data []byte, folder, name string) (string, error) {
	key, err := asset.ObjectKey(folder, name)
	if err != nil {
		return "", err
	}
	contentType := http.DetectContentType(data)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object %s: %w: %w", key, err, asset.ErrUploadFailed)
	}

	u.logger.Debug("asset uploaded",
		zap.String("bucket", u.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return u.publicBaseURL + "/" + key, nil
}

// HealthCheck verifies the bucket exists and is reachable.
func (u *Uploader) HealthCheck(ctx context.Context) error {
	if _, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(u.bucket)}); err != nil {
		return fmt.Errorf("s3 head bucket %s: %w", u.bucket, err)
	}
	return nil
}
