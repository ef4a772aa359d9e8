// Package objectstore publishes exported files to S3-compatible storage.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/aretw0/odf/pkg/core"
)

// Config holds the connection settings of a Publisher.
type Config struct {
	EndpointURL     string `toml:"endpoint"`
	Bucket          string `toml:"bucket"`
	Prefix          string `toml:"prefix"`
	AccessKeyID     string `toml:"access_key"`
	SecretAccessKey string `toml:"secret_key"`
	UseSSL          bool   `toml:"use_ssl"`
	Region          string `toml:"region"`
}

// Validate reports missing settings.
func (c Config) Validate() error {
	if c.EndpointURL == "" {
		return errors.New("endpoint is required")
	}
	if c.Bucket == "" {
		return errors.New("bucket is required")
	}
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return errors.New("credentials are required")
	}
	return nil
}

// bucketClient is the subset of *minio.Client used by Publisher.
type bucketClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Publisher implements core.Publisher using the minio-go SDK.
type Publisher struct {
	client bucketClient
	cfg    Config

	mu      sync.Mutex
	ensured bool
}

// NewPublisher creates a client for cfg. No request is made until the first Publish.
func NewPublisher(cfg Config) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Parse endpoint URL to extract host
	u, err := url.Parse(cfg.EndpointURL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint URL: %w", err)
	}
	endpoint := u.Host
	if endpoint == "" {
		endpoint = cfg.EndpointURL
	}
	useSSL := cfg.UseSSL
	if u.Scheme == "https" {
		useSSL = true
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &Publisher{client: client, cfg: cfg}, nil
}

// Bucket returns the target bucket.
func (p *Publisher) Bucket() string {
	return p.cfg.Bucket
}

// ensureBucket creates the bucket if needed. Failures are retried on the next call.
func (p *Publisher) ensureBucket(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ensured {
		return nil
	}

	exists, err := p.client.BucketExists(ctx, p.cfg.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := p.client.MakeBucket(ctx, p.cfg.Bucket, minio.MakeBucketOptions{Region: p.cfg.Region}); err != nil {
			return err
		}
	}
	p.ensured = true
	return nil
}

// Publish uploads the file at localPath as key.
func (p *Publisher) Publish(ctx context.Context, localPath, key string) error {
	if key == "" {
		return errors.New("object key is required")
	}
	if err := p.ensureBucket(ctx); err != nil {
		return fmt.Errorf("bucket %s unavailable: %w", p.cfg.Bucket, err)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	_, err = p.client.PutObject(ctx, p.cfg.Bucket, key, f, info.Size(), minio.PutObjectOptions{
		ContentType: ContentType(localPath),
	})
	return err
}

// ContentType guesses the MIME type of an exported file from its extension.
func ContentType(p string) string {
	switch filepath.Ext(p) {
	case ".nc":
		return "application/x-netcdf"
	case ".json":
		return "application/json"
	case ".yaml":
		return "application/yaml"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

var _ core.Publisher = (*Publisher)(nil)
