package objectstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/minio/minio-go/v7"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublisher_Validation(t *testing.T) {
	valid := Config{
		EndpointURL:     "http://localhost:9000",
		Bucket:          "odf",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing endpoint", func(c *Config) { c.EndpointURL = "" }},
		{"missing bucket", func(c *Config) { c.Bucket = "" }},
		{"missing secret", func(c *Config) { c.SecretAccessKey = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			_, err := NewPublisher(cfg)
			assert.Error(t, err)
		})
	}

	p, err := NewPublisher(valid)
	require.NoError(t, err)
	assert.Equal(t, "odf", p.Bucket())
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/x-netcdf", ContentType("out/CTD_1.nc"))
	assert.Equal(t, "text/csv", ContentType("CTD_1.csv"))
	assert.Equal(t, "application/octet-stream", ContentType("CTD_1.parquet"))
}

// MockClient fails the first `failures` bucket checks.
type MockClient struct {
	failures int
	exists   bool
	checks   int
	made     int
	puts     []string
}

func (m *MockClient) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	m.checks++
	if m.checks <= m.failures {
		return false, errors.New("connection refused")
	}
	return m.exists, nil
}

func (m *MockClient) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	m.made++
	m.exists = true
	return nil
}

func (m *MockClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	m.puts = append(m.puts, objectName)
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: objectSize}, nil
}

func TestPublish_RetriesBucketCheck(t *testing.T) {
	src := filepath.Join(t.TempDir(), "CTD_1.csv")
	require.NoError(t, os.WriteFile(src, []byte("a\n1\n"), 0644))

	client := &MockClient{failures: 1}
	p := &Publisher{client: client, cfg: Config{Bucket: "odf"}}

	err := p.Publish(context.TODO(), src, "casts/CTD_1.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, client.puts)

	require.NoError(t, p.Publish(context.TODO(), src, "casts/CTD_1.csv"))
	require.NoError(t, p.Publish(context.TODO(), src, "casts/CTD_2.csv"))

	assert.Equal(t, 2, client.checks, "bucket is checked until it succeeds, then never again")
	assert.Equal(t, 1, client.made)
	assert.Equal(t, []string{"casts/CTD_1.csv", "casts/CTD_2.csv"}, client.puts)
}
