package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/automatenwerk/stockpilot/internal/config"
)

func TestSplitEndpoint(t *testing.T) {
	host, secure := splitEndpoint("https://s3.example.com", false)
	assert.Equal(t, "s3.example.com", host)
	assert.True(t, secure)

	host, secure = splitEndpoint("http://localhost:9000", true)
	assert.Equal(t, "localhost:9000", host)
	assert.False(t, secure)

	host, secure = splitEndpoint("minio:9000", true)
	assert.Equal(t, "minio:9000", host)
	assert.True(t, secure)
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "text/csv", contentTypeFor("exports/a.csv"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", contentTypeFor("a.xlsx"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("blob"))
}

func TestNewMinioClientRequiresConfig(t *testing.T) {
	ctx := context.Background()

	_, err := NewMinioClient(ctx, config.ObjectStoreConfig{})
	assert.ErrorContains(t, err, "endpoint")

	_, err = NewMinioClient(ctx, config.ObjectStoreConfig{Endpoint: "localhost:9000"})
	assert.ErrorContains(t, err, "credentials")

	_, err = NewMinioClient(ctx, config.ObjectStoreConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	assert.ErrorContains(t, err, "bucket")
}
