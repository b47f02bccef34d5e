package storage

import (
	"context"
	"testing"

	"github.com/recipebook/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Disabled(t *testing.T) {
	backend, err := Open(context.Background(), config.StorageConfig{})
	require.NoError(t, err)
	assert.Nil(t, backend)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Backend: "ftp"})
	assert.ErrorContains(t, err, "unknown storage backend")
}

func TestNewMinioClient_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinioConfig
		want string
	}{
		{"missing endpoint", config.MinioConfig{}, "endpoint"},
		{"missing keys", config.MinioConfig{Endpoint: "localhost:9000", Bucket: "b"}, "access key"},
		{"missing bucket", config.MinioConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}, "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMinioClient(tt.cfg)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestNewGCSClient_RequiresBucket(t *testing.T) {
	_, err := NewGCSClient(context.Background(), config.GCSConfig{})
	assert.ErrorContains(t, err, "bucket")
}

func TestValidateKey(t *testing.T) {
	for _, key := range []string{"avatars/1/a.png", "a"} {
		assert.NoError(t, validateKey(key), key)
	}
	for _, key := range []string{"", "/avatars/1/a.png", "avatars/../secret"} {
		assert.ErrorIs(t, validateKey(key), errInvalidKey, key)
	}
}
