package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.EndpointExpiry)
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval)
	assert.Equal(t, 5*time.Second, cfg.ModelTagRetryDelay)
	assert.Equal(t, 1, cfg.ModelTagRetries)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PIPELINE_NAME", "my-pipeline")
	t.Setenv("EXPIRY_TIME_IN_MINS", "120")
	t.Setenv("MODEL_TAG_RETRY_DELAY_SECS", "2")
	t.Setenv("MODEL_TAG_RETRIES", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "my-pipeline", cfg.PipelineName)
	assert.Equal(t, 2*time.Hour, cfg.EndpointExpiry)
	assert.Equal(t, 2*time.Second, cfg.ModelTagRetryDelay)
	assert.Equal(t, 3, cfg.ModelTagRetries)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_port: \"7070\"\nasset_bucket: file-bucket\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.ServerPort)
	assert.Equal(t, "file-bucket", cfg.AssetBucket)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_port: \"7070\"\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
}

func TestLoadInvalidNumber(t *testing.T) {
	t.Setenv("ENDPOINT_INSTANCE_COUNT", "many")
	_, err := Load()
	assert.Error(t, err)
}
