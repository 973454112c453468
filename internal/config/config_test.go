package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:4000", cfg.Uploader.BaseURL)
	assert.Equal(t, "/presign", cfg.Uploader.PresignPath)
	assert.Zero(t, cfg.Uploader.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("UPLOADER_BASE_URL", "https://api.example.com")
	t.Setenv("UPLOADER_PRESIGN_PATH", "/v1/presign")
	t.Setenv("UPLOADER_TIMEOUT", "30s")
	t.Setenv("UPLOADER_LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Uploader.BaseURL)
	assert.Equal(t, "/v1/presign", cfg.Uploader.PresignPath)
	assert.Equal(t, 30*time.Second, cfg.Uploader.Timeout)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("UPLOADER_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}
