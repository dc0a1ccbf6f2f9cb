package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017/estates")
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("PORT", "")
	t.Setenv("FRONTEND_ORIGIN", "")
	t.Setenv("FRONTEND_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "estates", cfg.MongoDB)
	assert.Equal(t, ":5000", cfg.ServerAddr)
	assert.Equal(t, []string{"http://localhost:8000"}, cfg.FrontendOrigins)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, 450, cfg.CropWidth)
	assert.Equal(t, 350, cfg.CropHeight)
	assert.Equal(t, 80, cfg.JPEGQuality)
	assert.Equal(t, 100, cfg.RateLimitRequests)
	assert.Equal(t, 900, cfg.RateLimitWindowSec)
	assert.Equal(t, int64(268402689), cfg.MaxInputPixels)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("MONGO_DB", "")
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("FRONTEND_ORIGIN", "http://a.test, http://b.test ,")
	t.Setenv("MAX_FILE_SIZE", "1024")
	t.Setenv("CROP_WIDTH", "200")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.10")
	t.Setenv("MAX_INPUT_PIXELS", "40000000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "real-estate", cfg.MongoDB)
	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.FrontendOrigins)
	assert.Equal(t, int64(1024), cfg.MaxFileSize)
	assert.Equal(t, 200, cfg.CropWidth)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.10"}, cfg.TrustedProxies)
	assert.Equal(t, int64(40000000), cfg.MaxInputPixels)
}

func TestLoadInvalidTimezone(t *testing.T) {
	t.Setenv("TZ", "Not/AZone")
	_, err := Load()
	require.Error(t, err)
}

func TestMongoDBFromURI(t *testing.T) {
	cases := map[string]string{
		"mongodb://localhost:27017/app":         "app",
		"mongodb://localhost:27017/app/extra":   "app",
		"mongodb://localhost:27017":             "",
		"mongodb+srv://u:p@cluster.test/shop?x": "shop",
	}
	for uri, want := range cases {
		assert.Equal(t, want, mongoDBFromURI(uri), uri)
	}
}
