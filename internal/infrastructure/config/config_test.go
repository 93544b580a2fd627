package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv 避免執行環境中的變數影響測試
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{
		"OPENROUTER_API_KEY", "OPENROUTER_MODEL", "MODEL_MAX_TOKENS",
		"LEARNING_BACKEND", "REDIS_ADDR", "ITEMS_BACKEND", "SQLITE_PATH",
		"RATE_LIMIT_ENABLED", "RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW",
		"DEDUP_WINDOW", "LOG_LEVEL",
	} {
		t.Setenv(env, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.InDelta(t, 0.7, cfg.Parser.ConfidenceThreshold, 1e-9)
	assert.False(t, cfg.Parser.UseAI)
	assert.Equal(t, BackendMemory, cfg.Learning.Backend)
	assert.Equal(t, "category_learning_data", cfg.Learning.Key)
	assert.Equal(t, 1000, cfg.Learning.MaxEntries)
	assert.Equal(t, BackendMemory, cfg.Items.Backend)
	assert.Equal(t, time.Second, cfg.DedupWindow)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.OpenRouter.Enabled)
	assert.Equal(t, 4, cfg.Queue.Workers)
	assert.Equal(t, 100, cfg.Queue.MaxSize)
	assert.True(t, cfg.OpenRouter.Cache.Enabled)
	assert.Equal(t, 500, cfg.OpenRouter.Cache.MaxKeys)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_PARSER_USE_AI", "true")
	t.Setenv("APP_PARSER_CONFIDENCE_THRESHOLD", "0.8")
	t.Setenv("LEARNING_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("ITEMS_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/items.db")
	t.Setenv("DEDUP_WINDOW", "2s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Parser.UseAI)
	assert.InDelta(t, 0.8, cfg.Parser.ConfidenceThreshold, 1e-9)
	assert.Equal(t, BackendRedis, cfg.Learning.Backend)
	assert.Equal(t, "redis:6379", cfg.Learning.Redis.Addr)
	assert.Equal(t, BackendSQLite, cfg.Items.Backend)
	assert.Equal(t, "/tmp/items.db", cfg.Items.SQLitePath)
	assert.Equal(t, 2*time.Second, cfg.DedupWindow)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown items backend", map[string]string{"ITEMS_BACKEND": "postgres"}},
		{"unknown learning backend", map[string]string{"LEARNING_BACKEND": "etcd"}},
		{"openrouter without key", map[string]string{"APP_OPENROUTER_ENABLED": "true"}},
		{"threshold out of range", map[string]string{"APP_PARSER_CONFIDENCE_THRESHOLD": "1.5"}},
		{"zero rate limit", map[string]string{"RATE_LIMIT_REQUESTS": "0"}},
		{"zero queue workers", map[string]string{"APP_QUEUE_WORKERS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", MaskAPIKey("short"))
	assert.Equal(t, "sk-o...cdef", MaskAPIKey("sk-or-v1-0123456789abcdef"))
}
