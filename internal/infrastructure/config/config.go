package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 學習資料與商品資料庫的後端
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	Parser      ParserConfig     `mapstructure:"parser"`
	Learning    LearningConfig   `mapstructure:"learning"`
	Items       ItemsConfig      `mapstructure:"items"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Queue       QueueConfig      `mapstructure:"queue"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// ParserConfig 解析器預設選項
type ParserConfig struct {
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	UseAI               bool    `mapstructure:"use_ai"`
	MaxBatchSize        int     `mapstructure:"max_batch_size"`
}

// LearningConfig 分類學習設定
type LearningConfig struct {
	Backend       string      `mapstructure:"backend"`
	Key           string      `mapstructure:"key"`
	MaxEntries    int         `mapstructure:"max_entries"`
	MinConfidence float64     `mapstructure:"min_confidence"`
	MemoryMaxKeys int         `mapstructure:"memory_max_keys"`
	Redis         RedisConfig `mapstructure:"redis"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// ItemsConfig 商品資料庫設定
type ItemsConfig struct {
	Backend    string `mapstructure:"backend"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Cache     AICacheConfig `mapstructure:"cache"`
}

// AICacheConfig AI 解析結果快取配置
type AICacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	MaxKeys int  `mapstructure:"max_keys"`
}

// QueueConfig AI 請求隊列配置
type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（不存在時只使用環境變數與預設值）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindings := map[string]string{
		"openrouter.api_key":    "OPENROUTER_API_KEY",
		"openrouter.model":      "OPENROUTER_MODEL",
		"openrouter.max_tokens": "MODEL_MAX_TOKENS",
		"learning.backend":      "LEARNING_BACKEND",
		"learning.redis.addr":   "REDIS_ADDR",
		"items.backend":         "ITEMS_BACKEND",
		"items.sqlite_path":     "SQLITE_PATH",
		"rate_limit.enabled":    "RATE_LIMIT_ENABLED",
		"rate_limit.requests":   "RATE_LIMIT_REQUESTS",
		"rate_limit.window":     "RATE_LIMIT_WINDOW",
		"dedup_window":          "DEDUP_WINDOW",
		"log_level":             "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "APP_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	// 設定設定檔名稱和路徑
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// 讀取設定檔
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "ingredient-parser")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB

	// 解析器設定
	v.SetDefault("parser.confidence_threshold", 0.7)
	v.SetDefault("parser.use_ai", false)
	v.SetDefault("parser.max_batch_size", 200)

	// 分類學習設定
	v.SetDefault("learning.backend", BackendMemory)
	v.SetDefault("learning.key", "category_learning_data")
	v.SetDefault("learning.max_entries", 1000)
	v.SetDefault("learning.min_confidence", 0.6)
	v.SetDefault("learning.memory_max_keys", 100)
	v.SetDefault("learning.redis.addr", "localhost:6379")
	v.SetDefault("learning.redis.password", "")
	v.SetDefault("learning.redis.db", 0)
	v.SetDefault("learning.redis.key_prefix", "ingredient-parser:")

	// 商品資料庫設定
	v.SetDefault("items.backend", BackendMemory)
	v.SetDefault("items.sqlite_path", "data/items.db")

	// OpenRouter 設定
	v.SetDefault("openrouter.enabled", false)
	v.SetDefault("openrouter.api_key", "")
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "qwen/qwen-2.5-72b-instruct:free")
	v.SetDefault("openrouter.max_tokens", 300)
	v.SetDefault("openrouter.timeout", "20s")
	v.SetDefault("openrouter.cache.enabled", true)
	v.SetDefault("openrouter.cache.max_keys", 500)

	// AI 請求隊列
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.max_size", 100)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}
	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max body bytes")
	}

	// 驗證解析器設定
	if config.Parser.ConfidenceThreshold <= 0 || config.Parser.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be in (0, 1]")
	}
	if config.Parser.MaxBatchSize <= 0 {
		return fmt.Errorf("invalid parser max batch size")
	}

	// 驗證學習設定
	switch config.Learning.Backend {
	case BackendMemory:
	case BackendRedis:
		if config.Learning.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for redis learning backend")
		}
	default:
		return fmt.Errorf("unknown learning backend %q", config.Learning.Backend)
	}
	if config.Learning.MaxEntries <= 0 {
		return fmt.Errorf("invalid learning max entries")
	}

	// 驗證商品資料庫設定
	switch config.Items.Backend {
	case BackendMemory:
	case BackendSQLite:
		if config.Items.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite items backend")
		}
	default:
		return fmt.Errorf("unknown items backend %q", config.Items.Backend)
	}

	// 驗證 OpenRouter 設定
	if config.OpenRouter.Enabled && config.OpenRouter.APIKey == "" {
		return fmt.Errorf("openrouter api key is required when openrouter is enabled")
	}
	if config.Queue.Workers <= 0 || config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue workers or max size")
	}
	if config.OpenRouter.Cache.Enabled && config.OpenRouter.Cache.MaxKeys <= 0 {
		return fmt.Errorf("invalid openrouter cache max keys")
	}

	// 驗證限流設定
	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 {
			return fmt.Errorf("invalid rate limit requests")
		}
		if config.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit window")
		}
	}

	return nil
}
