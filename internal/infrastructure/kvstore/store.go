package kvstore

import (
	"context"
	"fmt"

	"ingredient-parser/internal/infrastructure/config"
)

// Store 學習資料儲存，含健康檢查與統計
type Store interface {
	Create(ctx context.Context) error
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Stats() map[string]interface{}
	Close() error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)

// New 依設定選擇儲存後端
func New(ctx context.Context, cfg config.LearningConfig) (Store, error) {
	switch cfg.Backend {
	case "", config.BackendMemory:
		return NewMemoryStore(cfg.MemoryMaxKeys), nil
	case config.BackendRedis:
		store, err := NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown learning backend %q", cfg.Backend)
	}
}
