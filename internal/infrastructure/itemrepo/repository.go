package itemrepo

import (
	"context"
	"fmt"

	"ingredient-parser/internal/infrastructure/config"
	"ingredient-parser/internal/pkg/common"

	"github.com/google/uuid"
)

// Repository 商品資料庫，含健康檢查
type Repository interface {
	FindByName(ctx context.Context, name string) ([]common.Item, error)
	Get(ctx context.Context, id uuid.UUID) (common.Item, error)
	Add(ctx context.Context, item common.Item) error
	Update(ctx context.Context, item common.Item) error
	IncrementUsage(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*SQLiteRepository)(nil)
)

// New 依設定選擇商品資料庫
func New(cfg config.ItemsConfig) (Repository, error) {
	switch cfg.Backend {
	case "", config.BackendMemory:
		return NewMemoryRepository(), nil
	case config.BackendSQLite:
		repo, err := NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown items backend %q", cfg.Backend)
	}
}
