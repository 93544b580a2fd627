// Package itemrepo 保存食材背後的商品資料。
package itemrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"ingredient-parser/internal/pkg/common"

	"github.com/google/uuid"
)

var (
	// ErrItemNotFound 商品不存在
	ErrItemNotFound = errors.New("item not found")
	// ErrDuplicateItem 商品 ID 已存在
	ErrDuplicateItem = errors.New("item already exists")
)

// MemoryRepository 行程內的商品資料庫
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]common.Item
}

// NewMemoryRepository 創建記憶體商品資料庫
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]common.Item)}
}

// FindByName 以不分大小寫的完全相同名稱查詢
func (r *MemoryRepository) FindByName(ctx context.Context, name string) ([]common.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := common.NormalizeName(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []common.Item
	for _, item := range r.items {
		if common.NormalizeName(item.Name) == key {
			matches = append(matches, item)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches, nil
}

// Get 依 ID 取得商品
func (r *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (common.Item, error) {
	if err := ctx.Err(); err != nil {
		return common.Item{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return common.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return item, nil
}

// Add 新增商品
func (r *MemoryRepository) Add(ctx context.Context, item common.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateItem, item.ID)
	}
	r.items[item.ID] = item
	return nil
}

// Update 以 ID 覆寫商品
func (r *MemoryRepository) Update(ctx context.Context, item common.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; !exists {
		return fmt.Errorf("%w: %s", ErrItemNotFound, item.ID)
	}
	r.items[item.ID] = item
	return nil
}

// IncrementUsage 使用次數加一
func (r *MemoryRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	item.UsageCount++
	r.items[id] = item
	return nil
}

// Count 商品數量
func (r *MemoryRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

// Ping 記憶體資料庫永遠可用
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close 不需要釋放資源
func (r *MemoryRepository) Close() error {
	return nil
}
