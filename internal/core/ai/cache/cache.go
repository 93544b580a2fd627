// Package cache 快取 AI 解析結果，相同的食材文字不再重複呼叫模型。
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync/atomic"

	"ingredient-parser/internal/core/parser"
	"ingredient-parser/internal/pkg/common"

	"go.uber.org/zap"
)

const keyPrefix = "ai:ingredient:"

// Store 快取使用的 key-value 儲存，鍵不存在時 Get 回傳 (nil, nil)
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Cache 包裝 AI 解析器的快取
type Cache struct {
	next   parser.AIFallback
	store  Store
	hits   int64
	misses int64
}

var _ parser.AIFallback = (*Cache)(nil)

// New 創建快取
func New(next parser.AIFallback, store Store) *Cache {
	return &Cache{next: next, store: store}
}

// ParseIngredient 先查快取，未命中時呼叫下一層並寫回；錯誤不會被快取
func (c *Cache) ParseIngredient(ctx context.Context, text string) (*parser.AIResult, error) {
	key := Key(text)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		common.LogWarn("讀取 AI 快取失敗", zap.Error(err))
	} else if data != nil {
		var cached parser.AIResult
		if err := common.ParseJSONBytes(data, &cached); err == nil {
			atomic.AddInt64(&c.hits, 1)
			common.LogDebug("AI 快取命中", zap.String("key", key))
			return &cached, nil
		}
		common.LogWarn("AI 快取內容無法解析", zap.String("key", key))
	}
	atomic.AddInt64(&c.misses, 1)

	result, err := c.next.ParseIngredient(ctx, text)
	if err != nil || result == nil {
		return result, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := c.store.Set(ctx, key, data); err != nil {
			common.LogWarn("寫入 AI 快取失敗", zap.Error(err))
		}
	}
	return result, nil
}

// Stats 快取統計
func (c *Cache) Stats() map[string]interface{} {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)

	hitRatio := 0.0
	if total := hits + misses; total > 0 {
		hitRatio = float64(hits) / float64(total)
	}
	return map[string]interface{}{
		"hits":      hits,
		"misses":    misses,
		"hit_ratio": hitRatio,
	}
}

// Key 生成快取鍵：小寫並合併空白後取 SHA-256
func Key(text string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return keyPrefix + hex.EncodeToString(sum[:])
}
