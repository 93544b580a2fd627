// Package kvstore 提供分類學習資料使用的 key-value 儲存。
package kvstore

import (
	"context"
	"sync"
	"time"

	"ingredient-parser/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultMaxKeys 記憶體儲存的預設鍵數上限
const DefaultMaxKeys = 100

// MemoryStore 行程內的 key-value 儲存，超過容量時以 LRU 淘汰
type MemoryStore struct {
	maxKeys int
	now     func() time.Time

	mu    sync.RWMutex
	store map[string]storeEntry
	stats storeStats
}

// storeEntry 儲存條目
type storeEntry struct {
	value       []byte
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// storeStats 儲存統計
type storeStats struct {
	hits      int64
	misses    int64
	writes    int64
	evictions int64
}

// NewMemoryStore 創建記憶體儲存
func NewMemoryStore(maxKeys int) *MemoryStore {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}

	m := &MemoryStore{
		maxKeys: maxKeys,
		now:     time.Now,
		store:   make(map[string]storeEntry),
	}

	common.LogInfo("記憶體儲存已初始化", zap.Int("最大鍵數", maxKeys))
	return m
}

// Create 記憶體儲存不需要初始化
func (m *MemoryStore) Create(ctx context.Context) error {
	return ctx.Err()
}

// Get 讀取值，鍵不存在時回傳 (nil, nil)
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[key]
	if !exists {
		m.stats.misses++
		common.LogDebug("儲存未命中", zap.String("鍵", key))
		return nil, nil
	}

	entry.lastAccess = m.now()
	entry.accessCount++
	m.store[key] = entry
	m.stats.hits++

	return append([]byte(nil), entry.value...), nil
}

// Set 寫入值
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry, exists := m.store[key]
	if !exists {
		// 已滿時淘汰最少使用的鍵
		if len(m.store) >= m.maxKeys {
			m.evictLRU()
		}
		entry.createdAt = now
	}

	entry.value = append([]byte(nil), value...)
	entry.lastAccess = now
	m.store[key] = entry
	m.stats.writes++

	common.LogDebug("儲存已寫入",
		zap.String("鍵", key),
		zap.Int("大小", len(value)),
	)
	return nil
}

// Ping 記憶體儲存永遠可用
func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// evictLRU 淘汰存取次數最少、最久未使用的鍵
func (m *MemoryStore) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogInfo("儲存已淘汰(LRU)", zap.String("鍵", oldestKey))
	}
}

// Stats 儲存統計
func (m *MemoryStore) Stats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hitRatio := 0.0
	if total := m.stats.hits + m.stats.misses; total > 0 {
		hitRatio = float64(m.stats.hits) / float64(total)
	}

	return map[string]interface{}{
		"backend":   "memory",
		"keys":      len(m.store),
		"max_keys":  m.maxKeys,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"writes":    m.stats.writes,
		"evictions": m.stats.evictions,
		"hit_ratio": hitRatio,
	}
}

// Close 清空儲存
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]storeEntry)
	common.LogInfo("記憶體儲存已關閉",
		zap.Int64("命中次數", m.stats.hits),
		zap.Int64("未命中次數", m.stats.misses),
		zap.Int64("淘汰次數", m.stats.evictions),
	)
	return nil
}
