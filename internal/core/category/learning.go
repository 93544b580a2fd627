package category

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"ingredient-parser/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	initialLearningConfidence = 0.8
	learningConfidenceStep    = 0.1
	maxLearningConfidence     = 1.0
)

var (
	// ErrEmptyItemName 商品名稱為空
	ErrEmptyItemName = errors.New("item name is empty")
	// ErrUnknownCategory 分類不在固定集合中
	ErrUnknownCategory = errors.New("unknown category")
)

// Store 學習資料的 key-value 儲存介面
//
// Get 在鍵不存在時回傳 (nil, nil)。
type Store interface {
	Create(ctx context.Context) error
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// LearningEntry 使用者修正過的分類
type LearningEntry struct {
	Category   Category  `json:"category"`
	Timestamp  time.Time `json:"timestamp"`
	Confidence float64   `json:"confidence"`
}

// learningSnapshot 持久化格式
type learningSnapshot struct {
	Entries map[string]LearningEntry `json:"entries"`
}

// Statistics 學習資料統計
type Statistics struct {
	TotalEntries      int              `json:"total_entries"`
	MaxEntries        int              `json:"max_entries"`
	ByCategory        map[Category]int `json:"by_category"`
	AverageConfidence float64          `json:"average_confidence"`
	OldestEntry       *time.Time       `json:"oldest_entry,omitempty"`
	NewestEntry       *time.Time       `json:"newest_entry,omitempty"`
}

// LearnFromUserChange 記錄使用者的分類修正並持久化
//
// 持久化失敗時記憶體中的學習資料仍會更新，錯誤交由呼叫端記錄。
func (c *Classifier) LearnFromUserChange(ctx context.Context, itemName string, cat Category) error {
	normalized := common.NormalizeName(itemName)
	if normalized == "" {
		return ErrEmptyItemName
	}
	if !cat.IsValid() {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, cat)
	}

	c.mu.Lock()
	entry, exists := c.learned[normalized]
	confidence := initialLearningConfidence
	if exists {
		confidence = entry.Confidence + learningConfidenceStep
		if confidence > maxLearningConfidence {
			confidence = maxLearningConfidence
		}
	}
	c.learned[normalized] = LearningEntry{
		Category:   cat,
		Timestamp:  c.now(),
		Confidence: confidence,
	}
	c.addKeywordLocked(cat, normalized)
	evicted := c.pruneLocked()
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	common.LogInfo("已學習商品分類",
		zap.String("item", normalized),
		zap.String("category", string(cat)),
		zap.Float64("confidence", confidence),
		zap.Int("evicted", evicted),
	)

	return c.persist(ctx, snapshot)
}

// LearningStatistics 回傳學習資料統計
func (c *Classifier) LearningStatistics() Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Statistics{
		TotalEntries: len(c.learned),
		MaxEntries:   c.maxEntries,
		ByCategory:   make(map[Category]int),
	}
	if len(c.learned) == 0 {
		return stats
	}

	var total float64
	var oldest, newest time.Time
	for _, entry := range c.learned {
		stats.ByCategory[entry.Category]++
		total += entry.Confidence
		if oldest.IsZero() || entry.Timestamp.Before(oldest) {
			oldest = entry.Timestamp
		}
		if entry.Timestamp.After(newest) {
			newest = entry.Timestamp
		}
	}
	stats.AverageConfidence = total / float64(len(c.learned))
	stats.OldestEntry = &oldest
	stats.NewestEntry = &newest
	return stats
}

// LearnedItemsForCategory 回傳某分類下學習過的商品名稱（排序後）
func (c *Classifier) LearnedItemsForCategory(cat Category) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := []string{}
	for name, entry := range c.learned {
		if entry.Category == cat {
			items = append(items, name)
		}
	}
	sort.Strings(items)
	return items
}

// ClearLearningData 清除所有學習資料與學習到的關鍵字
func (c *Classifier) ClearLearningData(ctx context.Context) error {
	c.mu.Lock()
	c.learned = make(map[string]LearningEntry)
	c.tables = cloneTables(defaultKeywordTables)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	common.LogInfo("已清除分類學習資料")

	return c.persist(ctx, snapshot)
}

// addKeywordLocked 將學習到的名稱加入分類關鍵字
func (c *Classifier) addKeywordLocked(cat Category, keyword string) {
	for i := range c.tables {
		if c.tables[i].category != cat {
			continue
		}
		for _, kw := range c.tables[i].keywords {
			if kw == keyword {
				return
			}
		}
		c.tables[i].keywords = append(c.tables[i].keywords, keyword)
		return
	}
	c.tables = append(c.tables, keywordTable{category: cat, keywords: []string{keyword}})
}

// pruneLocked 超過上限時依時間淘汰最舊的項目，回傳淘汰數量
func (c *Classifier) pruneLocked() int {
	excess := len(c.learned) - c.maxEntries
	if excess <= 0 {
		return 0
	}

	names := make([]string, 0, len(c.learned))
	for name := range c.learned {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ti, tj := c.learned[names[i]].Timestamp, c.learned[names[j]].Timestamp
		if ti.Equal(tj) {
			return names[i] < names[j]
		}
		return ti.Before(tj)
	})
	for _, name := range names[:excess] {
		delete(c.learned, name)
	}
	return excess
}

func (c *Classifier) snapshotLocked() learningSnapshot {
	entries := make(map[string]LearningEntry, len(c.learned))
	for name, entry := range c.learned {
		entries[name] = entry
	}
	return learningSnapshot{Entries: entries}
}

// persist 寫入 store；沒有設定 store 時直接略過
func (c *Classifier) persist(ctx context.Context, snapshot learningSnapshot) error {
	if c.store == nil {
		return nil
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal learning data: %w", err)
	}
	if err := c.store.Set(ctx, c.storageKey, data); err != nil {
		return fmt.Errorf("failed to save learning data: %w", err)
	}
	return nil
}

// load 從 store 載入學習資料，並重建學習關鍵字
func (c *Classifier) load(ctx context.Context) error {
	if err := c.store.Create(ctx); err != nil {
		return fmt.Errorf("failed to create learning store: %w", err)
	}

	data, err := c.store.Get(ctx, c.storageKey)
	if err != nil {
		return fmt.Errorf("failed to read learning data: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var snapshot learningSnapshot
	if err := common.ParseJSONBytes(data, &snapshot); err != nil {
		return fmt.Errorf("failed to decode learning data: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for name, entry := range snapshot.Entries {
		normalized := common.NormalizeName(name)
		if normalized == "" || !entry.Category.IsValid() {
			continue
		}
		c.learned[normalized] = entry
		c.addKeywordLocked(entry.Category, normalized)
	}
	c.pruneLocked()

	common.LogInfo("已載入分類學習資料", zap.Int("entries", len(c.learned)))
	return nil
}
