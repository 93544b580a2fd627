// Package category 依關鍵字表與使用者學習資料判定商品分類。
package category

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"ingredient-parser/internal/core/lemmatizer"
	"ingredient-parser/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	// DefaultStorageKey 學習資料在 key-value store 中的鍵
	DefaultStorageKey = "category_learning_data"
	// DefaultMaxEntries 學習資料上限，超過時淘汰最舊的項目
	DefaultMaxEntries = 1000
	// DefaultMinConfidence 學習資料生效所需的最低信心
	DefaultMinConfidence = 0.6
)

// Option 分類器選項
type Option func(*Classifier)

// WithStore 設定學習資料的持久化儲存
func WithStore(store Store) Option {
	return func(c *Classifier) { c.store = store }
}

// WithStorageKey 設定持久化鍵
func WithStorageKey(key string) Option {
	return func(c *Classifier) {
		if key != "" {
			c.storageKey = key
		}
	}
}

// WithMaxEntries 設定學習資料上限
func WithMaxEntries(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithMinConfidence 設定學習資料的最低信心
func WithMinConfidence(v float64) Option {
	return func(c *Classifier) { c.minConfidence = v }
}

// WithClock 設定時間來源（測試用）
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) { c.now = now }
}

// Classifier 商品分類器
type Classifier struct {
	lemmatizer    *lemmatizer.Lemmatizer
	store         Store
	storageKey    string
	maxEntries    int
	minConfidence float64
	now           func() time.Time

	mu      sync.RWMutex
	tables  []keywordTable
	learned map[string]LearningEntry
}

// NewClassifier 創建分類器，若有設定 store 則載入學習資料
func NewClassifier(ctx context.Context, lem *lemmatizer.Lemmatizer, opts ...Option) *Classifier {
	if lem == nil {
		lem = lemmatizer.New()
	}

	c := &Classifier{
		lemmatizer:    lem,
		storageKey:    DefaultStorageKey,
		maxEntries:    DefaultMaxEntries,
		minConfidence: DefaultMinConfidence,
		now:           time.Now,
		tables:        cloneTables(defaultKeywordTables),
		learned:       make(map[string]LearningEntry),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.store != nil {
		if err := c.load(ctx); err != nil {
			// 載入失敗時以空白學習資料繼續
			common.LogWarn("載入分類學習資料失敗", zap.Error(err))
		}
	}

	return c
}

// Categories 回傳固定的分類集合
func (c *Classifier) Categories() []Category {
	return All()
}

// DetectCategory 判定商品分類
func (c *Classifier) DetectCategory(itemName string) Category {
	normalized := common.NormalizeName(itemName)
	if normalized == "" {
		return Other
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	// 1. 使用者學習資料優先
	if entry, ok := c.learned[normalized]; ok && entry.Confidence >= c.minConfidence {
		return entry.Category
	}

	// 2. 冷凍狀態
	if isFrozen(normalized) {
		return Frozen
	}

	// 3. 以最相關的詞還原結果比對
	if cat, ok := c.matchKeywords(c.lemmatizer.MostRelevantWord(normalized)); ok {
		return cat
	}

	// 4. 以原始文字再比對一次
	if cat, ok := c.matchKeywords(normalized); ok {
		return cat
	}

	return Other
}

// isFrozen 檢查冷凍狀態字首
func isFrozen(text string) bool {
	for _, exception := range frozenExceptions {
		if strings.Contains(text, exception) {
			return false
		}
	}
	return frozenPattern.MatchString(text)
}

// matchKeywords 在非冷凍分類中尋找最長的關鍵字匹配
func (c *Classifier) matchKeywords(text string) (Category, bool) {
	if text == "" {
		return "", false
	}

	var best Category
	bestLen := 0
	for _, table := range c.tables {
		if table.category == Frozen {
			continue
		}
		for _, kw := range table.keywords {
			n := utf8.RuneCountInString(kw)
			if n <= bestLen {
				continue
			}
			if matchesKeyword(text, kw) {
				best = table.category
				bestLen = n
			}
		}
	}
	return best, bestLen > 0
}

// matchesKeyword 彈性詞界匹配：完全相同、詞首或詞尾
func matchesKeyword(text, kw string) bool {
	if kw == "" {
		return false
	}
	if text == kw {
		return true
	}

	offset := 0
	for {
		idx := strings.Index(text[offset:], kw)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(kw)
		if atWordStart(text, start) || atWordEnd(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
}

func atWordStart(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !unicode.IsLetter(r)
}

func atWordEnd(text string, j int) bool {
	if j >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[j:])
	return !unicode.IsLetter(r)
}
