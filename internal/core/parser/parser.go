// Package parser 將自由格式的芬蘭文食材文字解析為結構化結果。
package parser

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"ingredient-parser/internal/core/category"
	"ingredient-parser/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	// DefaultConfidenceThreshold 低於此信心時考慮 AI 解析
	DefaultConfidenceThreshold = 0.7
	// aiConfidenceCeiling 只有信心也低於此值時才呼叫 AI
	aiConfidenceCeiling = 0.5

	baseConfidence        = 0.5
	maxConfidence         = 0.95
	placeholderConfidence = 0.3

	brandConfidence       = 0.1
	subBrandConfidence    = 0.15
	temperatureConfidence = 0.05
	metadataConfidence    = 0.05
	preparationConfidence = 0.05
	nameLengthBonus       = 0.1
	shortNameRunes        = 2
	longNameRunes         = 5
)

// Source 結果的來源
type Source string

const (
	SourceRegex       Source = "regex"
	SourceAI          Source = "ai"
	SourcePassthrough Source = "passthrough"
)

// Options 解析選項
type Options struct {
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	UseAI               bool    `json:"use_ai"`
}

// DefaultOptions 預設選項
func DefaultOptions() Options {
	return Options{ConfidenceThreshold: DefaultConfidenceThreshold}
}

func (o Options) threshold() float64 {
	if o.ConfidenceThreshold <= 0 {
		return DefaultConfidenceThreshold
	}
	return o.ConfidenceThreshold
}

// Metadata 解析過程取出的附加資訊
type Metadata struct {
	PackageSize         string `json:"package_size,omitempty"`
	RedundantMeasure    string `json:"redundant_measure,omitempty"`
	SubBrand            string `json:"sub_brand,omitempty"`
	Temperature         string `json:"temperature,omitempty"`
	Preparation         string `json:"preparation,omitempty"`
	UnnecessaryMetadata string `json:"unnecessary_metadata,omitempty"`
	IsApproximate       bool   `json:"is_approximate,omitempty"`
}

// Result 解析結果
type Result struct {
	Amount     string            `json:"amount"`
	Brand      string            `json:"brand,omitempty"`
	ItemName   string            `json:"item_name"`
	Category   category.Category `json:"category"`
	Confidence float64           `json:"confidence"`
	RawText    string            `json:"raw_text"`
	Metadata   Metadata          `json:"metadata"`
	Source     Source            `json:"source"`
}

// CategoryDetector 分類判定
type CategoryDetector interface {
	DetectCategory(itemName string) category.Category
}

// AIResult AI 解析結果
type AIResult struct {
	Amount     string  `json:"amount"`
	Brand      string  `json:"brand"`
	ItemName   string  `json:"item_name"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// AIFallback 低信心時的 AI 解析
type AIFallback interface {
	ParseIngredient(ctx context.Context, text string) (*AIResult, error)
}

// Option 解析器選項
type Option func(*Parser)

// WithAIFallback 設定 AI 解析
func WithAIFallback(ai AIFallback) Option {
	return func(p *Parser) { p.ai = ai }
}

// WithItemRepository 設定商品資料庫
func WithItemRepository(repo ItemRepository) Option {
	return func(p *Parser) { p.items = repo }
}

// WithClock 設定時間來源（測試用）
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// Parser 食材文字解析器
type Parser struct {
	categories CategoryDetector
	ai         AIFallback
	items      ItemRepository
	now        func() time.Time
}

// New 創建解析器
func New(categories CategoryDetector, opts ...Option) *Parser {
	p := &Parser{
		categories: categories,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse 解析單行食材文字
//
// 無法解析的文字回傳低信心結果，不會回傳錯誤。
func (p *Parser) Parse(ctx context.Context, text string, opts Options) Result {
	start := time.Now()

	result := p.parseDeterministic(text)
	if strings.TrimSpace(text) != "" && result.Confidence < opts.threshold() && opts.UseAI && result.Confidence < aiConfidenceCeiling {
		result = p.parseWithAI(ctx, result)
	}

	common.LogParse(text, result.Confidence, string(result.Source), time.Since(start))
	return result
}

// ParseRecipeIngredients 批次解析，略過空白行
func (p *Parser) ParseRecipeIngredients(ctx context.Context, lines []string, opts Options) []Result {
	results := make([]Result, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		results = append(results, p.Parse(ctx, line, opts))
	}
	return results
}

// parseDeterministic 依序執行各個取出步驟並累計信心
func (p *Parser) parseDeterministic(raw string) Result {
	result := Result{
		RawText:  raw,
		Category: category.Other,
		Source:   SourceRegex,
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		return result
	}

	confidence := baseConfidence

	// 1. 約略標記
	text, result.Metadata.IsApproximate = extractApproximate(text)

	// 2. 數量
	match, rest, ok := extractAmount(text)
	if !ok {
		match, rest, ok = extractEmbeddedAmount(text)
	}
	if ok {
		text = rest
		result.Amount = match.amount
		result.Metadata.RedundantMeasure = match.redundantMeasure
		result.Metadata.PackageSize = match.packageSize
		result.Metadata.IsApproximate = result.Metadata.IsApproximate || match.approximate
		confidence += match.confidence
	}

	// 3. 品牌
	if brand, sub, rest, ok := extractBrand(text); ok {
		text = rest
		result.Brand = brand
		result.Metadata.SubBrand = sub
		if sub != "" {
			confidence += subBrandConfidence
		} else {
			confidence += brandConfidence
		}
	}

	// 4. 溫度
	if temp, rest, ok := extractTemperature(text); ok {
		text = rest
		result.Metadata.Temperature = temp
		confidence += temperatureConfidence
	}

	// 5. 替代建議括號
	if meta, rest, ok := extractUnnecessaryMetadata(text); ok {
		text = rest
		result.Metadata.UnnecessaryMetadata = meta
		confidence += metadataConfidence
	}

	// 6. 處理方式
	if prep, rest, ok := extractPreparation(text); ok {
		text = rest
		result.Metadata.Preparation = prep
		confidence += preparationConfidence
	}

	// 7. 名稱
	result.ItemName = cleanName(text)

	// 8. 分類
	if p.categories != nil && result.ItemName != "" {
		result.Category = p.categories.DetectCategory(result.ItemName)
	}

	// 9. 信心
	if n := utf8.RuneCountInString(result.ItemName); n > shortNameRunes {
		confidence += nameLengthBonus
		if n > longNameRunes {
			confidence += nameLengthBonus
		}
	}
	if isPlaceholder(raw) {
		confidence = placeholderConfidence
	}
	result.Confidence = roundConfidence(math.Min(confidence, maxConfidence))

	return result
}

// parseWithAI 呼叫 AI 解析；沒有設定或失敗時標記為 passthrough
func (p *Parser) parseWithAI(ctx context.Context, fallback Result) Result {
	fallback.Source = SourcePassthrough
	if p.ai == nil {
		return fallback
	}

	start := time.Now()
	aiResult, err := p.ai.ParseIngredient(ctx, fallback.RawText)
	common.LogAICall(time.Since(start), err)
	if err != nil || aiResult == nil || strings.TrimSpace(aiResult.ItemName) == "" {
		if err != nil {
			common.LogWarn("AI 解析失敗，使用原始結果", zap.Error(err))
		}
		return fallback
	}

	result := fallback
	result.Source = SourceAI
	result.ItemName = strings.TrimSpace(aiResult.ItemName)
	if aiResult.Amount != "" {
		result.Amount = strings.TrimSpace(aiResult.Amount)
	}
	if aiResult.Brand != "" {
		result.Brand = strings.TrimSpace(aiResult.Brand)
	}

	result.Category = category.Other
	if cat := category.Category(strings.TrimSpace(aiResult.Category)); cat.IsValid() {
		result.Category = cat
	} else if p.categories != nil {
		result.Category = p.categories.DetectCategory(result.ItemName)
	}

	result.Confidence = roundConfidence(math.Max(0, math.Min(aiResult.Confidence, maxConfidence)))
	return result
}

func roundConfidence(v float64) float64 {
	return math.Round(v*100) / 100
}
