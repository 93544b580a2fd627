// Package openrouter 以 OpenRouter 聊天 API 解析信心不足的食材行。
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ingredient-parser/internal/core/category"
	"ingredient-parser/internal/core/parser"
	"ingredient-parser/internal/infrastructure/config"
	"ingredient-parser/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	// maxLogContent 日誌中回應內容的最大長度
	maxLogContent = 200
)

var (
	// ErrMissingAPIKey 未設定 API 金鑰
	ErrMissingAPIKey = errors.New("openrouter api key is required")
	// ErrEmptyResponse 回應沒有任何選項
	ErrEmptyResponse = errors.New("no choices in OpenRouter response")
)

// Message 消息結構
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 表示 API 請求
type Request struct {
	Messages       []Message       `json:"messages"`
	Model          string          `json:"model,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ResponseFormat 要求模型輸出 JSON
type ResponseFormat struct {
	Type string `json:"type"`
}

// Response OpenRouter 響應結構
type Response struct {
	ID      string    `json:"id"`
	Choices []Choice  `json:"choices"`
	Usage   UsageInfo `json:"usage"`
}

// Choice 選擇結構
type Choice struct {
	Message Message `json:"message"`
}

// UsageInfo 使用量信息
type UsageInfo struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Error 表示 API 錯誤
type Error struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

// Client OpenRouter API 客戶端
type Client struct {
	client    *resty.Client
	model     string
	maxTokens int
}

var _ parser.AIFallback = (*Client)(nil)

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg config.OpenRouterConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("HTTP-Referer", "https://github.com/ingredient-parser").
		SetHeader("X-Title", "Ingredient Parser")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Client{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// ParseIngredient 請模型將一行食材文字拆成結構化欄位
func (c *Client) ParseIngredient(ctx context.Context, text string) (*parser.AIResult, error) {
	content, err := c.complete(ctx, []Message{
		{Role: "system", Content: systemPrompt()},
		{Role: "user", Content: strings.TrimSpace(text)},
	})
	if err != nil {
		return nil, err
	}

	var result parser.AIResult
	if err := common.ParseJSON(common.ExtractJSONObject(content), &result); err != nil {
		common.LogWarn("無法解析 AI 回應",
			zap.String("content", truncate(content, maxLogContent)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	result.Amount = strings.TrimSpace(result.Amount)
	result.Brand = strings.TrimSpace(result.Brand)
	result.ItemName = strings.TrimSpace(result.ItemName)
	result.Category = strings.ToLower(strings.TrimSpace(result.Category))
	return &result, nil
}

// complete 發送聊天請求並回傳第一個選項的內容
func (c *Client) complete(ctx context.Context, messages []Message) (string, error) {
	req := Request{
		Messages:       messages,
		Model:          c.model,
		MaxTokens:      c.maxTokens,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	var (
		result Response
		apiErr Error
	)
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = truncate(resp.String(), maxLogContent)
		}
		return "", fmt.Errorf("OpenRouter API returned %d: %s", resp.StatusCode(), msg)
	}

	if len(result.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	common.LogDebug("OpenRouter 回應",
		zap.String("id", result.ID),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)
	return result.Choices[0].Message.Content, nil
}

// systemPrompt 食材解析提示詞
func systemPrompt() string {
	names := make([]string, 0, len(category.All()))
	for _, c := range category.All() {
		names = append(names, string(c))
	}

	return `You parse one Finnish shopping-list or recipe ingredient line.
Reply with a single JSON object and nothing else:
{"amount": "", "brand": "", "item_name": "", "category": "", "confidence": 0.0}
amount: quantity with unit as written, e.g. "2 dl" or "500 g"; empty if none.
brand: product brand if present; empty if none.
item_name: the product name in basic form without amount, brand or preparation notes.
category: one of ` + strings.Join(names, ", ") + `.
confidence: your certainty between 0 and 1.`
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
