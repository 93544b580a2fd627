// Package ingredient 食材解析與合併的 HTTP 處理器。
package ingredient

import (
	"errors"
	"fmt"
	"net/http"

	"ingredient-parser/internal/api/handlers"
	"ingredient-parser/internal/core/merger"
	"ingredient-parser/internal/core/parser"
	"ingredient-parser/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OptionsRequest 請求中可覆寫的解析選項
type OptionsRequest struct {
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`
	UseAI               *bool    `json:"use_ai,omitempty"`
}

// ParseRequest 單行解析請求
type ParseRequest struct {
	Text    string          `json:"text"`
	Options *OptionsRequest `json:"options,omitempty"`
}

// BatchRequest 多行解析請求
type BatchRequest struct {
	Lines   []string        `json:"lines" binding:"required"`
	Options *OptionsRequest `json:"options,omitempty"`
}

// BatchResponse 多行解析結果
type BatchResponse struct {
	Results []parser.Result `json:"results"`
	Count   int             `json:"count"`
}

// CreateResponse 解析並建立食材的結果
type CreateResponse struct {
	Result     parser.Result      `json:"result"`
	Ingredient *common.Ingredient `json:"ingredient"`
}

// MergeRequest 食材清單合併請求
type MergeRequest struct {
	Existing []common.Ingredient `json:"existing"`
	Incoming []common.Ingredient `json:"incoming"`
}

// MergeResponse 食材清單合併結果
type MergeResponse struct {
	Ingredients []common.Ingredient `json:"ingredients"`
	Summary     merger.Summary      `json:"summary"`
}

// AmountMergeRequest 數量合併請求
type AmountMergeRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Handler 食材處理器
type Handler struct {
	parser       *parser.Parser
	defaults     parser.Options
	maxBatchSize int
	debug        bool
}

// NewHandler 創建食材處理器
func NewHandler(p *parser.Parser, defaults parser.Options, maxBatchSize int, debug bool) *Handler {
	return &Handler{
		parser:       p,
		defaults:     defaults,
		maxBatchSize: maxBatchSize,
		debug:        debug,
	}
}

// options 以請求覆寫預設選項
func (h *Handler) options(req *OptionsRequest) (parser.Options, error) {
	opts := h.defaults
	if req == nil {
		return opts, nil
	}
	if req.ConfidenceThreshold != nil {
		v := *req.ConfidenceThreshold
		if v < 0 || v > 1 {
			return opts, common.NewValidationError("confidence_threshold must be between 0 and 1")
		}
		opts.ConfidenceThreshold = v
	}
	if req.UseAI != nil {
		opts.UseAI = *req.UseAI
	}
	return opts, nil
}

// HandleParse 解析單行食材文字
func (h *Handler) HandleParse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err), h.debug)
		return
	}

	opts, err := h.options(req.Options)
	if err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err), h.debug)
		return
	}

	c.JSON(http.StatusOK, h.parser.Parse(c.Request.Context(), req.Text, opts))
}

// HandleParseBatch 解析多行食材文字，空白行會被略過
func (h *Handler) HandleParseBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err), h.debug)
		return
	}

	if h.maxBatchSize > 0 && len(req.Lines) > h.maxBatchSize {
		err := common.NewValidationError(fmt.Sprintf("too many lines: %d > %d", len(req.Lines), h.maxBatchSize))
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err), h.debug)
		return
	}

	opts, err := h.options(req.Options)
	if err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err), h.debug)
		return
	}

	results := h.parser.ParseRecipeIngredients(c.Request.Context(), req.Lines, opts)
	common.LogInfo("批次解析完成",
		zap.String("request_id", handlers.RequestID(c)),
		zap.Int("lines", len(req.Lines)),
		zap.Int("results", len(results)),
	)

	c.JSON(http.StatusOK, BatchResponse{Results: results, Count: len(results)})
}

// HandleCreate 解析文字並建立食材
func (h *Handler) HandleCreate(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err), h.debug)
		return
	}

	opts, err := h.options(req.Options)
	if err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err), h.debug)
		return
	}

	ctx := c.Request.Context()
	result := h.parser.Parse(ctx, req.Text, opts)
	ingredient, err := h.parser.CreateIngredient(ctx, result)
	switch {
	case errors.Is(err, parser.ErrEmptyItemName):
		handlers.RespondError(c, common.ErrEmptyIngredient.Wrap(err), h.debug)
		return
	case err != nil:
		handlers.RespondError(c, common.ErrRepositoryFailed.Wrap(err), h.debug)
		return
	}

	c.JSON(http.StatusCreated, CreateResponse{Result: result, Ingredient: ingredient})
}

// HandleMerge 合併兩份食材清單
func (h *Handler) HandleMerge(c *gin.Context) {
	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err), h.debug)
		return
	}

	c.JSON(http.StatusOK, MergeResponse{
		Ingredients: merger.MergeIngredients(req.Existing, req.Incoming),
		Summary:     merger.MergeSummary(req.Existing, req.Incoming),
	})
}

// HandleMergeAmounts 合併兩個數量字串
func (h *Handler) HandleMergeAmounts(c *gin.Context) {
	var req AmountMergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err), h.debug)
		return
	}

	c.JSON(http.StatusOK, gin.H{"amount": merger.MergeAmounts(req.A, req.B)})
}
