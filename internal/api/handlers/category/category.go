// Package category 商品分類與分類學習的 HTTP 處理器。
package category

import (
	"errors"
	"net/http"
	"strings"

	"ingredient-parser/internal/api/handlers"
	coreCategory "ingredient-parser/internal/core/category"
	"ingredient-parser/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DetectRequest 分類判定請求
type DetectRequest struct {
	Name string `json:"name" binding:"required"`
}

// LearnRequest 使用者修正分類
type LearnRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required"`
}

// LearnResponse 學習結果；persisted 為 false 表示只更新了記憶體
type LearnResponse struct {
	Name      string                `json:"name"`
	Category  coreCategory.Category `json:"category"`
	Persisted bool                  `json:"persisted"`
}

// Handler 分類處理器
type Handler struct {
	classifier *coreCategory.Classifier
	debug      bool
}

// NewHandler 創建分類處理器
func NewHandler(classifier *coreCategory.Classifier, debug bool) *Handler {
	return &Handler{classifier: classifier, debug: debug}
}

// HandleDetect 判定商品分類
func (h *Handler) HandleDetect(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err), h.debug)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":     req.Name,
		"category": h.classifier.DetectCategory(req.Name),
	})
}

// HandleLearn 記錄使用者的分類修正
func (h *Handler) HandleLearn(c *gin.Context) {
	var req LearnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.Wrap(err), h.debug)
		return
	}

	cat := coreCategory.Category(strings.ToLower(strings.TrimSpace(req.Category)))
	err := h.classifier.LearnFromUserChange(c.Request.Context(), req.Name, cat)
	switch {
	case errors.Is(err, coreCategory.ErrEmptyItemName):
		handlers.RespondError(c, common.ErrEmptyIngredient.Wrap(err), h.debug)
		return
	case errors.Is(err, coreCategory.ErrUnknownCategory):
		handlers.RespondError(c, common.ErrUnknownCategory.Wrap(err), h.debug)
		return
	case err != nil:
		common.LogWarn("分類學習資料未能寫入儲存",
			zap.String("request_id", handlers.RequestID(c)),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, LearnResponse{
		Name:      common.NormalizeName(req.Name),
		Category:  cat,
		Persisted: err == nil,
	})
}

// HandleList 列出固定的分類集合
func (h *Handler) HandleList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.classifier.Categories()})
}

// HandleStats 學習資料統計
func (h *Handler) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.classifier.LearningStatistics())
}

// HandleLearnedItems 列出某分類下學習過的商品
func (h *Handler) HandleLearnedItems(c *gin.Context) {
	cat := coreCategory.Category(strings.ToLower(c.Param("category")))
	if !cat.IsValid() {
		handlers.RespondError(c, common.ErrUnknownCategory, h.debug)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": cat,
		"items":    h.classifier.LearnedItemsForCategory(cat),
	})
}

// HandleClearLearning 清除所有學習資料
func (h *Handler) HandleClearLearning(c *gin.Context) {
	if err := h.classifier.ClearLearningData(c.Request.Context()); err != nil {
		handlers.RespondError(c, common.ErrStorageUnavailable.Wrap(err), h.debug)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
