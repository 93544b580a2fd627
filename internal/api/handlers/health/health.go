package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"ingredient-parser/internal/core/ai/queue"
	"ingredient-parser/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// readyTimeout 就緒檢查中每個依賴的逾時
const readyTimeout = 2 * time.Second

// Pinger 可檢查連線的依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Learning  map[string]interface{} `json:"learning,omitempty"`
	Items     *int                   `json:"items,omitempty"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	AICache   map[string]interface{} `json:"ai_cache,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	version      string
	dependencies map[string]Pinger
	storeStats   func() map[string]interface{}
	itemCount    func(ctx context.Context) (int, error)
	queueStatus  func() queue.Status
	aiCacheStats func() map[string]interface{}
}

// Option 健康檢查選項
type Option func(*Handler)

// WithDependency 加入就緒檢查要 ping 的依賴
func WithDependency(name string, p Pinger) Option {
	return func(h *Handler) { h.dependencies[name] = p }
}

// WithStoreStats 健康檢查附上學習儲存統計
func WithStoreStats(fn func() map[string]interface{}) Option {
	return func(h *Handler) { h.storeStats = fn }
}

// WithItemCount 健康檢查附上商品數量
func WithItemCount(fn func(ctx context.Context) (int, error)) Option {
	return func(h *Handler) { h.itemCount = fn }
}

// WithQueueStatus 健康檢查附上 AI 請求隊列狀態
func WithQueueStatus(fn func() queue.Status) Option {
	return func(h *Handler) { h.queueStatus = fn }
}

// WithAICacheStats 健康檢查附上 AI 快取統計
func WithAICacheStats(fn func() map[string]interface{}) Option {
	return func(h *Handler) { h.aiCacheStats = fn }
}

// NewHandler 創建健康檢查處理器
func NewHandler(version string, opts ...Option) *Handler {
	h := &Handler{
		version:      version,
		dependencies: make(map[string]Pinger),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if h.storeStats != nil {
		response.Learning = h.storeStats()
	}
	if h.queueStatus != nil {
		status := h.queueStatus()
		response.Queue = &status
	}
	if h.aiCacheStats != nil {
		response.AICache = h.aiCacheStats()
	}
	if h.itemCount != nil {
		if n, err := h.itemCount(c.Request.Context()); err == nil {
			response.Items = &n
		} else {
			common.LogWarn("無法取得商品數量", zap.Error(err))
		}
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：所有依賴都能連線才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	checks := make(map[string]string, len(h.dependencies))
	ready := true

	for name, dep := range h.dependencies {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		err := dep.Ping(ctx)
		cancel()

		if err != nil {
			ready = false
			checks[name] = err.Error()
			common.LogWarn("依賴未就緒", zap.String("dependency", name), zap.Error(err))
			continue
		}
		checks[name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"checks": checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"checks": checks,
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
