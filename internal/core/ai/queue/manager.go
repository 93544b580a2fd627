// Package queue 以固定數量的 worker 限制同時進行的 AI 解析請求。
package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"ingredient-parser/internal/core/parser"
	"ingredient-parser/internal/infrastructure/config"
	"ingredient-parser/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull 隊列已滿
	ErrQueueFull = errors.New("queue is full")
	// ErrClosed 隊列管理器已關閉
	ErrClosed = errors.New("queue manager is closed")
)

// request 隊列請求
type request struct {
	ctx    context.Context
	text   string
	result chan result
}

// result 處理結果
type result struct {
	parsed *parser.AIResult
	err    error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	FailedCount    int64 `json:"failed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Manager 隊列管理器，本身也是 AI 解析器
type Manager struct {
	next      parser.AIFallback
	queue     chan *request
	done      chan struct{}
	workers   int
	maxSize   int
	processed int64
	failed    int64
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ parser.AIFallback = (*Manager)(nil)

// NewManager 創建新的隊列管理器並啟動 worker
func NewManager(next parser.AIFallback, cfg config.QueueConfig) *Manager {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = workers
	}

	m := &Manager{
		next:    next,
		queue:   make(chan *request, maxSize),
		done:    make(chan struct{}),
		workers: workers,
		maxSize: maxSize,
	}

	m.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go m.worker()
	}

	common.LogInfo("AI 請求隊列已啟動",
		zap.Int("workers", workers),
		zap.Int("max_queue_size", maxSize),
	)
	return m
}

// ParseIngredient 將請求加入隊列並等待結果；隊列已滿時立即回傳 ErrQueueFull
func (m *Manager) ParseIngredient(ctx context.Context, text string) (*parser.AIResult, error) {
	select {
	case <-m.done:
		return nil, ErrClosed
	default:
	}

	req := &request{
		ctx:    ctx,
		text:   text,
		result: make(chan result, 1),
	}

	select {
	case m.queue <- req:
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.maxSize),
		)
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		common.LogWarn("AI 請求隊列已滿", zap.Int("max_queue_size", m.maxSize))
		return nil, ErrQueueFull
	}

	select {
	case r := <-req.result:
		return r.parsed, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, ErrClosed
	}
}

func (m *Manager) worker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.done:
			return
		case req := <-m.queue:
			m.process(req)
		}
	}
}

func (m *Manager) process(req *request) {
	// 呼叫端已放棄的請求不再送出
	if err := req.ctx.Err(); err != nil {
		req.result <- result{err: err}
		return
	}

	parsed, err := m.next.ParseIngredient(req.ctx, req.text)
	atomic.AddInt64(&m.processed, 1)
	if err != nil {
		atomic.AddInt64(&m.failed, 1)
	}
	req.result <- result{parsed: parsed, err: err}
}

// Status 獲取隊列狀態
func (m *Manager) Status() Status {
	return Status{
		QueueLength:    len(m.queue),
		ProcessedCount: atomic.LoadInt64(&m.processed),
		FailedCount:    atomic.LoadInt64(&m.failed),
		MaxQueueSize:   m.maxSize,
		Workers:        m.workers,
	}
}

// Close 停止所有 worker，等待中的請求回傳 ErrClosed
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
		common.LogInfo("AI 請求隊列已關閉",
			zap.Int64("processed", atomic.LoadInt64(&m.processed)),
		)
	})
}
