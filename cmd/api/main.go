package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ingredient-parser/internal/api"
	"ingredient-parser/internal/api/handlers/health"
	"ingredient-parser/internal/core/ai/cache"
	"ingredient-parser/internal/core/ai/openrouter"
	"ingredient-parser/internal/core/ai/queue"
	"ingredient-parser/internal/core/category"
	"ingredient-parser/internal/core/lemmatizer"
	"ingredient-parser/internal/core/parser"
	"ingredient-parser/internal/infrastructure/config"
	"ingredient-parser/internal/infrastructure/itemrepo"
	"ingredient-parser/internal/infrastructure/kvstore"
	"ingredient-parser/internal/pkg/common"

	"go.uber.org/zap"
)

// startupTimeout 連線外部儲存的逾時
const startupTimeout = 10 * time.Second

func main() {
	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("learning_backend", cfg.Learning.Backend),
		zap.String("items_backend", cfg.Items.Backend),
		zap.Bool("openrouter_enabled", cfg.OpenRouter.Enabled),
		zap.String("openrouter_api_key", config.MaskAPIKey(cfg.OpenRouter.APIKey)),
		zap.String("openrouter_model", cfg.OpenRouter.Model),
	)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	store, err := kvstore.New(ctx, cfg.Learning)
	cancel()
	if err != nil {
		common.LogFatal("Failed to initialize learning store", zap.Error(err))
	}
	defer store.Close()

	items, err := itemrepo.New(cfg.Items)
	if err != nil {
		common.LogFatal("Failed to initialize item repository", zap.Error(err))
	}
	defer items.Close()

	ctx, cancel = context.WithTimeout(context.Background(), startupTimeout)
	classifier := category.NewClassifier(ctx, lemmatizer.New(),
		category.WithStore(store),
		category.WithStorageKey(cfg.Learning.Key),
		category.WithMaxEntries(cfg.Learning.MaxEntries),
		category.WithMinConfidence(cfg.Learning.MinConfidence),
	)
	cancel()

	parserOpts := []parser.Option{parser.WithItemRepository(items)}
	healthOpts := []health.Option{
		health.WithDependency("learning_store", store),
		health.WithDependency("items", items),
		health.WithStoreStats(store.Stats),
		health.WithItemCount(items.Count),
	}
	if cfg.OpenRouter.Enabled {
		client, err := openrouter.NewClient(cfg.OpenRouter)
		if err != nil {
			common.LogFatal("Failed to initialize OpenRouter client", zap.Error(err))
		}
		aiQueue := queue.NewManager(client, cfg.Queue)
		defer aiQueue.Close()
		healthOpts = append(healthOpts, health.WithQueueStatus(aiQueue.Status))

		var fallback parser.AIFallback = aiQueue
		if cfg.OpenRouter.Cache.Enabled {
			aiCache := cache.New(aiQueue, kvstore.NewMemoryStore(cfg.OpenRouter.Cache.MaxKeys))
			healthOpts = append(healthOpts, health.WithAICacheStats(aiCache.Stats))
			fallback = aiCache
		}
		parserOpts = append(parserOpts, parser.WithAIFallback(fallback))
	}
	p := parser.New(classifier, parserOpts...)

	healthHandler := health.NewHandler(cfg.App.Version, healthOpts...)

	router := api.SetupRouter(cfg, api.Dependencies{
		Parser:     p,
		Classifier: classifier,
		Health:     healthHandler,
	})

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
