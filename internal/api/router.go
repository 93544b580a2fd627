package api

import (
	"time"

	categoryHandler "ingredient-parser/internal/api/handlers/category"
	"ingredient-parser/internal/api/handlers/health"
	ingredientHandler "ingredient-parser/internal/api/handlers/ingredient"
	"ingredient-parser/internal/api/middleware"
	"ingredient-parser/internal/core/category"
	"ingredient-parser/internal/core/parser"
	"ingredient-parser/internal/infrastructure/config"
	"ingredient-parser/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由需要的服務
type Dependencies struct {
	Parser     *parser.Parser
	Classifier *category.Classifier
	Health     *health.Handler
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 健康檢查路由
	if deps.Health == nil {
		deps.Health = health.NewHandler(cfg.App.Version)
	}
	router.GET("/health", deps.Health.HealthCheck)
	router.GET("/ready", deps.Health.ReadinessCheck)
	router.GET("/live", deps.Health.LivenessCheck)

	defaults := parser.Options{
		ConfidenceThreshold: cfg.Parser.ConfidenceThreshold,
		UseAI:               cfg.Parser.UseAI,
	}
	ingredients := ingredientHandler.NewHandler(deps.Parser, defaults, cfg.Parser.MaxBatchSize, cfg.App.Debug)
	categories := categoryHandler.NewHandler(deps.Classifier, cfg.App.Debug)

	api := router.Group("/api/v1")
	{
		// 寫入類請求去重
		dedup := middleware.Deduplication(cfg.DedupWindow)

		ingredientGroup := api.Group("/ingredients")
		{
			ingredientGroup.POST("/parse", ingredients.HandleParse)
			ingredientGroup.POST("/parse/batch", ingredients.HandleParseBatch)
			ingredientGroup.POST("", dedup, ingredients.HandleCreate)
			ingredientGroup.POST("/merge", ingredients.HandleMerge)
		}

		api.POST("/amounts/merge", ingredients.HandleMergeAmounts)

		categoryGroup := api.Group("/categories")
		{
			categoryGroup.GET("", categories.HandleList)
			categoryGroup.POST("/detect", categories.HandleDetect)
			categoryGroup.POST("/learn", dedup, categories.HandleLearn)
			categoryGroup.GET("/stats", categories.HandleStats)
			categoryGroup.GET("/:category/items", categories.HandleLearnedItems)
			categoryGroup.DELETE("/learning", categories.HandleClearLearning)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}
