package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pharma-triage/configs"
	"pharma-triage/internal/app/handlers"
	"pharma-triage/internal/app/middleware"
	"pharma-triage/pkg/logger"
)

// SetupRoutes 注册中间件与路由。
// /predict 与 /health 保持原服务的路径，/v1/triage 下提供同样的预测接口以及管理接口。
func SetupRoutes(engine *gin.Engine, cfg *configs.ServerConfig, triageHandler *handlers.TriageHandler, log logger.Logger) {
	setupMiddleware(engine, cfg, log)

	engine.GET("/health", triageHandler.Health)
	engine.POST("/predict", triageHandler.Predict)

	v1 := engine.Group("/v1")
	triage := v1.Group("/triage")

	// 分诊预测
	triage.POST("/predict", triageHandler.Predict)
	// 已加载制品概况
	triage.GET("/ready", triageHandler.Ready)
	// 请求计数与节点延迟
	triage.GET("/stats", triageHandler.Stats)
}

// setupMiddleware 设置全局中间件
func setupMiddleware(engine *gin.Engine, cfg *configs.ServerConfig, log logger.Logger) {
	// 捕获panic并返回500错误
	engine.Use(gin.Recovery())

	engine.Use(cors.New(corsConfig(cfg.AllowOrigins)))

	// 跳过健康检查路径的日志记录，减少日志噪音
	engine.Use(middleware.LoggingMiddleware(&middleware.LoggingConfig{
		SkipPaths: []string{"/health"},
		Logger:    log,
	}))

	engine.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
}

// corsConfig 未配置来源或包含 "*" 时允许所有来源
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
