package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pharma-triage/configs"
	"pharma-triage/internal/app/handlers"
	"pharma-triage/pkg/logger"
)

// Server HTTP服务器，负责路由初始化、启动与优雅关闭
type Server struct {
	config        *configs.ServerConfig
	httpServer    *http.Server
	engine        *gin.Engine
	triageHandler *handlers.TriageHandler
	logger        logger.Logger
}

// NewServer 创建HTTP服务器实例
func NewServer(config *configs.ServerConfig, triageHandler *handlers.TriageHandler, log logger.Logger) *Server {
	// 根据配置设置Gin模式
	if config.Host == "0.0.0.0" || config.Host == "" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	SetupRoutes(engine, config, triageHandler, log)

	return &Server{
		config:        config,
		engine:        engine,
		triageHandler: triageHandler,
		logger:        log,
	}
}

// Engine 返回已注册路由的 gin 引擎
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start 非阻塞启动；监听失败通过 errChan 通知调用方
func (s *Server) Start(ctx context.Context, errChan chan<- error) {
	s.httpServer = &http.Server{
		Addr:         s.config.GetAddr(),
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.logger.InfoContext(ctx, "HTTP服务器初始化完成",
		"addr", s.httpServer.Addr,
		"read_timeout", s.config.ReadTimeout,
		"write_timeout", s.config.WriteTimeout,
		"idle_timeout", s.config.IdleTimeout)

	go func() {
		s.logger.InfoContext(ctx, "HTTP服务器开始监听", "addr", s.httpServer.Addr)

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorContext(ctx, "HTTP服务器启动失败", "error", err.Error())
			errChan <- err
		}
	}()
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.InfoContext(ctx, "开始执行HTTP服务器优雅关闭")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GracefulShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.ErrorContext(ctx, "HTTP服务器优雅关闭失败", "error", err.Error())
		return fmt.Errorf("HTTP服务器关闭失败: %w", err)
	}

	s.logger.InfoContext(ctx, "HTTP服务器优雅关闭完成")
	return nil
}
