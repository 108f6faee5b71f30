package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pharma-triage/pkg/logger"
)

// RequestIDKey 请求ID在Context中的键名
const RequestIDKey = "request_id"

// RequestIDHeader 请求ID的请求/响应头
const RequestIDHeader = "X-Request-ID"

// LoggingConfig 日志中间件配置
type LoggingConfig struct {
	// SkipPaths 跳过日志记录的路径（如健康检查接口）
	SkipPaths []string
	// Logger 日志器实例
	Logger logger.Logger
}

// LoggingMiddleware 返回HTTP访问日志中间件。
// 沿用调用方传入的 X-Request-ID，否则生成新的 uuid，并回写到响应头。
func LoggingMiddleware(config *LoggingConfig) gin.HandlerFunc {
	if config == nil {
		config = &LoggingConfig{SkipPaths: []string{"/health"}}
	}
	log := config.Logger
	if log == nil {
		log = logger.GetDefault()
	}

	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		// 注入后，下游所有 *Context 日志自动携带 request_id
		ctx := logger.InjectFields(c.Request.Context(), logger.Fields{RequestIDKey: requestID})
		c.Request = c.Request.WithContext(ctx)

		if shouldSkipPath(c.Request.URL.Path, config.SkipPaths) {
			c.Next()
			return
		}

		startTime := time.Now()
		c.Next()

		log.InfoContext(ctx, "HTTP请求完成",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"duration_ms", float64(time.Since(startTime).Nanoseconds())/1e6,
			"response_size", c.Writer.Size(),
			"client_ip", c.ClientIP(),
		)

		for _, err := range c.Errors {
			log.ErrorContext(ctx, "HTTP请求处理错误",
				"error", err.Error(),
				"error_type", err.Type,
			)
		}
	}
}

// shouldSkipPath 检查是否应该跳过某个路径的日志记录
func shouldSkipPath(path string, skipPaths []string) bool {
	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

// GetRequestID 从 gin.Context 中获取请求ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
