package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pharma-triage/internal/app/middleware"
	"pharma-triage/pkg/status"
)

// APIResponse 管理类接口（就绪、统计）的统一响应格式。
// /predict 与 /health 保持原有的裸响应格式，不使用该包装。
type APIResponse struct {
	Success   bool        `json:"success"`
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidationDetail 单个字段的校验错误，与 FastAPI 的 422 响应条目结构一致
type ValidationDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func respondWithSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Success:   true,
		Code:      int(status.CodeOK),
		Message:   message,
		Data:      data,
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now().Unix(),
	})
}

func respondWithError(c *gin.Context, code status.StatusCode, message, detail string) {
	response := APIResponse{
		Success:   false,
		Code:      int(code),
		Message:   message,
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now().Unix(),
	}
	if detail != "" {
		response.Data = ErrorDetail{
			Message: detail,
			Code:    code.String(),
		}
	}
	c.AbortWithStatusJSON(code.HTTPStatus(), response)
}

// respondWithDetail 返回 {"detail": ...} 格式的错误
func respondWithDetail(c *gin.Context, httpStatus int, detail interface{}) {
	c.AbortWithStatusJSON(httpStatus, gin.H{"detail": detail})
}
