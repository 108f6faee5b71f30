package services

import (
	"context"

	"pharma-triage/internal/domain/models"
)

// TriageService 分诊服务接口
// 一次请求对应一次完整的分诊事务：向量化 -> 推理 -> 解析 -> 组装结果
type TriageService interface {
	// Handle 执行分诊
	// 仅在年龄越界时返回错误；推理链路上的任何失败都会转换为降级结果，不向上传播
	Handle(ctx context.Context, request *models.TriageRequest) (*models.TriageResult, error)
}
