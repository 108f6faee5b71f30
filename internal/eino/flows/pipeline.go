package flows

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"

	"pharma-triage/internal/domain/models"
	"pharma-triage/internal/domain/services"
	"pharma-triage/internal/eino/nodes"
	"pharma-triage/pkg/logger"
)

// ErrAgeOutOfRange 年龄不在 [0,120]，是分诊流程唯一会返回的错误
var ErrAgeOutOfRange = errors.New("age out of range")

var _ services.TriageService = (*TriagePipeline)(nil)

// PipelineStats 请求计数
type PipelineStats struct {
	Requests  int64 `json:"requests"`
	Fallbacks int64 `json:"fallbacks"`
	Rejected  int64 `json:"rejected"`
}

// TriagePipeline 执行分诊 Graph，并把任何失败转换为启发式降级结果
type TriagePipeline struct {
	runnable compose.Runnable[*models.TriageRequest, *models.TriageResult]
	options  []compose.Option
	logger   logger.Logger

	requests  atomic.Int64
	fallbacks atomic.Int64
	rejected  atomic.Int64
}

// NewTriagePipeline 编译 Graph 并创建流程
func NewTriagePipeline(ctx context.Context, graph *TriageGraph, log logger.Logger, handlers ...callbacks.Handler) (*TriagePipeline, error) {
	runnable, err := graph.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile triage graph: %w", err)
	}

	return &TriagePipeline{
		runnable: runnable,
		options:  callbackOptions(handlers),
		logger:   log,
	}, nil
}

// Handle 处理一次分诊请求。
// 年龄越界直接拒绝且不做向量化；其余任何错误或 panic 都得到 used_fallback=true 的结果。
func (p *TriagePipeline) Handle(ctx context.Context, req *models.TriageRequest) (result *models.TriageResult, err error) {
	if req == nil {
		p.rejected.Add(1)
		return nil, fmt.Errorf("%w: age is missing", ErrAgeOutOfRange)
	}
	if req.Age < models.MinPatientAge || req.Age > models.MaxPatientAge {
		p.rejected.Add(1)
		return nil, fmt.Errorf("%w: %d not in [%d, %d]",
			ErrAgeOutOfRange, req.Age, models.MinPatientAge, models.MaxPatientAge)
	}
	p.requests.Add(1)

	defer func() {
		if r := recover(); r != nil {
			result = p.fallback(ctx, req, fmt.Errorf("panic: %v", r))
			err = nil
		}
	}()

	result, invokeErr := p.runnable.Invoke(ctx, req, p.options...)
	if invokeErr == nil && result == nil {
		invokeErr = errors.New("triage graph returned no result")
	}
	if invokeErr != nil {
		return p.fallback(ctx, req, invokeErr), nil
	}
	return result, nil
}

// Stats 返回请求计数快照
func (p *TriagePipeline) Stats() PipelineStats {
	return PipelineStats{
		Requests:  p.requests.Load(),
		Fallbacks: p.fallbacks.Load(),
		Rejected:  p.rejected.Load(),
	}
}

func (p *TriagePipeline) fallback(ctx context.Context, req *models.TriageRequest, cause error) *models.TriageResult {
	p.fallbacks.Add(1)
	p.logger.WarnContext(ctx, "模型推理失败，使用启发式风险",
		"age", req.Age,
		"symptoms", len(req.Symptoms),
		"error", cause.Error(),
	)

	risk := nodes.ScoreFromHeuristic(req.Age, len(req.Symptoms))
	return &models.TriageResult{
		Prediction:   nil,
		Category:     models.CategoryUnknown,
		Advice:       models.AdviceModelFailure,
		Risk:         &risk,
		UsedFallback: true,
		Features: map[string]any{
			models.FeatureAge:      req.Age,
			models.FeatureSymptoms: echoSymptoms(req.Symptoms),
			models.FeatureError:    cause.Error(),
		},
	}
}
