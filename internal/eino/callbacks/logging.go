// Package callbacks 提供分诊 Graph 的节点级回调处理器
package callbacks

import (
	"context"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"

	"pharma-triage/internal/eino/config"
	"pharma-triage/pkg/logger"
)

// LoggingHandler 记录每个节点的开始、结束与错误。
// 节点出错不代表请求失败，分诊流程会降级为启发式结果，因此错误记为 Warn。
type LoggingHandler struct {
	logger logger.Logger
	debug  bool
}

// NewLoggingHandler 创建日志回调处理器
func NewLoggingHandler(log logger.Logger, cfg *config.LoggingCallbackConfig) callbacks.Handler {
	return &LoggingHandler{
		logger: log.With("graph_component", "triage_node"),
		debug:  cfg.Level != "info",
	}
}

// OnStart 记录节点开始，并在上下文中保存开始时间
func (h *LoggingHandler) OnStart(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackInput) context.Context {
	ctx = logger.InjectFields(ctx, logger.Fields{"node": info.Name})
	h.log(ctx, "节点开始执行", "type", info.Type)
	return context.WithValue(ctx, startTimeKey, time.Now())
}

// OnEnd 记录节点耗时
func (h *LoggingHandler) OnEnd(ctx context.Context, _ *callbacks.RunInfo, _ callbacks.CallbackOutput) context.Context {
	h.log(ctx, "节点执行完成",
		"elapsed_us", elapsedSince(ctx, startTimeKey).Microseconds(),
	)
	return ctx
}

// OnError 记录节点错误
func (h *LoggingHandler) OnError(ctx context.Context, _ *callbacks.RunInfo, err error) context.Context {
	h.logger.WarnContext(ctx, "节点执行出错",
		"elapsed_us", elapsedSince(ctx, startTimeKey).Microseconds(),
		"error", err.Error(),
	)
	return ctx
}

// OnStartWithStreamInput 分诊 Graph 不使用流式节点，关闭输入流即可
func (h *LoggingHandler) OnStartWithStreamInput(ctx context.Context, _ *callbacks.RunInfo, input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	input.Close()
	return ctx
}

// OnEndWithStreamOutput 同上
func (h *LoggingHandler) OnEndWithStreamOutput(ctx context.Context, _ *callbacks.RunInfo, output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	output.Close()
	return ctx
}

func (h *LoggingHandler) log(ctx context.Context, msg string, args ...interface{}) {
	if h.debug {
		h.logger.DebugContext(ctx, msg, args...)
		return
	}
	h.logger.InfoContext(ctx, msg, args...)
}

func elapsedSince(ctx context.Context, key contextKey) time.Duration {
	start, ok := ctx.Value(key).(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start)
}

// contextKey 上下文键类型
type contextKey string

const (
	startTimeKey        contextKey = "triage_log_start"
	metricsStartTimeKey contextKey = "triage_metrics_start"
)
