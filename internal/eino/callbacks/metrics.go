package callbacks

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
)

// MetricsHandler 按节点统计调用次数、失败次数与延迟
type MetricsHandler struct {
	mu    sync.RWMutex
	nodes map[string]*nodeStats
}

type nodeStats struct {
	calls    int64
	failures int64
	totalUs  int64
	maxUs    int64
}

// NodeStats 单个节点的统计快照
type NodeStats struct {
	Calls    int64 `json:"calls"`
	Failures int64 `json:"failures"`
	AvgUs    int64 `json:"avg_us"`
	MaxUs    int64 `json:"max_us"`
}

// NewMetricsHandler 创建指标回调处理器
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{
		nodes: make(map[string]*nodeStats),
	}
}

// OnStart 计数并记录开始时间
func (h *MetricsHandler) OnStart(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackInput) context.Context {
	h.mu.Lock()
	h.statsFor(info.Name).calls++
	h.mu.Unlock()

	return context.WithValue(ctx, metricsStartTimeKey, time.Now())
}

// OnEnd 累计延迟
func (h *MetricsHandler) OnEnd(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackOutput) context.Context {
	elapsed := elapsedSince(ctx, metricsStartTimeKey).Microseconds()

	h.mu.Lock()
	defer h.mu.Unlock()

	stats := h.statsFor(info.Name)
	stats.totalUs += elapsed
	if elapsed > stats.maxUs {
		stats.maxUs = elapsed
	}
	return ctx
}

// OnError 计失败
func (h *MetricsHandler) OnError(ctx context.Context, info *callbacks.RunInfo, _ error) context.Context {
	h.mu.Lock()
	h.statsFor(info.Name).failures++
	h.mu.Unlock()
	return ctx
}

// OnStartWithStreamInput 分诊 Graph 不使用流式节点
func (h *MetricsHandler) OnStartWithStreamInput(ctx context.Context, _ *callbacks.RunInfo, input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	input.Close()
	return ctx
}

// OnEndWithStreamOutput 分诊 Graph 不使用流式节点
func (h *MetricsHandler) OnEndWithStreamOutput(ctx context.Context, _ *callbacks.RunInfo, output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	output.Close()
	return ctx
}

// Snapshot 返回按节点名索引的统计快照
func (h *MetricsHandler) Snapshot() map[string]NodeStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]NodeStats, len(h.nodes))
	for name, s := range h.nodes {
		snap := NodeStats{
			Calls:    s.calls,
			Failures: s.failures,
			MaxUs:    s.maxUs,
		}
		if succeeded := s.calls - s.failures; succeeded > 0 {
			snap.AvgUs = s.totalUs / succeeded
		}
		out[name] = snap
	}
	return out
}

// Reset 清空统计
func (h *MetricsHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nodes = make(map[string]*nodeStats)
}

func (h *MetricsHandler) statsFor(name string) *nodeStats {
	s, ok := h.nodes[name]
	if !ok {
		s = &nodeStats{}
		h.nodes[name] = s
	}
	return s
}
