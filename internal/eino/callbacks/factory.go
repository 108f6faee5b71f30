package callbacks

import (
	"github.com/cloudwego/eino/callbacks"

	"pharma-triage/internal/eino/config"
	"pharma-triage/pkg/logger"
)

// Factory 根据配置创建回调处理器
type Factory struct {
	cfg     *config.CallbacksConfig
	logger  logger.Logger
	metrics *MetricsHandler
}

// NewFactory 创建回调工厂。指标处理器在工厂内只创建一次，便于统计接口读取
func NewFactory(cfg *config.CallbacksConfig, log logger.Logger) *Factory {
	f := &Factory{
		cfg:    cfg,
		logger: log,
	}
	if cfg.Metrics.Enabled {
		f.metrics = NewMetricsHandler()
	}
	return f
}

// CreateHandlers 返回所有启用的处理器
func (f *Factory) CreateHandlers() []callbacks.Handler {
	handlers := make([]callbacks.Handler, 0, 2)

	if f.cfg.Logging.Enabled {
		handlers = append(handlers, NewLoggingHandler(f.logger, &f.cfg.Logging))
	}
	if f.metrics != nil {
		handlers = append(handlers, f.metrics)
	}

	return handlers
}

// Metrics 指标处理器，未启用时为 nil
func (f *Factory) Metrics() *MetricsHandler {
	return f.metrics
}
