// Package config 定义分诊 Graph 的配置结构
package config

// TriageConfig 分诊 Graph 的总配置结构。
// 包含 Graph 名称与回调系统的配置。
type TriageConfig struct {
	GraphName string          `yaml:"graph_name"`
	Callbacks CallbacksConfig `yaml:"callbacks"`
}

// CallbacksConfig 定义 Graph 节点的回调配置。
// 支持节点级日志与延迟指标统计。
type CallbacksConfig struct {
	Logging LoggingCallbackConfig `yaml:"logging"`
	Metrics MetricsCallbackConfig `yaml:"metrics"`
}

// LoggingCallbackConfig 定义日志回调的配置。
type LoggingCallbackConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"` // debug, info
}

// MetricsCallbackConfig 定义指标统计回调的配置。
type MetricsCallbackConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultTriageConfig 返回默认的分诊 Graph 配置。
func DefaultTriageConfig() *TriageConfig {
	return &TriageConfig{
		GraphName: "symptom_triage",
		Callbacks: CallbacksConfig{
			Logging: LoggingCallbackConfig{
				Enabled: true,
				Level:   "debug",
			},
			Metrics: MetricsCallbackConfig{
				Enabled: true,
			},
		},
	}
}
