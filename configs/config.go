package configs

import (
	"fmt"
	"time"

	einoconfig "pharma-triage/internal/eino/config"
)

// Config 主配置结构体，定义了应用程序的所有配置项。
// 包含服务器、日志、模型制品、模型运行时和分诊 Graph 等模块的配置信息。
type Config struct {
	Server    ServerConfig            `yaml:"server"`
	Logging   LoggingConfig           `yaml:"logging"`
	Artifacts ArtifactsConfig         `yaml:"artifacts"`
	Model     ModelConfig             `yaml:"model"`
	Eino      einoconfig.TriageConfig `yaml:"eino"` // 分诊 Graph 配置
}

// ServerConfig 定义服务器相关的配置参数。
// 包含监听地址、端口、超时设置、请求体大小限制和跨域配置。
type ServerConfig struct {
	Host                    string        `yaml:"host"`
	Port                    int           `yaml:"port"`
	ReadTimeout             time.Duration `yaml:"read_timeout"`
	WriteTimeout            time.Duration `yaml:"write_timeout"`
	IdleTimeout             time.Duration `yaml:"idle_timeout"`
	GracefulShutdownTimeout time.Duration `yaml:"graceful_shutdown_timeout"`
	MaxBodyBytes            int64         `yaml:"max_body_bytes"`
	AllowOrigins            []string      `yaml:"allow_origins"`
}

// LoggingConfig 定义日志系统的配置参数。
// 包含日志级别、输出目标（stdout/stderr/file）和格式（text/json）。
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
	Format   string `yaml:"format"`
}

// ArtifactsConfig 定义启动时加载的静态制品来源。
// 制品只在启动时读取一次，任何读取或解析失败都会终止启动。
type ArtifactsConfig struct {
	Source string        `yaml:"source"` // file, redis
	Dir    string        `yaml:"dir"`
	Files  ArtifactFiles `yaml:"files"`
	Redis  RedisConfig   `yaml:"redis"`
}

// ArtifactFiles 定义各制品的名称（文件名或 Redis 键后缀）。
// Classes 为可选制品，模型自身不带类别列表时使用。
type ArtifactFiles struct {
	Model      string `yaml:"model"`
	Vocabulary string `yaml:"vocabulary"`
	Classes    string `yaml:"classes"`
	OTC        string `yaml:"otc"`
	Safety     string `yaml:"safety"`
	Categories string `yaml:"categories"`
}

// RedisConfig 定义 Redis 制品源的连接配置。
type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ModelConfig 定义模型运行时的配置。
type ModelConfig struct {
	ONNX ONNXConfig `yaml:"onnx"`
}

// ONNXConfig 定义 ONNX Runtime 的配置。
// 输入输出名称默认对应 skl2onnx 导出的分类器（需关闭 zipmap）。
type ONNXConfig struct {
	SharedLibraryPath string `yaml:"shared_library_path"`
	InputName         string `yaml:"input_name"`
	LabelOutput       string `yaml:"label_output"`
	ProbabilityOutput string `yaml:"probability_output"`
}

// Validate 检查 Config 配置结构体的有效性。
// 依次调用各个子配置项的 Validate 方法，如果发现无效配置，返回相应的错误。
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	if err := c.Artifacts.Validate(); err != nil {
		return fmt.Errorf("artifacts config validation failed: %w", err)
	}

	if err := c.Model.Validate(); err != nil {
		return fmt.Errorf("model config validation failed: %w", err)
	}

	return nil
}

// Validate 检查 ServerConfig 配置的有效性。
// 确保端口号在有效范围内，且超时设置为正数。
func (s *ServerConfig) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port: %d", s.Port)
	}

	if s.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive")
	}

	if s.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive")
	}

	if s.MaxBodyBytes <= 0 {
		s.MaxBodyBytes = 1 << 20
	}

	if s.GracefulShutdownTimeout <= 0 {
		s.GracefulShutdownTimeout = 30 * time.Second
	}

	return nil
}

// Validate 检查 LoggingConfig 配置的有效性。
// 确保日志级别、输出目标和格式有效，如果输出到文件，确保文件路径已指定。
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}

	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	validOutputs := map[string]bool{
		"stdout": true, "stderr": true, "file": true,
	}

	if !validOutputs[l.Output] {
		return fmt.Errorf("invalid log output: %s", l.Output)
	}

	if l.Output == "file" && l.FilePath == "" {
		return fmt.Errorf("file path is required when output is file")
	}

	// 验证日志格式，空值默认为 text
	validFormats := map[string]bool{
		"text": true, "json": true, "": true,
	}

	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s", l.Format)
	}

	return nil
}

// Validate 检查 ArtifactsConfig 配置的有效性。
// 确保来源类型受支持，且必需的制品名称均已配置。
func (a *ArtifactsConfig) Validate() error {
	switch a.Source {
	case "file":
		if a.Dir == "" {
			return fmt.Errorf("artifact dir is required when source is file")
		}
	case "redis":
		if err := a.Redis.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported artifact source: %s", a.Source)
	}

	required := map[string]string{
		"model":      a.Files.Model,
		"vocabulary": a.Files.Vocabulary,
		"otc":        a.Files.OTC,
		"safety":     a.Files.Safety,
		"categories": a.Files.Categories,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("artifact %s is required", name)
		}
	}

	return nil
}

// Validate 检查 RedisConfig 配置的有效性。
func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}

	if r.DB < 0 {
		return fmt.Errorf("invalid redis db: %d", r.DB)
	}

	if r.Timeout <= 0 {
		r.Timeout = 5 * time.Second // 默认超时时间
	}

	return nil
}

// Validate 检查 ModelConfig 配置的有效性。
func (m *ModelConfig) Validate() error {
	return m.ONNX.Validate()
}

// Validate 检查 ONNXConfig 配置的有效性，未设置的张量名称使用 skl2onnx 默认值。
func (o *ONNXConfig) Validate() error {
	if o.InputName == "" {
		o.InputName = "float_input"
	}
	if o.LabelOutput == "" {
		o.LabelOutput = "output_label"
	}
	if o.ProbabilityOutput == "" {
		o.ProbabilityOutput = "output_probability"
	}
	return nil
}

// GetAddr 获取服务器的完整监听地址。
// 返回格式为 "Host:Port" 的字符串。
func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
