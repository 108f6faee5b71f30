package configs

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	einoconfig "pharma-triage/internal/eino/config"
)

// Load 加载并验证应用程序配置。
// 它按照以下优先级顺序加载配置：
// 1. 默认配置
// 2. 配置文件（config.yaml，支持多个搜索路径）
// 3. 环境变量（覆盖配置文件中的值）
//
// 参数 ctx: 上下文对象。
// 返回加载并验证后的 Config 指针，如果出错则返回 error。
func Load(ctx context.Context) (*Config, error) {
	// 加载 .env 文件（如果存在）
	// 忽略错误，因为 .env 文件是可选的
	_ = godotenv.Load()

	config := DefaultConfig()

	// 尝试加载配置文件
	configPaths := []string{
		"configs/config.yaml",
		"config.yaml",
		"/etc/pharma-triage/config.yaml",
	}
	if path := os.Getenv("TRIAGE_CONFIG"); path != "" {
		configPaths = append([]string{path}, configPaths...)
	}

	for _, path := range configPaths {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, err
			}
			break
		}
	}

	// 从环境变量覆盖配置
	loadFromEnv(config)

	// 验证配置
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig 创建并返回一个包含默认值的 Config 对象。
// 默认制品文件名与训练产出的目录结构保持一致。
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                    "0.0.0.0",
			Port:                    8000,
			ReadTimeout:             30 * time.Second,
			WriteTimeout:            30 * time.Second,
			IdleTimeout:             60 * time.Second,
			GracefulShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:            1 << 20,
			AllowOrigins:            []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stdout",
		},
		Artifacts: ArtifactsConfig{
			Source: "file",
			Dir:    "models",
			Files: ArtifactFiles{
				Model:      "model.json",
				Vocabulary: "symptom_vocab.json",
				Classes:    "disease_classes.json",
				OTC:        "otc_database.json",
				Safety:     "safety_data.json",
				Categories: "disease_categories.json",
			},
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "pharma-triage:artifact:",
				Timeout:   5 * time.Second,
			},
		},
		Model: ModelConfig{
			ONNX: ONNXConfig{
				InputName:         "float_input",
				LabelOutput:       "output_label",
				ProbabilityOutput: "output_probability",
			},
		},
		Eino: *einoconfig.DefaultTriageConfig(),
	}
}

// loadFromEnv 从环境变量中读取配置并覆盖 Config 中的值。
// 支持 TRIAGE_PORT, TRIAGE_ARTIFACT_SOURCE, TRIAGE_ARTIFACT_DIR, TRIAGE_MODEL_FILE,
// REDIS_ADDR, REDIS_PASSWORD, ONNXRUNTIME_LIB, TRIAGE_LOG_LEVEL 等环境变量。
func loadFromEnv(config *Config) {
	// Server 配置
	if port := os.Getenv("TRIAGE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 && p <= 65535 {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("TRIAGE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// 制品配置
	if source := os.Getenv("TRIAGE_ARTIFACT_SOURCE"); source != "" {
		config.Artifacts.Source = source
	}

	if dir := os.Getenv("TRIAGE_ARTIFACT_DIR"); dir != "" {
		config.Artifacts.Dir = dir
	}

	if model := os.Getenv("TRIAGE_MODEL_FILE"); model != "" {
		config.Artifacts.Files.Model = model
	}

	// Redis 配置
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Artifacts.Redis.Addr = addr
	}

	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Artifacts.Redis.Password = password
	}

	// ONNX Runtime 动态库
	if lib := os.Getenv("ONNXRUNTIME_LIB"); lib != "" {
		config.Model.ONNX.SharedLibraryPath = lib
	}
}
