package configs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValidation(t *testing.T) {
	// 测试 DefaultConfig 可以通过验证
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig validation failed: %v", err)
	}
}

func TestArtifactsConfigValidation(t *testing.T) {
	files := DefaultConfig().Artifacts.Files

	tests := []struct {
		name    string
		config  ArtifactsConfig
		wantErr bool
	}{
		{
			name:    "file source with dir passes",
			config:  ArtifactsConfig{Source: "file", Dir: "models", Files: files},
			wantErr: false,
		},
		{
			name:    "file source without dir fails",
			config:  ArtifactsConfig{Source: "file", Files: files},
			wantErr: true,
		},
		{
			name: "redis source with addr passes",
			config: ArtifactsConfig{
				Source: "redis",
				Files:  files,
				Redis:  RedisConfig{Addr: "localhost:6379"},
			},
			wantErr: false,
		},
		{
			name:    "redis source without addr fails",
			config:  ArtifactsConfig{Source: "redis", Files: files},
			wantErr: true,
		},
		{
			name:    "unknown source fails",
			config:  ArtifactsConfig{Source: "s3", Dir: "models", Files: files},
			wantErr: true,
		},
		{
			name: "missing vocabulary fails",
			config: ArtifactsConfig{
				Source: "file",
				Dir:    "models",
				Files: ArtifactFiles{
					Model:      "model.json",
					OTC:        "otc_database.json",
					Safety:     "safety_data.json",
					Categories: "disease_categories.json",
				},
			},
			wantErr: true,
		},
		{
			name: "classes file is optional",
			config: ArtifactsConfig{
				Source: "file",
				Dir:    "models",
				Files: ArtifactFiles{
					Model:      "model.json",
					Vocabulary: "symptom_vocab.json",
					OTC:        "otc_database.json",
					Safety:     "safety_data.json",
					Categories: "disease_categories.json",
				},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("ArtifactsConfig.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRedisConfigDefaultsTimeout(t *testing.T) {
	cfg := RedisConfig{Addr: "localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected default timeout 5s, got %v", cfg.Timeout)
	}
}

func TestLoggingConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  LoggingConfig
		wantErr bool
	}{
		{name: "stdout text", config: LoggingConfig{Level: "info", Output: "stdout"}, wantErr: false},
		{name: "json format", config: LoggingConfig{Level: "debug", Output: "stderr", Format: "json"}, wantErr: false},
		{name: "bad level", config: LoggingConfig{Level: "trace", Output: "stdout"}, wantErr: true},
		{name: "file without path", config: LoggingConfig{Level: "info", Output: "file"}, wantErr: true},
		{name: "bad format", config: LoggingConfig{Level: "info", Output: "stdout", Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("LoggingConfig.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestONNXConfigDefaults(t *testing.T) {
	cfg := ONNXConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.InputName != "float_input" || cfg.LabelOutput != "output_label" || cfg.ProbabilityOutput != "output_probability" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
artifacts:
  dir: /srv/models
  files:
    model: model.onnx
logging:
  level: debug
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("TRIAGE_CONFIG", path)
	t.Setenv("TRIAGE_PORT", "9191")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("expected env port 9191, got %d", cfg.Server.Port)
	}
	if cfg.Artifacts.Dir != "/srv/models" {
		t.Errorf("expected dir from file, got %s", cfg.Artifacts.Dir)
	}
	if cfg.Artifacts.Files.Model != "model.onnx" {
		t.Errorf("expected model from file, got %s", cfg.Artifacts.Files.Model)
	}
	if cfg.Artifacts.Files.Vocabulary != "symptom_vocab.json" {
		t.Errorf("expected default vocabulary kept, got %s", cfg.Artifacts.Files.Vocabulary)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
}
