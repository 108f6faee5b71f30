package artifacts

import (
	"context"
	"fmt"

	"pharma-triage/configs"
)

// NewSource 根据配置创建制品源
func NewSource(ctx context.Context, cfg *configs.ArtifactsConfig) (Source, error) {
	if cfg == nil {
		return nil, fmt.Errorf("artifacts config cannot be nil")
	}

	switch cfg.Source {
	case "file":
		return NewFileSource(cfg.Dir), nil
	case "redis":
		source, err := NewRedisSource(ctx, &cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis artifact source: %w", err)
		}
		return source, nil
	default:
		return nil, fmt.Errorf("unsupported artifact source: %s", cfg.Source)
	}
}
