package artifacts

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"pharma-triage/configs"
)

// RedisSource 从 Redis 字符串键读取制品，键名为 KeyPrefix + 制品名
type RedisSource struct {
	client *redis.Client
	prefix string
}

// NewRedisSource 创建 Redis 制品源并检查连通性
func NewRedisSource(ctx context.Context, cfg *configs.RedisConfig) (*RedisSource, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}

	return &RedisSource{
		client: client,
		prefix: cfg.KeyPrefix,
	}, nil
}

// Read 读取制品内容
func (s *RedisSource) Read(ctx context.Context, name string) ([]byte, error) {
	key := s.prefix + name
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: redis key %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("get redis key %s: %w", key, err)
	}
	return data, nil
}

// Describe 返回制品对应的 Redis 键
func (s *RedisSource) Describe(name string) string {
	return "redis://" + s.prefix + name
}

// Close 关闭 Redis 连接
func (s *RedisSource) Close() error {
	return s.client.Close()
}
