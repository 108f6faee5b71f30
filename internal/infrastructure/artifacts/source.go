// Package artifacts 提供启动期静态制品（模型、词表、知识库）的读取来源
package artifacts

import (
	"context"
	"errors"
)

// ErrNotFound 制品不存在
var ErrNotFound = errors.New("artifact not found")

// Source 制品来源接口
// 只在启动阶段调用，请求处理过程中不会产生任何制品 I/O
type Source interface {
	// Read 读取指定名称的制品原始字节，不存在时返回包装了 ErrNotFound 的错误
	Read(ctx context.Context, name string) ([]byte, error)

	// Describe 返回制品位置描述，用于日志
	Describe(name string) string

	// Close 释放资源
	Close() error
}
