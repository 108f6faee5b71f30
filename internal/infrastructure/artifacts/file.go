package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSource 从本地目录读取制品
type FileSource struct {
	dir string
}

// NewFileSource 创建本地目录制品源
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Read 读取制品文件；绝对路径按原样使用
func (s *FileSource) Read(_ context.Context, name string) ([]byte, error) {
	path := s.path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	return data, nil
}

// Describe 返回制品文件路径
func (s *FileSource) Describe(name string) string {
	return s.path(name)
}

// Close 本地文件源无需释放资源
func (s *FileSource) Close() error {
	return nil
}

func (s *FileSource) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}
