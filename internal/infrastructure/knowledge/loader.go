package knowledge

import (
	"context"
	"errors"
	"fmt"

	"pharma-triage/configs"
	"pharma-triage/internal/domain/models"
	"pharma-triage/internal/infrastructure/artifacts"
	"pharma-triage/pkg/logger"
)

// Bundle 启动时加载的词表、知识库与可选的类别列表
type Bundle struct {
	Vocabulary *models.Vocabulary
	Knowledge  *models.KnowledgeBase
	Classes    []string
}

// Loader 从制品源加载词表与知识库
type Loader struct {
	source artifacts.Source
	files  configs.ArtifactFiles
	logger logger.Logger
}

// NewLoader 创建加载器
func NewLoader(source artifacts.Source, files configs.ArtifactFiles, log logger.Logger) *Loader {
	return &Loader{
		source: source,
		files:  files,
		logger: log,
	}
}

// Load 加载全部参考数据，任何必需制品缺失或格式错误都返回 ErrLoad
func (l *Loader) Load(ctx context.Context) (*Bundle, error) {
	vocabRaw, err := l.read(ctx, l.files.Vocabulary)
	if err != nil {
		return nil, err
	}
	vocab, err := LoadVocabulary(vocabRaw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.source.Describe(l.files.Vocabulary), err)
	}
	l.logger.InfoContext(ctx, "词表加载完成", "size", vocab.Len())

	categoriesRaw, err := l.read(ctx, l.files.Categories)
	if err != nil {
		return nil, err
	}
	otcRaw, err := l.read(ctx, l.files.OTC)
	if err != nil {
		return nil, err
	}
	safetyRaw, err := l.read(ctx, l.files.Safety)
	if err != nil {
		return nil, err
	}

	kb, err := LoadKnowledgeBase(categoriesRaw, otcRaw, safetyRaw)
	if err != nil {
		return nil, err
	}

	green, red := kb.CategorySizes()
	l.logger.InfoContext(ctx, "知识库加载完成", "green", green, "red", red)

	if conflicts := kb.ConflictingDiseases(); len(conflicts) > 0 {
		// 数据完整性问题：请求时按红色类别处理
		l.logger.WarnContext(ctx, "疾病同时出现在红绿两个类别中，将按需要就医处理",
			"diseases", conflicts)
	}

	classes, err := l.loadOptionalClasses(ctx)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Vocabulary: vocab,
		Knowledge:  kb,
		Classes:    classes,
	}, nil
}

// loadOptionalClasses 类别列表文件可以不存在，但存在时必须格式正确
func (l *Loader) loadOptionalClasses(ctx context.Context) ([]string, error) {
	if l.files.Classes == "" {
		return nil, nil
	}

	raw, err := l.source.Read(ctx, l.files.Classes)
	if err != nil {
		if errors.Is(err, artifacts.ErrNotFound) {
			l.logger.InfoContext(ctx, "未找到类别列表文件", "artifact", l.source.Describe(l.files.Classes))
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	classes, err := LoadClasses(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.source.Describe(l.files.Classes), err)
	}
	return classes, nil
}

func (l *Loader) read(ctx context.Context, name string) ([]byte, error) {
	raw, err := l.source.Read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return raw, nil
}
