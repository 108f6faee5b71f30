// Package flows 定义分诊推理的 Eino Graph 与降级边界
package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"

	"pharma-triage/internal/domain/models"
	"pharma-triage/internal/domain/services"
	"pharma-triage/internal/eino/config"
	"pharma-triage/internal/eino/nodes"
)

// Graph 节点名
const (
	NodeVectorize = "vectorize"
	NodePredict   = "predict"
	NodeResolve   = "resolve"
)

// Artifacts 启动时加载一次的只读上下文，所有请求共享
type Artifacts struct {
	Vocabulary *models.Vocabulary
	Knowledge  *models.KnowledgeBase
	Classifier services.ClassifierService
}

// Validate 检查制品是否齐全
func (a *Artifacts) Validate() error {
	if a == nil {
		return errors.New("artifacts are nil")
	}
	if a.Vocabulary == nil || a.Vocabulary.Len() == 0 {
		return errors.New("vocabulary is not loaded")
	}
	if a.Knowledge == nil {
		return errors.New("knowledge base is not loaded")
	}
	if a.Classifier == nil {
		return errors.New("classifier is not loaded")
	}
	return nil
}

// triageState 在节点之间传递的单次请求状态
type triageState struct {
	request *models.TriageRequest
	vector  models.FeatureVector
	label   models.Label
	risk    *float64
}

// TriageGraph 分诊 Graph：vectorize -> predict -> resolve
type TriageGraph struct {
	artifacts  *Artifacts
	vectorizer *nodes.Vectorizer
	cfg        *config.TriageConfig
}

// NewTriageGraph 创建分诊 Graph
func NewTriageGraph(artifacts *Artifacts, cfg *config.TriageConfig) (*TriageGraph, error) {
	if err := artifacts.Validate(); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.DefaultTriageConfig()
	}
	return &TriageGraph{
		artifacts:  artifacts,
		vectorizer: nodes.NewVectorizer(artifacts.Vocabulary),
		cfg:        cfg,
	}, nil
}

// Compile 编译 Graph 为 Runnable，编译结果可被并发请求复用
func (g *TriageGraph) Compile(ctx context.Context) (compose.Runnable[*models.TriageRequest, *models.TriageResult], error) {
	graph := compose.NewGraph[*models.TriageRequest, *models.TriageResult]()

	// 1. 向量化
	if err := graph.AddLambdaNode(NodeVectorize, compose.InvokableLambda(g.vectorize)); err != nil {
		return nil, fmt.Errorf("add vectorize node: %w", err)
	}

	// 2. 模型推理
	if err := graph.AddLambdaNode(NodePredict, compose.InvokableLambda(g.predict)); err != nil {
		return nil, fmt.Errorf("add predict node: %w", err)
	}

	// 3. 疾病解析、分类与建议
	if err := graph.AddLambdaNode(NodeResolve, compose.InvokableLambda(g.resolve)); err != nil {
		return nil, fmt.Errorf("add resolve node: %w", err)
	}

	edges := [][2]string{
		{compose.START, NodeVectorize},
		{NodeVectorize, NodePredict},
		{NodePredict, NodeResolve},
		{NodeResolve, compose.END},
	}
	for _, e := range edges {
		if err := graph.AddEdge(e[0], e[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", e[0], e[1], err)
		}
	}

	return graph.Compile(ctx, compose.WithGraphName(g.cfg.GraphName))
}

func (g *TriageGraph) vectorize(_ context.Context, req *models.TriageRequest) (*triageState, error) {
	return &triageState{
		request: req,
		vector:  g.vectorizer.Vectorize(req.Symptoms),
	}, nil
}

// predict 先计算置信度再预测标签
func (g *TriageGraph) predict(_ context.Context, s *triageState) (*triageState, error) {
	clf := g.artifacts.Classifier

	proba, supported, err := clf.PredictConfidence(s.vector)
	if err != nil {
		return nil, fmt.Errorf("predict confidence: %w", err)
	}
	if supported {
		risk := nodes.ScoreFromConfidence(proba)
		s.risk = &risk
	}

	label, err := clf.Predict(s.vector)
	if err != nil {
		return nil, fmt.Errorf("predict label: %w", err)
	}
	s.label = label
	return s, nil
}

func (g *TriageGraph) resolve(_ context.Context, s *triageState) (*models.TriageResult, error) {
	kb := g.artifacts.Knowledge
	disease := nodes.ResolveDisease(s.label, g.artifacts.Classifier.Classes())
	category := nodes.Categorize(disease, kb)
	advice := nodes.BuildAdvice(category, disease, s.request.Age, kb)

	return &models.TriageResult{
		Prediction:      &disease,
		Category:        category,
		Advice:          advice.Advice,
		RecommendedMeds: advice.RecommendedMeds,
		Dosage:          advice.Dosage,
		Duration:        advice.Duration,
		SafetyNotes:     advice.SafetyNotes,
		Risk:            s.risk,
		UsedFallback:    false,
		Features: map[string]any{
			models.FeatureAge:       s.request.Age,
			models.FeatureSymptoms:  echoSymptoms(s.request.Symptoms),
			models.FeatureVectorLen: len(s.vector),
		},
	}, nil
}

// echoSymptoms 原样回显请求症状，nil 回显为空数组
func echoSymptoms(symptoms []string) []string {
	out := make([]string, len(symptoms))
	copy(out, symptoms)
	return out
}

// callbackOptions 将回调处理器转为运行选项
func callbackOptions(handlers []callbacks.Handler) []compose.Option {
	if len(handlers) == 0 {
		return nil
	}
	return []compose.Option{compose.WithCallbacks(handlers...)}
}
