package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pharma-triage/configs"
	"pharma-triage/internal/app/handlers"
	"pharma-triage/internal/app/server"
	"pharma-triage/internal/eino/callbacks"
	"pharma-triage/internal/eino/flows"
	"pharma-triage/internal/infrastructure/artifacts"
	"pharma-triage/internal/infrastructure/classifier"
	"pharma-triage/internal/infrastructure/knowledge"
	"pharma-triage/internal/infrastructure/sysstats"
	"pharma-triage/pkg/logger"
)

// main 主函数 - 应用程序入口点
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 创建早期logger（使用默认配置）
	earlyLogger := logger.Default()

	if err := initializeApplication(ctx, earlyLogger); err != nil {
		earlyLogger.ErrorContext(ctx, "应用程序初始化失败", "error", err)
		os.Exit(1)
	}
}

// initializeApplication 初始化应用程序。制品加载失败属于致命错误
func initializeApplication(ctx context.Context, earlyLogger logger.Logger) error {
	// 1. 加载配置
	config, err := configs.Load(ctx)
	if err != nil {
		return fmt.Errorf("配置加载失败: %w", err)
	}

	earlyLogger.InfoContext(ctx, "配置加载成功",
		"server_port", config.Server.Port,
		"artifact_source", config.Artifacts.Source)

	// 2. 初始化日志服务
	appLogger := initializeLogger(config.Logging)
	appLogger.InfoContext(ctx, "日志服务初始化完成")

	// 3. 加载制品
	source, err := artifacts.NewSource(ctx, &config.Artifacts)
	if err != nil {
		return fmt.Errorf("制品源初始化失败: %w", err)
	}
	defer source.Close()

	bundle, err := knowledge.NewLoader(source, config.Artifacts.Files, appLogger).Load(ctx)
	if err != nil {
		return fmt.Errorf("参考数据加载失败: %w", err)
	}

	adapter, err := classifier.Load(ctx, source, config.Artifacts.Files.Model, config.Model.ONNX,
		bundle.Classes, appLogger)
	if err != nil {
		return fmt.Errorf("模型加载失败: %w", err)
	}
	defer func() {
		_ = adapter.Close()
		_ = classifier.ShutdownONNXRuntime()
	}()

	// 4. 编译分诊 Graph
	graph, err := flows.NewTriageGraph(&flows.Artifacts{
		Vocabulary: bundle.Vocabulary,
		Knowledge:  bundle.Knowledge,
		Classifier: adapter,
	}, &config.Eino)
	if err != nil {
		return fmt.Errorf("分诊 Graph 创建失败: %w", err)
	}

	callbackFactory := callbacks.NewFactory(&config.Eino.Callbacks, appLogger)
	pipeline, err := flows.NewTriagePipeline(ctx, graph, appLogger, callbackFactory.CreateHandlers()...)
	if err != nil {
		return err
	}
	appLogger.InfoContext(ctx, "分诊 Graph 编译完成", "graph", config.Eino.GraphName)

	// 5. 初始化应用层
	readiness := handlers.ReadinessInfo{
		VocabularySize:      bundle.Vocabulary.Len(),
		Classes:             len(adapter.Classes()),
		ConfidenceSupport:   adapter.SupportsConfidence(),
		ArtifactSource:      config.Artifacts.Source,
		ConflictingDiseases: len(bundle.Knowledge.ConflictingDiseases()),
	}
	triageHandler := handlers.NewTriageHandler(pipeline, readiness,
		newStatsFunc(pipeline, callbackFactory.Metrics(), appLogger), appLogger)
	httpServer := server.NewServer(&config.Server, triageHandler, appLogger)

	// 6. 启动服务并等待停止信号
	return runApplication(ctx, httpServer, appLogger)
}

// initializeLogger 初始化日志服务
func initializeLogger(config configs.LoggingConfig) logger.Logger {
	loggerConfig := logger.Config{
		Level:  logger.ParseLevel(config.Level),
		Output: config.Output,
		Format: config.Format,
	}
	if config.Output == "file" {
		loggerConfig.FilePath = config.FilePath
	}
	return logger.New(loggerConfig)
}

// newStatsFunc 汇总请求计数、节点指标与进程资源占用
func newStatsFunc(pipeline *flows.TriagePipeline, metrics *callbacks.MetricsHandler, log logger.Logger) handlers.StatsFunc {
	collector, err := sysstats.NewCollector()
	if err != nil {
		log.Warn("进程资源采集不可用", "error", err)
	}

	return func() map[string]interface{} {
		stats := map[string]interface{}{
			"pipeline": pipeline.Stats(),
		}
		if metrics != nil {
			stats["nodes"] = metrics.Snapshot()
		}
		if collector != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			stats["process"] = collector.Collect(ctx)
		}
		return stats
	}
}

// runApplication 运行应用程序，阻塞直到收到停止信号、服务器错误或上下文取消
func runApplication(ctx context.Context, httpServer *server.Server, log logger.Logger) error {
	errChan := make(chan error, 1)

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	httpServer.Start(ctx, errChan)

	select {
	case err := <-errChan:
		log.ErrorContext(ctx, "服务器运行错误", "error", err)
		return err

	case sig := <-signalChan:
		log.InfoContext(ctx, "收到停止信号，开始优雅关闭", "signal", sig.String())
		return httpServer.Shutdown(context.Background())

	case <-ctx.Done():
		log.InfoContext(ctx, "上下文取消，开始优雅关闭")
		return httpServer.Shutdown(context.Background())
	}
}
