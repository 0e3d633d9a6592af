// =============================================================================
// ragkit 命令行入口
// =============================================================================
// 检查 RAG 组件配置：各组件会被选中哪个变体、数据集各 split 的加载情况
//
// 使用方法:
//
//	ragkit check --config config.yaml      # 运行全部组件选择器
//	ragkit datasets --config config.yaml   # 加载数据集并汇总各 split
//	ragkit version                         # 显示版本信息
// =============================================================================

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/ragkit/config"
	"github.com/BaSui01/ragkit/internal/cache"
	"github.com/BaSui01/ragkit/internal/metrics"
	"github.com/BaSui01/ragkit/internal/telemetry"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "check":
		err = runCheck(os.Args[2:], os.Stdout)
	case "datasets":
		err = runDatasets(os.Args[2:], os.Stdout)
	case "version":
		printVersion(os.Stdout)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage(os.Stdout)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

// =============================================================================
// 🧩 运行环境
// =============================================================================

// runtimeEnv 命令共享的协作者
type runtimeEnv struct {
	cfg       *config.Config
	logger    *zap.Logger
	cache     *cache.Manager
	metrics   *metrics.Collector
	registry  *prometheus.Registry
	providers *telemetry.Providers
}

func setup(name string, args []string) (*runtimeEnv, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	env := &runtimeEnv{cfg: cfg, logger: initLogger(cfg.Log)}

	providers, err := telemetry.Init(context.Background(), cfg.Telemetry, env.logger)
	if err != nil {
		env.logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	env.providers = providers

	if cfg.Metrics.Enabled {
		env.registry = prometheus.NewRegistry()
		env.metrics = metrics.NewCollector(cfg.Metrics.Namespace, env.registry, env.logger)
	}

	if cfg.Redis.Enabled {
		cc := cache.DefaultConfig()
		cc.Addr = cfg.Redis.Addr
		cc.Password = cfg.Redis.Password
		cc.DB = cfg.Redis.DB
		cc.PoolSize = cfg.Redis.PoolSize
		cc.MinIdleConns = cfg.Redis.MinIdleConns
		cc.DefaultTTL = cfg.Redis.DefaultTTL
		m, err := cache.NewManager(cc, env.logger)
		if err != nil {
			env.logger.Warn("redis not available, caching disabled", zap.Error(err))
		} else {
			env.cache = m
		}
	}
	return env, nil
}

func (e *runtimeEnv) close() {
	if e.cache != nil {
		_ = e.cache.Close()
	}
	if e.providers != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.providers.Shutdown(ctx); err != nil {
			e.logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}
	_ = e.logger.Sync()
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "ragkit %s\n", Version)
	fmt.Fprintf(w, "  Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git Commit: %s\n", GitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `ragkit - RAG component selection toolkit

Usage:
  ragkit <command> [options]

Commands:
  check     Run every component selector and report the chosen variants
  datasets  Load the configured dataset splits and report their sizes
  version   Show version information
  help      Show this help message

Options:
  --config <path>   Path to configuration file (YAML)

Examples:
  ragkit check --config rag.yaml
  RAGKIT_RAG_SPLIT="[dev,test]" ragkit datasets --config rag.yaml
  ragkit version`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    !cfg.EnableCaller,
	}
	if cfg.Format == "console" {
		zapConfig.Encoding = "console"
	}

	var buildOpts []zap.Option
	if cfg.EnableStacktrace {
		buildOpts = append(buildOpts, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	logger, err := zapConfig.Build(buildOpts...)
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}
	return logger
}
