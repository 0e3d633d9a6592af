// =============================================================================
// 📦 ragkit 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		RAG:       DefaultParams(),
		Log:       DefaultLogConfig(),
		Redis:     DefaultRedisConfig(),
		Hub:       DefaultHubConfig(),
		Metrics:   DefaultMetricsConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultParams 返回 RAG 参数默认值。
// dataset_path、generator_model、retrieval_method、judger_name、refiner_name
// 没有默认值，由调用方显式提供。
func DefaultParams() Params {
	return Params{
		KeySplit:                []any{"train", "dev", "test"},
		KeyTestSampleNum:        nil,
		KeyRandomSample:         false,
		KeySeed:                 2024,
		KeyUseVLLM:              false,
		KeyRefinerModelPath:     nil,
		KeyGeneratorMaxInputLen: 1024,
		KeyGenerationParams:     map[string]any{"max_tokens": 32},
		KeyRetrievalTopK:        5,
		KeyBM25K1:               1.5,
		KeyBM25B:                0.75,
		KeyUseRetrievalCache:    false,
		KeySaveRetrievalCache:   false,
		KeyRetrievalCacheTTL:    "24h",
		KeyJudgerConfig:         map[string]any{"topk": 5},
		KeyRefinerTopK:          5,
		KeyRefinerLLMLinguaConfig: map[string]any{
			"rate": 0.55,
		},
		KeyRefinerSCConfig: map[string]any{
			"reduce_ratio": 0.5,
		},
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:      false,
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DefaultTTL:   24 * time.Hour,
	}
}

// DefaultHubConfig 返回默认模型仓库配置
func DefaultHubConfig() HubConfig {
	return HubConfig{
		Endpoint:     "https://huggingface.co",
		Token:        "",
		Timeout:      30 * time.Second,
		CacheTTL:     24 * time.Hour,
		RateLimitRPS: 5,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Namespace: "ragkit",
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "ragkit",
		SampleRate:   0.1,
	}
}
