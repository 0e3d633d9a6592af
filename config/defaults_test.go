package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- DefaultConfig aggregate ---

func TestDefaultConfig_ContainsAllSubConfigs(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.NotEmpty(t, cfg.RAG)
	assert.NotEqual(t, RedisConfig{}, cfg.Redis)
	assert.NotEqual(t, HubConfig{}, cfg.Hub)
	assert.NotEqual(t, MetricsConfig{}, cfg.Metrics)
	assert.NotEqual(t, LogConfig{}, cfg.Log)
	assert.NotEqual(t, TelemetryConfig{}, cfg.Telemetry)
}

// --- Individual Default* functions ---

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	seed, err := p.Int(KeySeed)
	require.NoError(t, err)
	assert.Equal(t, 2024, seed)

	random, err := p.Bool(KeyRandomSample)
	require.NoError(t, err)
	assert.False(t, random)

	ttl, err := p.Duration(KeyRetrievalCacheTTL, 0)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)

	gen, err := p.Sub(KeyGenerationParams)
	require.NoError(t, err)
	assert.Equal(t, 32, mustInt(t, gen, "max_tokens"))

	sc, err := p.Sub(KeyRefinerSCConfig)
	require.NoError(t, err)
	ratio, err := sc.Float("reduce_ratio")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, ratio, 1e-9)

	// 无默认值的选择键
	for _, key := range []string{KeyDatasetPath, KeyGeneratorModel, KeyRetrievalMethod, KeyJudgerName, KeyRefinerName} {
		assert.False(t, p.Has(key), key)
	}
}

func TestDefaultParams_NestedMapsAreFresh(t *testing.T) {
	a := DefaultParams()
	b := DefaultParams()

	sub, err := a.Sub(KeyGenerationParams)
	require.NoError(t, err)
	sub.Set("max_tokens", 99)

	other, err := b.Sub(KeyGenerationParams)
	require.NoError(t, err)
	assert.Equal(t, 32, mustInt(t, other, "max_tokens"))
}

func TestDefaultRedisConfig(t *testing.T) {
	cfg := DefaultRedisConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 2, cfg.MinIdleConns)
	assert.Equal(t, 24*time.Hour, cfg.DefaultTTL)
}

func TestDefaultHubConfig(t *testing.T) {
	cfg := DefaultHubConfig()
	assert.Equal(t, "https://huggingface.co", cfg.Endpoint)
	assert.Empty(t, cfg.Token)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 5.0, cfg.RateLimitRPS)
}

func TestDefaultLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, []string{"stdout"}, cfg.OutputPaths)
	assert.True(t, cfg.EnableCaller)
	assert.False(t, cfg.EnableStacktrace)
}

func TestDefaultMetricsConfig(t *testing.T) {
	cfg := DefaultMetricsConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "ragkit", cfg.Namespace)
}

func TestDefaultTelemetryConfig(t *testing.T) {
	cfg := DefaultTelemetryConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, "ragkit", cfg.ServiceName)
	assert.Equal(t, 0.1, cfg.SampleRate)
}
