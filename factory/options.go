package factory

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/BaSui01/ragkit/config"
	"github.com/BaSui01/ragkit/embedding"
	"github.com/BaSui01/ragkit/hub"
	"github.com/BaSui01/ragkit/internal/cache"
	"github.com/BaSui01/ragkit/internal/metrics"
	"github.com/BaSui01/ragkit/internal/telemetry"
	"github.com/BaSui01/ragkit/internal/tokenizer"
)

// Option 配置工厂函数的协作者。
type Option func(*options)

type options struct {
	logger     *zap.Logger
	metrics    *metrics.Collector
	fetcher    hub.Fetcher
	hubConfig  config.HubConfig
	embedder   embedding.Embedder
	cache      *cache.Manager
	httpClient *http.Client
	tokenizer  tokenizer.Tokenizer
}

// WithLogger 设置日志器。
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics 记录选择结果与数据集加载指标。
func WithMetrics(m *metrics.Collector) Option {
	return func(o *options) { o.metrics = m }
}

// WithFetcher 设置 refiner 模型元数据来源，默认使用 hub.Client。
func WithFetcher(f hub.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithHubConfig 配置默认 hub.Client。
func WithHubConfig(cfg config.HubConfig) Option {
	return func(o *options) { o.hubConfig = cfg }
}

// WithEmbedder 指定稠密检索、SKR 判别与抽取式精炼使用的嵌入模型，
// 未设置时按配置创建 OpenAI 兼容客户端。
func WithEmbedder(e embedding.Embedder) Option {
	return func(o *options) { o.embedder = e }
}

// WithCache 启用 Redis 缓存（检索结果与模型元数据）。
func WithCache(m *cache.Manager) Option {
	return func(o *options) { o.cache = m }
}

// WithHTTPClient 设置访问推理服务的 HTTP 客户端。
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithTokenizer 覆盖 LLMLingua / Selective-Context 使用的分词器。
func WithTokenizer(t tokenizer.Tokenizer) Option {
	return func(o *options) { o.tokenizer = t }
}

func buildOptions(opts []Option) *options {
	o := &options{hubConfig: config.DefaultHubConfig()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// fetcherOrDefault 返回注入的 Fetcher，否则按 hub 配置创建客户端。
func (o *options) fetcherOrDefault() hub.Fetcher {
	if o.fetcher != nil {
		return o.fetcher
	}
	hubOpts := []hub.Option{hub.WithMetrics(o.metrics)}
	if o.cache != nil {
		hubOpts = append(hubOpts, hub.WithCache(o.cache))
	}
	if o.httpClient != nil {
		hubOpts = append(hubOpts, hub.WithHTTPClient(o.httpClient))
	}
	return hub.NewClient(hub.Config{
		Endpoint:     o.hubConfig.Endpoint,
		Token:        o.hubConfig.Token,
		Timeout:      o.hubConfig.Timeout,
		CacheTTL:     o.hubConfig.CacheTTL,
		RateLimitRPS: o.hubConfig.RateLimitRPS,
	}, o.logger, hubOpts...)
}

// embedderFor 返回注入的 Embedder，否则用 endpoint 与 model 创建 OpenAI 兼容客户端。
func (o *options) embedderFor(p config.Params, model string) (embedding.Embedder, error) {
	if o.embedder != nil {
		return o.embedder, nil
	}
	endpoint, err := p.String(config.KeyEmbeddingEndpoint)
	if err != nil {
		return nil, err
	}
	apiKey, err := p.StringOr(config.KeyEmbeddingAPIKey, "")
	if err != nil {
		return nil, err
	}
	return embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
		BaseURL:    endpoint,
		APIKey:     apiKey,
		Model:      model,
		HTTPClient: o.httpClient,
	}, o.logger)
}

// recordSelection 记录选择结果或失败原因。
func (o *options) recordSelection(component, variant string, err error) {
	if err != nil {
		code := errorCode(err)
		o.metrics.RecordSelectionError(component, code)
		telemetry.RecordSelection(context.Background(), component, variant, code)
		return
	}
	o.metrics.RecordSelection(component, variant)
	telemetry.RecordSelection(context.Background(), component, variant, "")
	o.logger.Debug("component selected", zap.String("component", component), zap.String("variant", variant))
}
