package generator

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Option 配置生成器的可选依赖。
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient 替换默认 HTTP 客户端。
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// CausalLMGenerator 通过 TGI 服务调用因果语言模型，只返回新生成的文本。
type CausalLMGenerator struct {
	cfg    Config
	client *tgiClient
	logger *zap.Logger
}

var _ Generator = (*CausalLMGenerator)(nil)

// NewCausalLMGenerator 创建因果语言模型生成器。
func NewCausalLMGenerator(cfg Config, logger *zap.Logger, opts ...Option) (*CausalLMGenerator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	logger = logger.With(zap.String("component", "generator"), zap.String("kind", string(KindCausalLM)))

	client, err := newTGIClient(cfg, buildOptions(opts).httpClient, logger)
	if err != nil {
		return nil, err
	}
	return &CausalLMGenerator{cfg: cfg, client: client, logger: logger}, nil
}

func (g *CausalLMGenerator) Kind() Kind { return KindCausalLM }

// Generate 生成文本。
func (g *CausalLMGenerator) Generate(ctx context.Context, prompts []string) ([]string, error) {
	g.logger.Debug("generating", zap.String("model", g.cfg.Model), zap.Int("prompts", len(prompts)))
	return g.client.generateAll(ctx, prompts)
}

// EncoderDecoderGenerator 调用 T5 / BART 类模型。
// 输入按词截断到 MaxInputLen，输出不包含输入文本。
type EncoderDecoderGenerator struct {
	cfg    Config
	client *tgiClient
	logger *zap.Logger
}

var _ Generator = (*EncoderDecoderGenerator)(nil)

// NewEncoderDecoderGenerator 创建编码器-解码器生成器。
func NewEncoderDecoderGenerator(cfg Config, logger *zap.Logger, opts ...Option) (*EncoderDecoderGenerator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	if cfg.MaxInputLen <= 0 {
		cfg.MaxInputLen = 1024
	}
	logger = logger.With(zap.String("component", "generator"), zap.String("kind", string(KindEncoderDecoder)))

	client, err := newTGIClient(cfg, buildOptions(opts).httpClient, logger)
	if err != nil {
		return nil, err
	}
	return &EncoderDecoderGenerator{cfg: cfg, client: client, logger: logger}, nil
}

func (g *EncoderDecoderGenerator) Kind() Kind { return KindEncoderDecoder }

// Generate 截断输入后生成文本。
func (g *EncoderDecoderGenerator) Generate(ctx context.Context, prompts []string) ([]string, error) {
	inputs := make([]string, len(prompts))
	for i, p := range prompts {
		inputs[i] = truncateWords(p, g.cfg.MaxInputLen)
	}
	g.logger.Debug("generating", zap.String("model", g.cfg.Model), zap.Int("prompts", len(prompts)))
	return g.client.generateAll(ctx, inputs)
}

// truncateWords 保留前 n 个以空白分隔的词。
func truncateWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) <= n {
		return s
	}
	return strings.Join(fields[:n], " ")
}
