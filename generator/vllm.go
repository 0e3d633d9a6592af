package generator

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/BaSui01/ragkit/internal/tlsutil"
	"github.com/BaSui01/ragkit/types"
)

// VLLMGenerator 通过 vLLM 的 OpenAI 兼容 /completions 接口批量生成。
type VLLMGenerator struct {
	cfg    Config
	client *openai.Client
	logger *zap.Logger
}

var _ Generator = (*VLLMGenerator)(nil)

// NewVLLMGenerator 创建 vLLM 生成器。
func NewVLLMGenerator(cfg Config, logger *zap.Logger, opts ...Option) (*VLLMGenerator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "generator endpoint is required").WithComponent("generator")
	}
	cfg = cfg.withDefaults()

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
	oc.HTTPClient = tlsutil.ClientOrDefault(buildOptions(opts).httpClient, cfg.Timeout)

	return &VLLMGenerator{
		cfg:    cfg,
		client: openai.NewClientWithConfig(oc),
		logger: logger.With(zap.String("component", "generator"), zap.String("kind", string(KindVLLM))),
	}, nil
}

func (g *VLLMGenerator) Kind() Kind { return KindVLLM }

// Generate 一次请求提交全部 prompts，按 choice.Index 对齐结果。
func (g *VLLMGenerator) Generate(ctx context.Context, prompts []string) ([]string, error) {
	if len(prompts) == 0 {
		return []string{}, nil
	}

	req := openai.CompletionRequest{
		Model:       g.cfg.Model,
		Prompt:      prompts,
		MaxTokens:   g.cfg.Params.MaxTokens,
		Temperature: float32(g.cfg.Params.Temperature),
		TopP:        float32(g.cfg.Params.TopP),
		Stop:        g.cfg.Params.Stop,
	}

	resp, err := g.client.CreateCompletion(ctx, req)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "vllm completion failed").
			WithCause(err).
			WithRetryable(true).
			WithComponent("generator")
	}

	out := make([]string, len(prompts))
	filled := 0
	for _, c := range resp.Choices {
		if c.Index < 0 || c.Index >= len(out) {
			continue
		}
		out[c.Index] = c.Text
		filled++
	}
	if filled != len(prompts) {
		return nil, types.Errorf(types.ErrUpstreamError, "vllm returned %d choices for %d prompts", filled, len(prompts)).
			WithComponent("generator")
	}

	g.logger.Debug("generated", zap.String("model", g.cfg.Model), zap.Int("prompts", len(prompts)),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))
	return out, nil
}
