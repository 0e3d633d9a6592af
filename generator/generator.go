package generator

import (
	"context"
	"time"
)

// Kind 生成器变体。
type Kind string

const (
	// KindEncoderDecoder T5 / BART 类编码器-解码器模型
	KindEncoderDecoder Kind = "encoder_decoder"
	// KindVLLM 通过 vLLM 的 OpenAI 兼容接口加速推理
	KindVLLM Kind = "vllm"
	// KindCausalLM 默认的因果语言模型
	KindCausalLM Kind = "causal_lm"
)

// Generator 根据提示词批量生成文本，返回结果与 prompts 一一对应。
type Generator interface {
	Generate(ctx context.Context, prompts []string) ([]string, error)
	Kind() Kind
}

// Params 生成参数，零值字段不发送给推理服务。
type Params struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	Stop        []string
}

// Config 生成器公共配置。
type Config struct {
	// Model 模型名称或路径
	Model string
	// Endpoint 推理服务地址；vLLM 需包含 /v1 前缀
	Endpoint string
	// APIKey vLLM 鉴权（可选）
	APIKey string
	// MaxInputLen 编码器-解码器输入的最大词数
	MaxInputLen int
	// Concurrency 并发请求数，默认 4
	Concurrency int
	// Timeout 单次请求超时，默认 60s
	Timeout time.Duration
	Params  Params
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.Params.MaxTokens <= 0 {
		c.Params.MaxTokens = 32
	}
	return c
}
