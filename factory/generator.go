package factory

import (
	"context"
	"strings"

	"github.com/BaSui01/ragkit/config"
	"github.com/BaSui01/ragkit/generator"
	"github.com/BaSui01/ragkit/types"
)

// SelectGenerator 按 generator_model 与 use_vllm 选择生成器变体：
// 模型名含 "t5" 或 "bart"（区分大小写）时为编码器-解码器，忽略 use_vllm；
// 否则 use_vllm 为真时为 vLLM，其余为因果语言模型。
func SelectGenerator(p config.Params) (generator.Kind, error) {
	model, err := p.String(config.KeyGeneratorModel)
	if err != nil {
		return "", err
	}
	if strings.Contains(model, "t5") || strings.Contains(model, "bart") {
		return generator.KindEncoderDecoder, nil
	}
	useVLLM, err := p.Bool(config.KeyUseVLLM)
	if err != nil {
		return "", err
	}
	if useVLLM {
		return generator.KindVLLM, nil
	}
	return generator.KindCausalLM, nil
}

// NewGenerator 选择并创建生成器。
func NewGenerator(_ context.Context, p config.Params, opts ...Option) (generator.Generator, error) {
	o := buildOptions(opts)

	kind, err := SelectGenerator(p)
	o.recordSelection("generator", string(kind), err)
	if err != nil {
		return nil, err
	}

	cfg, err := generatorConfig(p)
	if err != nil {
		return nil, err
	}
	var genOpts []generator.Option
	if o.httpClient != nil {
		genOpts = append(genOpts, generator.WithHTTPClient(o.httpClient))
	}

	switch kind {
	case generator.KindEncoderDecoder:
		return generator.NewEncoderDecoderGenerator(cfg, o.logger, genOpts...)
	case generator.KindVLLM:
		return generator.NewVLLMGenerator(cfg, o.logger, genOpts...)
	case generator.KindCausalLM:
		return generator.NewCausalLMGenerator(cfg, o.logger, genOpts...)
	default:
		return nil, types.NewUnsupportedConfigError("generator", "no implementation for generator kind %q", kind)
	}
}

func generatorConfig(p config.Params) (generator.Config, error) {
	model, err := p.String(config.KeyGeneratorModel)
	if err != nil {
		return generator.Config{}, err
	}
	endpoint, err := p.String(config.KeyGeneratorEndpoint)
	if err != nil {
		return generator.Config{}, err
	}
	apiKey, err := p.StringOr(config.KeyGeneratorAPIKey, "")
	if err != nil {
		return generator.Config{}, err
	}
	maxInputLen, err := p.IntOr(config.KeyGeneratorMaxInputLen, 1024)
	if err != nil {
		return generator.Config{}, err
	}
	params, err := generationParams(p)
	if err != nil {
		return generator.Config{}, err
	}
	return generator.Config{
		Model:       model,
		Endpoint:    endpoint,
		APIKey:      apiKey,
		MaxInputLen: maxInputLen,
		Params:      params,
	}, nil
}

// generationParams 读取 generation_params 中的 max_tokens、temperature、top_p、stop。
func generationParams(p config.Params) (generator.Params, error) {
	sub, err := p.Sub(config.KeyGenerationParams)
	if err != nil {
		return generator.Params{}, err
	}
	var gp generator.Params
	if gp.MaxTokens, err = sub.IntOr("max_tokens", 32); err != nil {
		return generator.Params{}, err
	}
	if gp.Temperature, err = sub.FloatOr("temperature", 0); err != nil {
		return generator.Params{}, err
	}
	if gp.TopP, err = sub.FloatOr("top_p", 0); err != nil {
		return generator.Params{}, err
	}
	if sub.Has("stop") {
		if gp.Stop, err = sub.Strings("stop"); err != nil {
			return generator.Params{}, err
		}
	}
	return gp, nil
}
