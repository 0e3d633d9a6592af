package factory

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/ragkit/config"
	"github.com/BaSui01/ragkit/generator"
	"github.com/BaSui01/ragkit/hub"
	"github.com/BaSui01/ragkit/internal/tokenizer"
	"github.com/BaSui01/ragkit/refiner"
	"github.com/BaSui01/ragkit/types"
)

// RefinerSelection 精炼器选择结果。
type RefinerSelection struct {
	Kind      refiner.Kind
	ModelPath string
	ModelType string
}

// ResolveRefinerPath 返回 refiner_model_path；未设置时按 refiner_name 精确查找默认模型，
// 仍找不到则返回 UNSUPPORTED_CONFIG。
func ResolveRefinerPath(p config.Params) (string, error) {
	path, ok, err := p.OptionalString(config.KeyRefinerModelPath)
	if err != nil {
		return "", err
	}
	if ok {
		return path, nil
	}
	name, err := p.String(config.KeyRefinerName)
	if err != nil {
		return "", err
	}
	if def, ok := refiner.DefaultModelPath(name); ok {
		return def, nil
	}
	return "", types.NewUnsupportedConfigError("refiner", "refiner_model_path is empty")
}

// SelectRefiner 解析模型路径、获取模型元数据后选择精炼器变体：
//   - 名称（小写）或原始路径含 "recomp"：model_type 为 "t5" 时生成式，否则抽取式
//   - 名称含 "lingua"：LLMLingua
//   - 名称含 "selective-context" 或 "sc"：Selective-Context
//
// "sc" 为宽松子串匹配，任何包含这两个字母的名称都会命中。
func SelectRefiner(ctx context.Context, p config.Params, fetcher hub.Fetcher) (refiner.Kind, error) {
	sel, err := selectRefiner(ctx, p, fetcher)
	if err != nil {
		return "", err
	}
	return sel.Kind, nil
}

func selectRefiner(ctx context.Context, p config.Params, fetcher hub.Fetcher) (RefinerSelection, error) {
	name, err := p.String(config.KeyRefinerName)
	if err != nil {
		return RefinerSelection{}, err
	}
	path, err := ResolveRefinerPath(p)
	if err != nil {
		return RefinerSelection{}, err
	}
	if fetcher == nil {
		return RefinerSelection{}, types.NewError(types.ErrInvalidRequest, "refiner selection requires a model metadata fetcher").
			WithComponent("refiner")
	}

	mc, err := fetcher.FetchModelConfig(ctx, path)
	if err != nil {
		return RefinerSelection{}, err
	}
	sel := RefinerSelection{ModelPath: path, ModelType: mc.ModelType}

	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "recomp") || strings.Contains(path, "recomp"):
		if mc.ModelType == "t5" {
			sel.Kind = refiner.KindAbstractiveRecomp
		} else {
			sel.Kind = refiner.KindExtractive
		}
	case strings.Contains(lower, "lingua"):
		sel.Kind = refiner.KindLLMLingua
	case strings.Contains(lower, "selective-context") || strings.Contains(lower, "sc"):
		sel.Kind = refiner.KindSelectiveContext
	default:
		return RefinerSelection{}, types.NewUnsupportedConfigError("refiner", "no implementation for refiner %q", name)
	}
	return sel, nil
}

// SelectRefinerDetails 同 SelectRefiner，同时返回解析出的模型路径与 model_type。
func SelectRefinerDetails(ctx context.Context, p config.Params, opts ...Option) (RefinerSelection, error) {
	o := buildOptions(opts)
	sel, err := selectRefiner(ctx, p, o.fetcherOrDefault())
	o.recordSelection("refiner", string(sel.Kind), err)
	return sel, err
}

// NewRefiner 选择并创建精炼器。
func NewRefiner(ctx context.Context, p config.Params, opts ...Option) (refiner.Refiner, error) {
	o := buildOptions(opts)

	sel, err := selectRefiner(ctx, p, o.fetcherOrDefault())
	o.recordSelection("refiner", string(sel.Kind), err)
	if err != nil {
		return nil, err
	}
	o.logger.Info("refiner selected",
		zap.String("kind", string(sel.Kind)),
		zap.String("model_path", sel.ModelPath),
		zap.String("model_type", sel.ModelType))

	switch sel.Kind {
	case refiner.KindAbstractiveRecomp:
		endpoint, err := p.String(config.KeyRefinerEndpoint)
		if err != nil {
			return nil, err
		}
		maxInputLen, err := p.IntOr(config.KeyGeneratorMaxInputLen, 1024)
		if err != nil {
			return nil, err
		}
		var genOpts []generator.Option
		if o.httpClient != nil {
			genOpts = append(genOpts, generator.WithHTTPClient(o.httpClient))
		}
		gen, err := generator.NewEncoderDecoderGenerator(generator.Config{
			Model:       sel.ModelPath,
			Endpoint:    endpoint,
			MaxInputLen: maxInputLen,
			Params:      generator.Params{MaxTokens: 512},
		}, o.logger, genOpts...)
		if err != nil {
			return nil, err
		}
		return refiner.NewAbstractiveRecompRefiner(gen, o.logger)

	case refiner.KindExtractive:
		topK, err := p.IntOr(config.KeyRefinerTopK, 5)
		if err != nil {
			return nil, err
		}
		emb, err := o.embedderFor(p, sel.ModelPath)
		if err != nil {
			return nil, err
		}
		return refiner.NewExtractiveRefiner(emb, topK, o.logger)

	case refiner.KindLLMLingua:
		sub, err := p.Sub(config.KeyRefinerLLMLinguaConfig)
		if err != nil {
			return nil, err
		}
		rate, err := sub.FloatOr("rate", 0.55)
		if err != nil {
			return nil, err
		}
		tok, err := o.tokenizerFor(sub)
		if err != nil {
			return nil, err
		}
		return refiner.NewLLMLinguaRefiner(refiner.LLMLinguaConfig{Rate: rate, Tokenizer: tok}, o.logger)

	case refiner.KindSelectiveContext:
		sub, err := p.Sub(config.KeyRefinerSCConfig)
		if err != nil {
			return nil, err
		}
		ratio, err := sub.FloatOr("reduce_ratio", 0.5)
		if err != nil {
			return nil, err
		}
		tok, err := o.tokenizerFor(sub)
		if err != nil {
			return nil, err
		}
		return refiner.NewSelectiveContextRefiner(refiner.SelectiveContextConfig{ReduceRatio: ratio, Tokenizer: tok}, o.logger)

	default:
		return nil, types.NewUnsupportedConfigError("refiner", "no implementation for refiner kind %q", sel.Kind)
	}
}

// tokenizerFor 优先使用 WithTokenizer，其次是子配置中的 tokenizer 名称。
func (o *options) tokenizerFor(sub config.Params) (tokenizer.Tokenizer, error) {
	if o.tokenizer != nil {
		return o.tokenizer, nil
	}
	name, err := sub.StringOr("tokenizer", "")
	if err != nil {
		return nil, err
	}
	return tokenizer.New(name)
}
