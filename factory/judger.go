package factory

import (
	"context"
	"strings"

	"github.com/BaSui01/ragkit/config"
	"github.com/BaSui01/ragkit/judger"
	"github.com/BaSui01/ragkit/types"
)

// SelectJudger judger_name 不区分大小写包含 "skr" 时选择 SKR，否则返回 UNSUPPORTED_CONFIG。
func SelectJudger(p config.Params) (judger.Kind, error) {
	name, err := p.String(config.KeyJudgerName)
	if err != nil {
		return "", err
	}
	if strings.Contains(strings.ToLower(name), "skr") {
		return judger.KindSKR, nil
	}
	return "", types.NewUnsupportedConfigError("judger", "no implementation for judger %q", name)
}

// NewJudger 选择并创建判别器。judger_config 提供 training_data_path、topk 与 model_path。
func NewJudger(ctx context.Context, p config.Params, opts ...Option) (judger.Judger, error) {
	o := buildOptions(opts)

	kind, err := SelectJudger(p)
	o.recordSelection("judger", string(kind), err)
	if err != nil {
		return nil, err
	}

	sub, err := p.Sub(config.KeyJudgerConfig)
	if err != nil {
		return nil, err
	}
	trainingPath, err := sub.String("training_data_path")
	if err != nil {
		return nil, err
	}
	topK, err := sub.IntOr("topk", 5)
	if err != nil {
		return nil, err
	}
	modelPath, err := sub.StringOr("model_path", "")
	if err != nil {
		return nil, err
	}

	switch kind {
	case judger.KindSKR:
		if o.embedder == nil && modelPath == "" {
			return nil, types.Errorf(types.ErrMissingConfigKey, "config key %q is not set", config.KeyJudgerConfig+".model_path").
				WithComponent("judger")
		}
		emb, err := o.embedderFor(p, modelPath)
		if err != nil {
			return nil, err
		}
		return judger.NewSKRJudger(ctx, judger.SKRConfig{
			TrainingDataPath: trainingPath,
			TopK:             topK,
			ModelPath:        modelPath,
		}, emb, o.logger)
	default:
		return nil, types.NewUnsupportedConfigError("judger", "no implementation for judger kind %q", kind)
	}
}
