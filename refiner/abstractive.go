package refiner

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/ragkit/generator"
	"github.com/BaSui01/ragkit/types"
)

// AbstractiveRecompRefiner 用 T5 摘要模型为每个问题生成压缩后的上下文。
type AbstractiveRecompRefiner struct {
	gen    generator.Generator
	logger *zap.Logger
}

var _ Refiner = (*AbstractiveRecompRefiner)(nil)

// NewAbstractiveRecompRefiner 基于编码器-解码器生成器创建精炼器。
func NewAbstractiveRecompRefiner(gen generator.Generator, logger *zap.Logger) (*AbstractiveRecompRefiner, error) {
	if gen == nil {
		return nil, types.NewError(types.ErrInvalidRequest, "abstractive refiner requires a generator").WithComponent("refiner")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AbstractiveRecompRefiner{
		gen:    gen,
		logger: logger.With(zap.String("component", "refiner"), zap.String("kind", string(KindAbstractiveRecomp))),
	}, nil
}

func (r *AbstractiveRecompRefiner) Kind() Kind { return KindAbstractiveRecomp }

// Refine 构造摘要提示并批量生成。
func (r *AbstractiveRecompRefiner) Refine(ctx context.Context, items []Input) ([]string, error) {
	if len(items) == 0 {
		return []string{}, nil
	}
	prompts := make([]string, len(items))
	for i, it := range items {
		prompts[i] = summaryPrompt(it)
	}
	out, err := r.gen.Generate(ctx, prompts)
	if err != nil {
		return nil, fmt.Errorf("abstractive refine: %w", err)
	}
	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	r.logger.Debug("refined", zap.Int("items", len(items)))
	return out, nil
}

func summaryPrompt(it Input) string {
	return "Question: " + it.Question + "\n Document: " + strings.Join(it.Documents, "\n") + "\n Summary: "
}
