package refiner

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/ragkit/embedding"
	"github.com/BaSui01/ragkit/types"
)

// ExtractiveRefiner 保留与问题最相似的 TopK 个句子，按原文顺序拼接。
type ExtractiveRefiner struct {
	embedder embedding.Embedder
	topK     int
	logger   *zap.Logger
}

var _ Refiner = (*ExtractiveRefiner)(nil)

// NewExtractiveRefiner 创建抽取式精炼器，topK <= 0 时取 5。
func NewExtractiveRefiner(embedder embedding.Embedder, topK int, logger *zap.Logger) (*ExtractiveRefiner, error) {
	if embedder == nil {
		return nil, types.NewError(types.ErrInvalidRequest, "extractive refiner requires an embedder").WithComponent("refiner")
	}
	if topK <= 0 {
		topK = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractiveRefiner{
		embedder: embedder,
		topK:     topK,
		logger:   logger.With(zap.String("component", "refiner"), zap.String("kind", string(KindExtractive))),
	}, nil
}

func (r *ExtractiveRefiner) Kind() Kind { return KindExtractive }

// Refine 每个输入嵌入一次（问题 + 全部句子）。
func (r *ExtractiveRefiner) Refine(ctx context.Context, items []Input) ([]string, error) {
	out := make([]string, len(items))
	for i, it := range items {
		sentences := documentSentences(it.Documents)
		if len(sentences) == 0 {
			continue
		}
		if len(sentences) <= r.topK {
			out[i] = strings.Join(sentences, "\n")
			continue
		}

		vecs, err := r.embedder.Embed(ctx, append([]string{it.Question}, sentences...))
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(sentences)+1 {
			return nil, types.Errorf(types.ErrUpstreamError, "embedder returned %d vectors for %d texts", len(vecs), len(sentences)+1).
				WithComponent("refiner")
		}

		scores := make([]float64, len(sentences))
		for j := range sentences {
			scores[j] = embedding.Cosine(vecs[0], vecs[j+1])
		}
		top := embedding.TopK(scores, r.topK)
		idx := make([]int, len(top))
		for j, s := range top {
			idx[j] = s.Index
		}
		sort.Ints(idx)

		kept := make([]string, len(idx))
		for j, k := range idx {
			kept[j] = sentences[k]
		}
		out[i] = strings.Join(kept, "\n")
	}
	return out, nil
}
