package factory

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/ragkit/config"
	"github.com/BaSui01/ragkit/retriever"
	"github.com/BaSui01/ragkit/types"
)

// SelectRetriever retrieval_method 严格等于 "bm25" 时选择 BM25，其余一律为稠密检索。
func SelectRetriever(p config.Params) (retriever.Kind, error) {
	method, err := p.String(config.KeyRetrievalMethod)
	if err != nil {
		return "", err
	}
	if method == "bm25" {
		return retriever.KindBM25, nil
	}
	return retriever.KindDense, nil
}

// NewRetriever 选择并创建检索器。
// use_retrieval_cache / save_retrieval_cache 任一开启且提供了 WithCache 时，结果包装为 CachedRetriever。
func NewRetriever(ctx context.Context, p config.Params, opts ...Option) (retriever.Retriever, error) {
	o := buildOptions(opts)

	kind, err := SelectRetriever(p)
	o.recordSelection("retriever", string(kind), err)
	if err != nil {
		return nil, err
	}

	corpusPath, err := p.String(config.KeyCorpusPath)
	if err != nil {
		return nil, err
	}
	topK, err := p.IntOr(config.KeyRetrievalTopK, 5)
	if err != nil {
		return nil, err
	}
	base := retriever.Config{CorpusPath: corpusPath, TopK: topK}

	var (
		r     retriever.Retriever
		model string
	)
	switch kind {
	case retriever.KindBM25:
		k1, err := p.FloatOr(config.KeyBM25K1, 1.5)
		if err != nil {
			return nil, err
		}
		b, err := p.FloatOr(config.KeyBM25B, 0.75)
		if err != nil {
			return nil, err
		}
		r, err = retriever.NewBM25Retriever(ctx, retriever.BM25Config{Config: base, K1: k1, B: b}, o.logger)
		if err != nil {
			return nil, err
		}
	case retriever.KindDense:
		model, err = p.String(config.KeyRetrievalModelPath)
		if err != nil {
			return nil, err
		}
		emb, err := o.embedderFor(p, model)
		if err != nil {
			return nil, err
		}
		r, err = retriever.NewDenseRetriever(ctx, retriever.DenseConfig{Config: base}, emb, o.logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, types.NewUnsupportedConfigError("retriever", "no implementation for retriever kind %q", kind)
	}

	return wrapRetrievalCache(r, p, o, retriever.CacheNamespace(corpusPath, topK, model))
}

func wrapRetrievalCache(r retriever.Retriever, p config.Params, o *options, namespace string) (retriever.Retriever, error) {
	use, err := p.BoolOr(config.KeyUseRetrievalCache, false)
	if err != nil {
		return nil, err
	}
	save, err := p.BoolOr(config.KeySaveRetrievalCache, false)
	if err != nil {
		return nil, err
	}
	if !use && !save {
		return r, nil
	}
	if o.cache == nil {
		o.logger.Warn("retrieval cache requested but redis is not configured",
			zap.Bool("use", use), zap.Bool("save", save))
		return r, nil
	}
	ttl, err := p.Duration(config.KeyRetrievalCacheTTL, 0)
	if err != nil {
		return nil, err
	}
	return retriever.NewCachedRetriever(r, o.cache, retriever.CacheConfig{
		Use:       use,
		Save:      save,
		TTL:       ttl,
		Namespace: namespace,
	}, o.metrics, o.logger), nil
}
