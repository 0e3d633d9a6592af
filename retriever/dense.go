package retriever

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/ragkit/embedding"
	"github.com/BaSui01/ragkit/types"
)

// DenseConfig 稠密检索配置。
type DenseConfig struct {
	Config
	// ChunkSize 每次嵌入请求的文档数，默认 128
	ChunkSize int
	// Concurrency 并发嵌入请求数，默认 4
	Concurrency int
}

// DenseRetriever 首次检索时嵌入整个语料，之后按余弦相似度检索。
type DenseRetriever struct {
	cfg      DenseConfig
	docs     []Document
	embedder embedding.Embedder
	logger   *zap.Logger

	// mu 保护索引构建；构建失败不缓存，下次检索重试
	mu      sync.Mutex
	built   bool
	vectors [][]float32
}

var _ Retriever = (*DenseRetriever)(nil)

// NewDenseRetriever 加载语料，嵌入延迟到首次检索。
func NewDenseRetriever(ctx context.Context, cfg DenseConfig, embedder embedding.Embedder, logger *zap.Logger) (*DenseRetriever, error) {
	docs, err := LoadCorpus(ctx, cfg.CorpusPath)
	if err != nil {
		return nil, err
	}
	return NewDenseRetrieverFromDocuments(cfg, docs, embedder, logger)
}

// NewDenseRetrieverFromDocuments 基于内存文档创建检索器。
func NewDenseRetrieverFromDocuments(cfg DenseConfig, docs []Document, embedder embedding.Embedder, logger *zap.Logger) (*DenseRetriever, error) {
	if embedder == nil {
		return nil, types.NewError(types.ErrInvalidRequest, "dense retriever requires an embedder").WithComponent("retriever")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 128
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &DenseRetriever{
		cfg:      cfg,
		docs:     docs,
		embedder: embedder,
		logger:   logger.With(zap.String("component", "retriever"), zap.String("kind", string(KindDense))),
	}, nil
}

func (r *DenseRetriever) Kind() Kind { return KindDense }

func (r *DenseRetriever) buildIndex(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.built {
		return nil
	}

	vectors := make([][]float32, len(r.docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for start := 0; start < len(r.docs); start += r.cfg.ChunkSize {
		end := min(start+r.cfg.ChunkSize, len(r.docs))
		g.Go(func() error {
			texts := make([]string, end-start)
			for i := range texts {
				texts[i] = r.docs[start+i].Contents
			}
			vecs, err := r.embedder.Embed(gctx, texts)
			if err != nil {
				return err
			}
			if len(vecs) != len(texts) {
				return types.Errorf(types.ErrUpstreamError, "embedder returned %d vectors for %d documents", len(vecs), len(texts)).
					WithComponent("retriever")
			}
			copy(vectors[start:end], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Warn("dense index build failed", zap.Error(err))
		return err
	}
	r.vectors = vectors
	r.built = true
	r.logger.Info("dense index built", zap.Int("documents", len(r.docs)))
	return nil
}

// Search 返回与查询最相似的 TopK 篇文档。
func (r *DenseRetriever) Search(ctx context.Context, query string) ([]Document, error) {
	res, err := r.BatchSearch(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

// BatchSearch 一次嵌入全部查询后检索。
func (r *DenseRetriever) BatchSearch(ctx context.Context, queries []string) ([][]Document, error) {
	if err := r.buildIndex(ctx); err != nil {
		return nil, err
	}
	if len(queries) == 0 {
		return [][]Document{}, nil
	}

	qvecs, err := r.embedder.Embed(ctx, queries)
	if err != nil {
		return nil, err
	}
	if len(qvecs) != len(queries) {
		return nil, types.Errorf(types.ErrUpstreamError, "embedder returned %d vectors for %d queries", len(qvecs), len(queries)).
			WithComponent("retriever")
	}

	out := make([][]Document, len(queries))
	scores := make([]float64, len(r.vectors))
	for qi, qv := range qvecs {
		for i, dv := range r.vectors {
			scores[i] = embedding.Cosine(qv, dv)
		}
		top := embedding.TopK(scores, r.cfg.topK())
		docs := make([]Document, len(top))
		for i, s := range top {
			docs[i] = r.docs[s.Index]
			docs[i].Score = s.Score
		}
		out[qi] = docs
	}
	return out, nil
}
