package retriever

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/ragkit/internal/cache"
	"github.com/BaSui01/ragkit/internal/metrics"
)

// CacheConfig 检索结果缓存配置。
type CacheConfig struct {
	// Use 读取缓存
	Use bool
	// Save 写入缓存
	Save bool
	// TTL 缓存过期时间，0 使用 Manager 默认值
	TTL time.Duration
	// Namespace 区分不同语料/模型的键前缀
	Namespace string
}

// CachedRetriever 在 Redis 中缓存检索结果。
type CachedRetriever struct {
	inner   Retriever
	cache   *cache.Manager
	cfg     CacheConfig
	metrics *metrics.Collector
	logger  *zap.Logger
}

var _ Retriever = (*CachedRetriever)(nil)

// NewCachedRetriever 包装 inner。
func NewCachedRetriever(inner Retriever, m *cache.Manager, cfg CacheConfig, collector *metrics.Collector, logger *zap.Logger) *CachedRetriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRetriever{
		inner:   inner,
		cache:   m,
		cfg:     cfg,
		metrics: collector,
		logger:  logger.With(zap.String("component", "retrieval_cache")),
	}
}

func (r *CachedRetriever) Kind() Kind { return r.inner.Kind() }

// Unwrap 返回被包装的检索器。
func (r *CachedRetriever) Unwrap() Retriever { return r.inner }

// Search 先查缓存，未命中时检索并按需写回。
func (r *CachedRetriever) Search(ctx context.Context, query string) ([]Document, error) {
	if docs, ok := r.lookup(ctx, query); ok {
		return docs, nil
	}
	docs, err := r.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	r.store(ctx, query, docs)
	return docs, nil
}

// BatchSearch 只对未命中的查询调用内部检索器。
func (r *CachedRetriever) BatchSearch(ctx context.Context, queries []string) ([][]Document, error) {
	out := make([][]Document, len(queries))
	var missIdx []int
	var missQueries []string
	for i, q := range queries {
		if docs, ok := r.lookup(ctx, q); ok {
			out[i] = docs
			continue
		}
		missIdx = append(missIdx, i)
		missQueries = append(missQueries, q)
	}
	if len(missQueries) == 0 {
		return out, nil
	}

	res, err := r.inner.BatchSearch(ctx, missQueries)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		out[i] = res[j]
		r.store(ctx, queries[i], res[j])
	}
	return out, nil
}

// Invalidate 删除 queries 对应的缓存条目，下次检索会重新计算。
func (r *CachedRetriever) Invalidate(ctx context.Context, queries ...string) error {
	if r.cache == nil || len(queries) == 0 {
		return nil
	}
	keys := make([]string, len(queries))
	for i, q := range queries {
		keys[i] = r.key(q)
	}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.metrics.RecordCacheError("retrieval")
		return err
	}
	r.logger.Debug("retrieval cache invalidated", zap.Int("queries", len(queries)))
	return nil
}

func (r *CachedRetriever) lookup(ctx context.Context, query string) ([]Document, bool) {
	if !r.cfg.Use || r.cache == nil {
		return nil, false
	}
	var docs []Document
	err := r.cache.GetJSON(ctx, r.key(query), &docs)
	switch {
	case err == nil:
		r.metrics.RecordCacheHit("retrieval")
		return docs, true
	case cache.IsCacheMiss(err):
		r.metrics.RecordCacheMiss("retrieval")
	default:
		r.metrics.RecordCacheError("retrieval")
		r.logger.Warn("retrieval cache read failed", zap.Error(err))
	}
	return nil, false
}

func (r *CachedRetriever) store(ctx context.Context, query string, docs []Document) {
	if !r.cfg.Save || r.cache == nil {
		return
	}
	if err := r.cache.SetJSON(ctx, r.key(query), docs, r.cfg.TTL); err != nil {
		r.metrics.RecordCacheError("retrieval")
		r.logger.Warn("retrieval cache write failed", zap.Error(err))
	}
}

// key 形如 retrieval:<namespace>:<kind>:<sha256(query)>
func (r *CachedRetriever) key(query string) string {
	sum := sha256.Sum256([]byte(query))
	ns := r.cfg.Namespace
	if ns == "" {
		ns = "default"
	}
	return "retrieval:" + ns + ":" + string(r.inner.Kind()) + ":" + hex.EncodeToString(sum[:])
}

// CacheNamespace 由语料路径、模型与 topk 生成缓存命名空间。
func CacheNamespace(corpusPath string, topK int, model string) string {
	sum := sha256.Sum256([]byte(corpusPath + "|" + model + "|" + strconv.Itoa(topK)))
	return hex.EncodeToString(sum[:8])
}
