package retriever

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/BaSui01/ragkit/internal/tokenizer"
)

// BM25Config BM25 参数。
type BM25Config struct {
	Config
	// K1 词频饱和参数 (1.2-2.0)
	K1 float64
	// B 文档长度归一化参数
	B float64
}

// BM25Retriever 内存中的 BM25 检索器。
type BM25Retriever struct {
	cfg       BM25Config
	docs      []Document
	termFreqs []map[string]int
	docLens   []int
	avgDocLen float64
	idf       map[string]float64
	words     *tokenizer.WordTokenizer
	logger    *zap.Logger
}

var _ Retriever = (*BM25Retriever)(nil)

// NewBM25Retriever 加载语料并建立 BM25 统计。
func NewBM25Retriever(ctx context.Context, cfg BM25Config, logger *zap.Logger) (*BM25Retriever, error) {
	docs, err := LoadCorpus(ctx, cfg.CorpusPath)
	if err != nil {
		return nil, err
	}
	return NewBM25RetrieverFromDocuments(cfg, docs, logger), nil
}

// NewBM25RetrieverFromDocuments 基于内存文档建立索引。
func NewBM25RetrieverFromDocuments(cfg BM25Config, docs []Document, logger *zap.Logger) *BM25Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.K1 <= 0 {
		cfg.K1 = 1.5
	}
	if cfg.B < 0 || cfg.B > 1 {
		cfg.B = 0.75
	}

	r := &BM25Retriever{
		cfg:    cfg,
		docs:   docs,
		idf:    make(map[string]float64),
		words:  tokenizer.NewWordTokenizer(),
		logger: logger.With(zap.String("component", "retriever"), zap.String("kind", string(KindBM25))),
	}
	r.computeStats()
	r.logger.Info("bm25 index built",
		zap.Int("documents", len(docs)),
		zap.Int("terms", len(r.idf)),
		zap.Float64("avg_doc_len", r.avgDocLen))
	return r
}

func (r *BM25Retriever) Kind() Kind { return KindBM25 }

// computeStats 计算词频、文档长度与 IDF
func (r *BM25Retriever) computeStats() {
	r.termFreqs = make([]map[string]int, len(r.docs))
	r.docLens = make([]int, len(r.docs))
	termDocCount := make(map[string]int)

	totalLen := 0
	for i, doc := range r.docs {
		terms := r.words.Words(doc.Contents)
		r.docLens[i] = len(terms)
		totalLen += len(terms)

		tf := make(map[string]int, len(terms))
		for _, term := range terms {
			tf[term]++
		}
		r.termFreqs[i] = tf
		for term := range tf {
			termDocCount[term]++
		}
	}

	if len(r.docs) > 0 {
		r.avgDocLen = float64(totalLen) / float64(len(r.docs))
	}

	n := float64(len(r.docs))
	for term, df := range termDocCount {
		r.idf[term] = math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1.0)
	}
}

// Search 返回分数最高的 TopK 篇文档，分数为 0 的文档不返回。
func (r *BM25Retriever) Search(ctx context.Context, query string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	queryTerms := r.words.Words(query)
	type hit struct {
		index int
		score float64
	}
	var hits []hit
	for i, tf := range r.termFreqs {
		docLen := float64(r.docLens[i])
		score := 0.0
		for _, q := range queryTerms {
			f, ok := tf[q]
			if !ok {
				continue
			}
			numerator := float64(f) * (r.cfg.K1 + 1.0)
			denominator := float64(f) + r.cfg.K1*(1.0-r.cfg.B+r.cfg.B*(docLen/r.avgDocLen))
			score += r.idf[q] * (numerator / denominator)
		}
		if score > 0 {
			hits = append(hits, hit{index: i, score: score})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	if k := r.cfg.topK(); len(hits) > k {
		hits = hits[:k]
	}

	out := make([]Document, len(hits))
	for i, h := range hits {
		out[i] = r.docs[h.index]
		out[i].Score = h.score
	}
	return out, nil
}

// BatchSearch 逐个查询检索。
func (r *BM25Retriever) BatchSearch(ctx context.Context, queries []string) ([][]Document, error) {
	return batchBySearch(ctx, queries, r.Search)
}
