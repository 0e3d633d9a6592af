// Package embedding provides text embedding clients and vector helpers shared by
// the dense retriever, the SKR judger and the extractive refiner.
package embedding

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/BaSui01/ragkit/internal/tlsutil"
	"github.com/BaSui01/ragkit/types"
)

// Embedder turns texts into vectors. The returned slice is index-aligned with texts.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedderFunc adapts a function to Embedder.
type EmbedderFunc func(ctx context.Context, texts []string) ([][]float32, error)

// Embed calls f.
func (f EmbedderFunc) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return f(ctx, texts)
}

// OpenAIConfig configures an OpenAI-compatible embeddings client
// (OpenAI, vLLM, text-embeddings-inference, ...).
type OpenAIConfig struct {
	// BaseURL including the version prefix, e.g. http://localhost:8080/v1.
	BaseURL string
	// APIKey may be empty for self-hosted servers.
	APIKey string
	// Model is the embedding model name or path.
	Model string
	// BatchSize caps the inputs per request. Defaults to 256.
	BatchSize int
	// HTTPClient overrides the TLS-hardened default client (60s timeout).
	HTTPClient *http.Client
}

// OpenAIEmbedder implements Embedder via the /embeddings endpoint.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	batchSize int
	logger    *zap.Logger
}

var _ Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder creates an OpenAIEmbedder.
func NewOpenAIEmbedder(cfg OpenAIConfig, logger *zap.Logger) (*OpenAIEmbedder, error) {
	if cfg.Model == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "embedding model is required").WithComponent("embedding")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = tlsutil.ClientOrDefault(cfg.HTTPClient, 60*time.Second)

	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(oc),
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
		logger:    logger.With(zap.String("component", "embedding")),
	}, nil
}

// Model returns the configured model name.
func (e *OpenAIEmbedder) Model() string { return e.model }

// Embed generates embeddings for texts, splitting them into batches.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts[start:end],
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			return nil, types.NewError(types.ErrUpstreamError, "create embeddings").
				WithCause(err).
				WithRetryable(true).
				WithComponent("embedding")
		}
		if len(resp.Data) != end-start {
			return nil, types.Errorf(types.ErrUpstreamError, "embeddings: got %d vectors for %d inputs", len(resp.Data), end-start).
				WithComponent("embedding")
		}
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= end-start {
				return nil, fmt.Errorf("embeddings: index %d out of range", d.Index)
			}
			out[start+d.Index] = d.Embedding
		}
		e.logger.Debug("embedded batch", zap.Int("start", start), zap.Int("size", end-start))
	}
	return out, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a zero vector
// or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Scored pairs an index with its score.
type Scored struct {
	Index int
	Score float64
}

// TopK returns the k highest scores in descending order. Ties keep the lower index first.
func TopK(scores []float64, k int) []Scored {
	all := make([]Scored, len(scores))
	for i, s := range scores {
		all[i] = Scored{Index: i, Score: s}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	if k >= 0 && k < len(all) {
		all = all[:k]
	}
	return all
}
