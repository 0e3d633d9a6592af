package factory

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/ragkit/config"
	"github.com/BaSui01/ragkit/generator"
	"github.com/BaSui01/ragkit/internal/cache"
	"github.com/BaSui01/ragkit/internal/metrics"
	"github.com/BaSui01/ragkit/internal/tokenizer"
	"github.com/BaSui01/ragkit/judger"
	"github.com/BaSui01/ragkit/refiner"
	"github.com/BaSui01/ragkit/retriever"
	"github.com/BaSui01/ragkit/testutil"
	"github.com/BaSui01/ragkit/testutil/fixtures"
	"github.com/BaSui01/ragkit/testutil/mocks"
	"github.com/BaSui01/ragkit/types"
)

func TestNewGenerator(t *testing.T) {
	var gotMaxTokens int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Inputs     string `json:"inputs"`
			Parameters struct {
				MaxNewTokens int `json:"max_new_tokens"`
			} `json:"parameters"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotMaxTokens = req.Parameters.MaxNewTokens
		_ = json.NewEncoder(w).Encode(map[string]string{"generated_text": "ok:" + req.Inputs})
	}))
	t.Cleanup(srv.Close)

	tests := []struct {
		model   string
		useVLLM bool
		want    generator.Kind
	}{
		{"google/flan-t5-base", true, generator.KindEncoderDecoder},
		{"meta-llama/Llama-3-8B", true, generator.KindVLLM},
		{"meta-llama/Llama-3-8B", false, generator.KindCausalLM},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			p := config.DefaultParams().
				Set(config.KeyGeneratorModel, tt.model).
				Set(config.KeyUseVLLM, tt.useVLLM).
				Set(config.KeyGeneratorEndpoint, srv.URL).
				Set(config.KeyGenerationParams, map[string]any{"max_tokens": 7, "stop": []any{"\n"}})

			g, err := NewGenerator(testutil.TestContext(t), p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Kind())
		})
	}

	p := config.DefaultParams().
		Set(config.KeyGeneratorModel, "llama").
		Set(config.KeyGeneratorEndpoint, srv.URL).
		Set(config.KeyGenerationParams, map[string]any{"max_tokens": 7})
	g, err := NewGenerator(testutil.TestContext(t), p)
	require.NoError(t, err)
	out, err := g.Generate(testutil.TestContext(t), []string{"hi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok:hi"}, out)
	assert.Equal(t, 7, gotMaxTokens)
}

func TestNewGenerator_Errors(t *testing.T) {
	ctx := testutil.TestContext(t)

	_, err := NewGenerator(ctx, config.DefaultParams().Set(config.KeyGeneratorModel, "llama"))
	assert.True(t, types.IsErrorCode(err, types.ErrMissingConfigKey), "generator_endpoint is required")

	p := config.DefaultParams().
		Set(config.KeyGeneratorModel, "llama").
		Set(config.KeyGeneratorEndpoint, "http://localhost").
		Set(config.KeyGenerationParams, "fast")
	_, err = NewGenerator(ctx, p)
	assert.True(t, types.IsErrorCode(err, types.ErrInvalidConfigValue))
}

func retrieverParams(t *testing.T, method string) config.Params {
	t.Helper()
	corpus := testutil.WriteJSONL(t, t.TempDir(), "corpus.jsonl", fixtures.Corpus())
	return config.DefaultParams().
		Set(config.KeyRetrievalMethod, method).
		Set(config.KeyCorpusPath, corpus).
		Set(config.KeyRetrievalModelPath, "intfloat/e5-base-v2").
		Set(config.KeyRetrievalTopK, 2)
}

func TestNewRetriever(t *testing.T) {
	ctx := testutil.TestContext(t)

	r, err := NewRetriever(ctx, retrieverParams(t, "bm25"))
	require.NoError(t, err)
	assert.Equal(t, retriever.KindBM25, r.Kind())
	docs, err := r.Search(ctx, "red planet Mars")
	require.NoError(t, err)
	require.NotEmpty(t, docs)
	assert.Equal(t, "d3", docs[0].ID)

	r, err = NewRetriever(ctx, retrieverParams(t, "e5"), WithEmbedder(mocks.NewMockEmbedder()))
	require.NoError(t, err)
	assert.Equal(t, retriever.KindDense, r.Kind())
	docs, err = r.Search(ctx, "Leonardo da Vinci portrait")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "d4", docs[0].ID)
}

func TestNewRetriever_DenseWithoutEmbedderNeedsEndpoint(t *testing.T) {
	_, err := NewRetriever(testutil.TestContext(t), retrieverParams(t, "dense"))
	assert.True(t, types.IsErrorCode(err, types.ErrMissingConfigKey))
}

func TestNewRetriever_Cache(t *testing.T) {
	ctx := testutil.TestContext(t)
	mr := miniredis.RunT(t)
	cc := cache.DefaultConfig()
	cc.Addr = mr.Addr()
	manager, err := cache.NewManager(cc, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	p := retrieverParams(t, "bm25").
		Set(config.KeyUseRetrievalCache, true).
		Set(config.KeySaveRetrievalCache, true).
		Set(config.KeyRetrievalCacheTTL, "2h")

	r, err := NewRetriever(ctx, p, WithCache(manager))
	require.NoError(t, err)
	cached, ok := r.(*retriever.CachedRetriever)
	require.True(t, ok)
	assert.Equal(t, retriever.KindBM25, cached.Kind())

	_, err = r.Search(ctx, "capital of France")
	require.NoError(t, err)
	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, 2*time.Hour, mr.TTL(keys[0]))

	// 未提供 Redis 时退化为无缓存
	r, err = NewRetriever(ctx, p)
	require.NoError(t, err)
	_, isCached := r.(*retriever.CachedRetriever)
	assert.False(t, isCached)
}

func TestNewJudger(t *testing.T) {
	ctx := testutil.TestContext(t)
	training := testutil.WriteJSONL(t, t.TempDir(), "train.jsonl", fixtures.Judgements())

	p := config.DefaultParams().
		Set(config.KeyJudgerName, "SKR_judger").
		Set(config.KeyJudgerConfig, map[string]any{"training_data_path": training, "topk": 3})

	j, err := NewJudger(ctx, p, WithEmbedder(mocks.NewMockEmbedder()))
	require.NoError(t, err)
	assert.Equal(t, judger.KindSKR, j.Kind())

	got, err := j.Judge(ctx, []string{"who won the 2006 world cup final match"})
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, got)

	_, err = NewJudger(ctx, p)
	assert.True(t, types.IsErrorCode(err, types.ErrMissingConfigKey), "model_path needed without an injected embedder")

	_, err = NewJudger(ctx, p.Clone().Set(config.KeyJudgerName, "unknown"), WithEmbedder(mocks.NewMockEmbedder()))
	assert.True(t, types.IsErrorCode(err, types.ErrUnsupportedConfig))
}

func TestNewRefiner(t *testing.T) {
	ctx := testutil.TestContext(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"generated_text": "short summary"})
	}))
	t.Cleanup(srv.Close)

	fetcher := mocks.NewMockFetcher().
		WithModelType("fangyuan/nq_abstractive_compressor", "t5").
		WithModelType("/models/recomp_extractive", "contriever")

	base := config.DefaultParams().Set(config.KeyRefinerEndpoint, srv.URL)
	opts := []Option{
		WithFetcher(fetcher),
		WithEmbedder(mocks.NewMockEmbedder()),
		WithTokenizer(tokenizer.NewWordTokenizer()),
	}

	tests := []struct {
		name string
		path any
		want refiner.Kind
	}{
		{name: "recomp_abstractive_nq", path: nil, want: refiner.KindAbstractiveRecomp},
		{name: "recomp", path: "/models/recomp_extractive", want: refiner.KindExtractive},
		{name: "llmlingua", path: "/models/llama", want: refiner.KindLLMLingua},
		{name: "selective-context", path: "gpt2", want: refiner.KindSelectiveContext},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base.Clone().Set(config.KeyRefinerName, tt.name).Set(config.KeyRefinerModelPath, tt.path)
			r, err := NewRefiner(ctx, p, opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Kind())

			out, err := r.Refine(ctx, []refiner.Input{{
				Question:  "capital of France",
				Documents: []string{"Paris is the capital of France.", "It has many museums."},
			}})
			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.NotEmpty(t, out[0])
		})
	}
}

func TestNewRefiner_Errors(t *testing.T) {
	ctx := testutil.TestContext(t)
	fetcher := mocks.NewMockFetcher()

	_, err := NewRefiner(ctx, refinerParams("custom", nil), WithFetcher(fetcher))
	assert.True(t, types.IsErrorCode(err, types.ErrUnsupportedConfig))
	assert.Zero(t, fetcher.CallCount())

	p := config.DefaultParams().
		Set(config.KeyRefinerName, "sc").
		Set(config.KeyRefinerModelPath, "gpt2").
		Set(config.KeyRefinerSCConfig, map[string]any{"reduce_ratio": 1.5})
	_, err = NewRefiner(ctx, p, WithFetcher(fetcher))
	assert.True(t, types.IsErrorCode(err, types.ErrInvalidConfigValue))

	// 生成式压缩需要 refiner_endpoint
	fetcher = mocks.NewMockFetcher().WithDefaultType("t5")
	_, err = NewRefiner(ctx, refinerParams("recomp_abstractive_nq", nil), WithFetcher(fetcher))
	assert.True(t, types.IsErrorCode(err, types.ErrMissingConfigKey))
}

func TestNewRefiner_DefaultFetcherReadsLocalConfig(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "recomp_ext/config.json", `{"model_type":"contriever"}`)

	p := config.DefaultParams().
		Set(config.KeyRefinerName, "my-recomp").
		Set(config.KeyRefinerModelPath, dir+"/recomp_ext")

	r, err := NewRefiner(testutil.TestContext(t), p, WithEmbedder(mocks.NewMockEmbedder()))
	require.NoError(t, err)
	assert.Equal(t, refiner.KindExtractive, r.Kind())
}

func TestSelectionMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector("sel", reg, nil)
	ctx := testutil.TestContext(t)

	_, err := NewJudger(ctx, config.Params{config.KeyJudgerName: "nope"}, WithMetrics(collector))
	require.Error(t, err)

	_, err = SelectRefinerDetails(ctx, refinerParams("sc", "gpt2"),
		WithMetrics(collector), WithFetcher(mocks.NewMockFetcher()))
	require.NoError(t, err)

	n, err := promtestutil.GatherAndCount(reg, "sel_component_selection_errors_total", "sel_component_selections_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSelectAll(t *testing.T) {
	p := config.DefaultParams().
		Set(config.KeyGeneratorModel, "facebook/bart-large").
		Set(config.KeyRetrievalMethod, "bm25").
		Set(config.KeyJudgerName, "unknown").
		Set(config.KeyRefinerName, "recomp_abstractive_nq")

	sel := SelectAll(testutil.TestContext(t), p, WithFetcher(mocks.NewMockFetcher().WithDefaultType("t5")))
	assert.Equal(t, string(generator.KindEncoderDecoder), sel.Generator)
	assert.Equal(t, string(retriever.KindBM25), sel.Retriever)
	assert.Empty(t, sel.Judger)
	require.NotNil(t, sel.Refiner)
	assert.Equal(t, refiner.KindAbstractiveRecomp, sel.Refiner.Kind)
	assert.Equal(t, "fangyuan/nq_abstractive_compressor", sel.Refiner.ModelPath)
	assert.Equal(t, "t5", sel.Refiner.ModelType)

	require.Len(t, sel.Errors, 1)
	assert.True(t, types.IsErrorCode(sel.Errors["judger"], types.ErrUnsupportedConfig))

	empty := SelectAll(testutil.TestContext(t), config.Params{})
	assert.Empty(t, empty.Errors)
	assert.Nil(t, empty.Refiner)
}
