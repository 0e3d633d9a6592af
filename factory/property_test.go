package factory

import (
	"context"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/BaSui01/ragkit/config"
	"github.com/BaSui01/ragkit/generator"
	"github.com/BaSui01/ragkit/judger"
	"github.com/BaSui01/ragkit/refiner"
	"github.com/BaSui01/ragkit/retriever"
	"github.com/BaSui01/ragkit/testutil/mocks"
	"github.com/BaSui01/ragkit/types"
)

// 名称生成器：混入会命中规则的片段，覆盖大小写变体
func nameGen() *rapid.Generator[string] {
	fragment := rapid.SampledFrom([]string{
		"t5", "T5", "bart", "BART", "skr", "SKR", "recomp", "lingua", "sc", "SC",
		"selective-context", "llama", "bm25", "BM25", "-", "_", "/", "org",
	})
	return rapid.Custom(func(t *rapid.T) string {
		parts := rapid.SliceOfN(fragment, 0, 4).Draw(t, "parts")
		return strings.Join(parts, "") + rapid.StringMatching(`[a-z0-9]{0,4}`).Draw(t, "tail")
	})
}

func TestProperty_SelectGenerator(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		model := nameGen().Draw(rt, "model")
		useVLLM := rapid.Bool().Draw(rt, "use_vllm")
		p := config.Params{config.KeyGeneratorModel: model, config.KeyUseVLLM: useVLLM}

		got, err := SelectGenerator(p)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		again, _ := SelectGenerator(p)
		if got != again {
			rt.Fatalf("selection not deterministic: %s vs %s", got, again)
		}

		var want generator.Kind
		switch {
		case strings.Contains(model, "t5") || strings.Contains(model, "bart"):
			want = generator.KindEncoderDecoder
		case useVLLM:
			want = generator.KindVLLM
		default:
			want = generator.KindCausalLM
		}
		if got != want {
			rt.Fatalf("model=%q use_vllm=%v: got %s, want %s", model, useVLLM, got, want)
		}
	})
}

func TestProperty_SelectRetriever(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		method := nameGen().Draw(rt, "method")
		got, err := SelectRetriever(config.Params{config.KeyRetrievalMethod: method})
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if (got == retriever.KindBM25) != (method == "bm25") {
			rt.Fatalf("method=%q selected %s", method, got)
		}
	})
}

func TestProperty_SelectJudger(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		name := nameGen().Draw(rt, "name")
		got, err := SelectJudger(config.Params{config.KeyJudgerName: name})
		if strings.Contains(strings.ToLower(name), "skr") {
			if err != nil || got != judger.KindSKR {
				rt.Fatalf("name=%q: got %s, %v", name, got, err)
			}
			return
		}
		if !types.IsErrorCode(err, types.ErrUnsupportedConfig) {
			rt.Fatalf("name=%q: expected UNSUPPORTED_CONFIG, got %v", name, err)
		}
	})
}

// 显式给出路径时选择只依赖名称、路径与 model_type，且只获取一次元数据
func TestProperty_SelectRefiner(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		name := nameGen().Draw(rt, "name")
		path := "/models/" + nameGen().Draw(rt, "path")
		modelType := rapid.SampledFrom([]string{"t5", "bert", "llama", ""}).Draw(rt, "model_type")

		fetcher := mocks.NewMockFetcher().WithDefaultType(modelType)
		got, err := SelectRefiner(context.Background(), refinerParams(name, path), fetcher)
		if fetcher.CallCount() != 1 {
			rt.Fatalf("expected exactly one metadata fetch, got %d", fetcher.CallCount())
		}

		lower := strings.ToLower(name)
		var want refiner.Kind
		switch {
		case strings.Contains(lower, "recomp") || strings.Contains(path, "recomp"):
			want = refiner.KindExtractive
			if modelType == "t5" {
				want = refiner.KindAbstractiveRecomp
			}
		case strings.Contains(lower, "lingua"):
			want = refiner.KindLLMLingua
		case strings.Contains(lower, "selective-context") || strings.Contains(lower, "sc"):
			want = refiner.KindSelectiveContext
		}

		if want == "" {
			if !types.IsErrorCode(err, types.ErrUnsupportedConfig) {
				rt.Fatalf("name=%q path=%q: expected UNSUPPORTED_CONFIG, got %s, %v", name, path, got, err)
			}
			return
		}
		if err != nil || got != want {
			rt.Fatalf("name=%q path=%q type=%q: got %s (%v), want %s", name, path, modelType, got, err, want)
		}
	})
}
