package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BaSui01/ragkit/types"
	"gopkg.in/yaml.v3"
)

// RAG 组件选择使用的配置键。
const (
	KeyDatasetPath      = "dataset_path"
	KeySplit            = "split"
	KeyTestSampleNum    = "test_sample_num"
	KeyRandomSample     = "random_sample"
	KeySeed             = "seed"
	KeyGeneratorModel   = "generator_model"
	KeyUseVLLM          = "use_vllm"
	KeyRetrievalMethod  = "retrieval_method"
	KeyJudgerName       = "judger_name"
	KeyRefinerName      = "refiner_name"
	KeyRefinerModelPath = "refiner_model_path"

	KeyGeneratorEndpoint    = "generator_endpoint"
	KeyGeneratorAPIKey      = "generator_api_key"
	KeyGeneratorMaxInputLen = "generator_max_input_len"
	KeyGenerationParams     = "generation_params"

	KeyCorpusPath         = "corpus_path"
	KeyRetrievalTopK      = "retrieval_topk"
	KeyRetrievalModelPath = "retrieval_model_path"
	KeyEmbeddingEndpoint  = "embedding_endpoint"
	KeyEmbeddingAPIKey    = "embedding_api_key"
	KeyBM25K1             = "bm25_k1"
	KeyBM25B              = "bm25_b"
	KeyUseRetrievalCache  = "use_retrieval_cache"
	KeySaveRetrievalCache = "save_retrieval_cache"
	KeyRetrievalCacheTTL  = "retrieval_cache_ttl"

	KeyJudgerConfig = "judger_config"

	KeyRefinerEndpoint        = "refiner_endpoint"
	KeyRefinerTopK            = "refiner_topk"
	KeyRefinerLLMLinguaConfig = "refiner_llmlingua_config"
	KeyRefinerSCConfig        = "refiner_sc_config"
)

// knownKeys 可被 <PREFIX>_RAG_<KEY> 环境变量覆盖的键
var knownKeys = []string{
	KeyDatasetPath, KeySplit, KeyTestSampleNum, KeyRandomSample, KeySeed,
	KeyGeneratorModel, KeyUseVLLM, KeyRetrievalMethod, KeyJudgerName,
	KeyRefinerName, KeyRefinerModelPath,
	KeyGeneratorEndpoint, KeyGeneratorAPIKey, KeyGeneratorMaxInputLen,
	KeyCorpusPath, KeyRetrievalTopK, KeyRetrievalModelPath,
	KeyEmbeddingEndpoint, KeyEmbeddingAPIKey, KeyBM25K1, KeyBM25B,
	KeyUseRetrievalCache, KeySaveRetrievalCache, KeyRetrievalCacheTTL,
	KeyRefinerEndpoint, KeyRefinerTopK,
}

// Params 是组件选择器读取的键值配置。
//
// 访问器只做存在性和类型检查：缺失的必需键返回 MISSING_CONFIG_KEY，
// 类型不符返回 INVALID_CONFIG_VALUE。值为 null 的键视同缺失。
type Params map[string]any

// Lookup 返回原始值；值为 nil 时视为不存在。
func (p Params) Lookup(key string) (any, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Has 报告键是否存在且非 null。
func (p Params) Has(key string) bool {
	_, ok := p.Lookup(key)
	return ok
}

// Set 设置键值，返回自身以便链式调用。
func (p Params) Set(key string, value any) Params {
	p[key] = value
	return p
}

// Clone 返回浅拷贝。
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// String 读取必需的字符串键。
func (p Params) String(key string) (string, error) {
	v, ok := p.Lookup(key)
	if !ok {
		return "", missingKey(key)
	}
	s, ok := v.(string)
	if !ok {
		return "", invalidValue(key, "string", v)
	}
	return s, nil
}

// StringOr 读取可选字符串键，缺失时返回 def。
func (p Params) StringOr(key, def string) (string, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.String(key)
}

// OptionalString 读取可选字符串键。缺失、null 或空串时 ok 为 false。
func (p Params) OptionalString(key string) (value string, ok bool, err error) {
	if !p.Has(key) {
		return "", false, nil
	}
	s, err := p.String(key)
	if err != nil {
		return "", false, err
	}
	return s, s != "", nil
}

// Bool 读取必需的布尔键。
func (p Params) Bool(key string) (bool, error) {
	v, ok := p.Lookup(key)
	if !ok {
		return false, missingKey(key)
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, invalidValue(key, "bool", v)
		}
		return parsed, nil
	default:
		return false, invalidValue(key, "bool", v)
	}
}

// BoolOr 读取可选布尔键，缺失时返回 def。
func (p Params) BoolOr(key string, def bool) (bool, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.Bool(key)
}

// Int 读取必需的整数键。
func (p Params) Int(key string) (int, error) {
	v, ok := p.Lookup(key)
	if !ok {
		return 0, missingKey(key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, invalidValue(key, "int", v)
		}
		return int(n), nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, invalidValue(key, "int", v)
		}
		return parsed, nil
	default:
		return 0, invalidValue(key, "int", v)
	}
}

// IntOr 读取可选整数键，缺失时返回 def。
func (p Params) IntOr(key string, def int) (int, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.Int(key)
}

// OptionalInt 读取可选整数键，缺失或 null 时 ok 为 false。
func (p Params) OptionalInt(key string) (value int, ok bool, err error) {
	if !p.Has(key) {
		return 0, false, nil
	}
	n, err := p.Int(key)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// Float 读取必需的浮点键。
func (p Params) Float(key string) (float64, error) {
	v, ok := p.Lookup(key)
	if !ok {
		return 0, missingKey(key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, invalidValue(key, "float", v)
		}
		return parsed, nil
	default:
		return 0, invalidValue(key, "float", v)
	}
}

// FloatOr 读取可选浮点键，缺失时返回 def。
func (p Params) FloatOr(key string, def float64) (float64, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.Float(key)
}

// Strings 读取必需的字符串列表键。单个字符串按逗号切分。
func (p Params) Strings(key string) ([]string, error) {
	v, ok := p.Lookup(key)
	if !ok {
		return nil, missingKey(key)
	}
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, invalidValue(key, "[]string", v)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		parts := strings.Split(list, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	default:
		return nil, invalidValue(key, "[]string", v)
	}
}

// Duration 读取可选时长键（"24h" 或秒数），缺失时返回 def。
func (p Params) Duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := p.Lookup(key)
	if !ok {
		return def, nil
	}
	switch d := v.(type) {
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, invalidValue(key, "duration", v)
		}
		return parsed, nil
	case int:
		return time.Duration(d) * time.Second, nil
	case time.Duration:
		return d, nil
	default:
		return 0, invalidValue(key, "duration", v)
	}
}

// Sub 读取嵌套配置。缺失或 null 时返回空 Params。
func (p Params) Sub(key string) (Params, error) {
	v, ok := p.Lookup(key)
	if !ok {
		return Params{}, nil
	}
	switch m := v.(type) {
	case Params:
		return m, nil
	case map[string]any:
		return Params(m), nil
	default:
		return nil, invalidValue(key, "mapping", v)
	}
}

// overlayEnv 用 <prefix>_<KEY> 环境变量覆盖已知键。
// 值按 YAML 标量解码，因此 "true"、"10"、"[dev,test]" 会得到对应类型。
func (p Params) overlayEnv(prefix string) {
	for _, key := range knownKeys {
		raw, ok := os.LookupEnv(prefix + "_" + strings.ToUpper(key))
		if !ok || raw == "" {
			continue
		}
		var decoded any
		if err := yaml.Unmarshal([]byte(raw), &decoded); err != nil {
			p[key] = raw
			continue
		}
		p[key] = decoded
	}
}

func missingKey(key string) error {
	return types.Errorf(types.ErrMissingConfigKey, "config key %q is not set", key).
		WithComponent("config")
}

func invalidValue(key, want string, got any) error {
	return types.Errorf(types.ErrInvalidConfigValue, "config key %q: expected %s, got %T", key, want, got).
		WithComponent("config")
}

// Describe 返回便于日志输出的键值摘要（隐藏密钥）。
func (p Params) Describe() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		if strings.HasSuffix(k, "api_key") && v != nil && v != "" {
			out[k] = "***"
			continue
		}
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}
