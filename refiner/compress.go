package refiner

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/ragkit/internal/tokenizer"
	"github.com/BaSui01/ragkit/types"
)

// LLMLinguaConfig LLMLingua 精炼配置。
type LLMLinguaConfig struct {
	// Rate 保留的 token 比例 (0,1]，默认 0.55
	Rate float64
	// Tokenizer 计数用分词器，默认 WordTokenizer
	Tokenizer tokenizer.Tokenizer
}

// LLMLinguaRefiner 按与问题的词面重叠度保留句子，直到达到 Rate * 总 token 数。
type LLMLinguaRefiner struct {
	cfg    LLMLinguaConfig
	words  *tokenizer.WordTokenizer
	logger *zap.Logger
}

var _ Refiner = (*LLMLinguaRefiner)(nil)

// NewLLMLinguaRefiner 创建 LLMLingua 精炼器。
func NewLLMLinguaRefiner(cfg LLMLinguaConfig, logger *zap.Logger) (*LLMLinguaRefiner, error) {
	if cfg.Rate == 0 {
		cfg.Rate = 0.55
	}
	if cfg.Rate < 0 || cfg.Rate > 1 {
		return nil, types.Errorf(types.ErrInvalidConfigValue, "llmlingua rate must be in (0,1], got %v", cfg.Rate).WithComponent("refiner")
	}
	if cfg.Tokenizer == nil {
		cfg.Tokenizer = tokenizer.NewWordTokenizer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMLinguaRefiner{
		cfg:    cfg,
		words:  tokenizer.NewWordTokenizer(),
		logger: logger.With(zap.String("component", "refiner"), zap.String("kind", string(KindLLMLingua))),
	}, nil
}

func (r *LLMLinguaRefiner) Kind() Kind { return KindLLMLingua }

// Refine 压缩每个输入的文档。
func (r *LLMLinguaRefiner) Refine(ctx context.Context, items []Input) ([]string, error) {
	out := make([]string, len(items))
	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := r.compress(it)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (r *LLMLinguaRefiner) compress(it Input) (string, error) {
	sentences := documentSentences(it.Documents)
	if len(sentences) == 0 {
		return "", nil
	}

	counts, total, err := tokenCounts(r.cfg.Tokenizer, sentences)
	if err != nil {
		return "", err
	}
	budget := int(math.Ceil(r.cfg.Rate * float64(total)))

	query := make(map[string]struct{})
	for _, w := range r.words.Words(it.Question) {
		query[w] = struct{}{}
	}
	scores := make([]float64, len(sentences))
	for i, s := range sentences {
		scores[i] = overlap(r.words.Words(s), query)
	}

	order := make([]int, len(sentences))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	keep := make([]bool, len(sentences))
	used := 0
	for n, idx := range order {
		// 至少保留得分最高的一句
		if n > 0 && used+counts[idx] > budget {
			continue
		}
		keep[idx] = true
		used += counts[idx]
	}

	r.logger.Debug("compressed", zap.Int("tokens", total), zap.Int("kept", used), zap.Int("budget", budget))
	return joinKept(sentences, keep), nil
}

// overlap 句子中属于问题词的比例。
func overlap(words []string, query map[string]struct{}) float64 {
	if len(words) == 0 {
		return 0
	}
	hit := 0
	for _, w := range words {
		if _, ok := query[w]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(words))
}

// SelectiveContextConfig Selective-Context 精炼配置。
type SelectiveContextConfig struct {
	// ReduceRatio 删除的 token 比例 [0,1)，默认 0.5
	ReduceRatio float64
	// Tokenizer 分词器，默认 WordTokenizer
	Tokenizer tokenizer.Tokenizer
}

// SelectiveContextRefiner 删除平均自信息最低的句子，直到删除量达到 ReduceRatio。
// 自信息 −log p(t) 由 token 在当前上下文中的频率估计。
type SelectiveContextRefiner struct {
	cfg    SelectiveContextConfig
	logger *zap.Logger
}

var _ Refiner = (*SelectiveContextRefiner)(nil)

// NewSelectiveContextRefiner 创建 Selective-Context 精炼器。
func NewSelectiveContextRefiner(cfg SelectiveContextConfig, logger *zap.Logger) (*SelectiveContextRefiner, error) {
	if cfg.ReduceRatio < 0 || cfg.ReduceRatio >= 1 {
		return nil, types.Errorf(types.ErrInvalidConfigValue, "selective-context reduce_ratio must be in [0,1), got %v", cfg.ReduceRatio).
			WithComponent("refiner")
	}
	if cfg.Tokenizer == nil {
		cfg.Tokenizer = tokenizer.NewWordTokenizer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectiveContextRefiner{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "refiner"), zap.String("kind", string(KindSelectiveContext))),
	}, nil
}

func (r *SelectiveContextRefiner) Kind() Kind { return KindSelectiveContext }

// Refine 压缩每个输入的文档。
func (r *SelectiveContextRefiner) Refine(ctx context.Context, items []Input) ([]string, error) {
	out := make([]string, len(items))
	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := r.compress(it)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (r *SelectiveContextRefiner) compress(it Input) (string, error) {
	sentences := documentSentences(it.Documents)
	if len(sentences) == 0 {
		return "", nil
	}

	ids := make([][]int, len(sentences))
	freq := make(map[int]int)
	total := 0
	for i, s := range sentences {
		enc, err := r.cfg.Tokenizer.Encode(s)
		if err != nil {
			return "", fmt.Errorf("selective-context tokenize: %w", err)
		}
		ids[i] = enc
		total += len(enc)
		for _, id := range enc {
			freq[id]++
		}
	}
	if total == 0 {
		return strings.Join(sentences, " "), nil
	}

	info := make([]float64, len(sentences))
	for i, enc := range ids {
		if len(enc) == 0 {
			continue
		}
		sum := 0.0
		for _, id := range enc {
			sum += -math.Log(float64(freq[id]) / float64(total))
		}
		info[i] = sum / float64(len(enc))
	}

	order := make([]int, len(sentences))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return info[order[a]] < info[order[b]] })

	target := r.cfg.ReduceRatio * float64(total)
	keep := make([]bool, len(sentences))
	for i := range keep {
		keep[i] = true
	}
	dropped := 0
	for n, idx := range order {
		if float64(dropped) >= target || n == len(order)-1 {
			break
		}
		keep[idx] = false
		dropped += len(ids[idx])
	}

	r.logger.Debug("compressed", zap.Int("tokens", total), zap.Int("dropped", dropped))
	return joinKept(sentences, keep), nil
}

func tokenCounts(tok tokenizer.Tokenizer, sentences []string) ([]int, int, error) {
	counts := make([]int, len(sentences))
	total := 0
	for i, s := range sentences {
		n, err := tok.CountTokens(s)
		if err != nil {
			return nil, 0, fmt.Errorf("count tokens: %w", err)
		}
		counts[i] = n
		total += n
	}
	return counts, total, nil
}

func joinKept(sentences []string, keep []bool) string {
	kept := make([]string, 0, len(sentences))
	for i, s := range sentences {
		if keep[i] {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, " ")
}
