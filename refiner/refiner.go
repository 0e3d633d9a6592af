package refiner

import (
	"context"
	"strings"
	"unicode"
)

// Kind 精炼器变体。
type Kind string

const (
	// KindAbstractiveRecomp RECOMP 生成式压缩（T5 模型）
	KindAbstractiveRecomp Kind = "abstractive_recomp"
	// KindExtractive RECOMP 抽取式压缩
	KindExtractive Kind = "extractive_recomp"
	// KindLLMLingua LLMLingua 提示压缩
	KindLLMLingua Kind = "llmlingua"
	// KindSelectiveContext Selective-Context 自信息过滤
	KindSelectiveContext Kind = "selective_context"
)

// Input 一个问题及其检索到的文档。
type Input struct {
	Question  string
	Documents []string
}

// Refiner 压缩检索上下文，返回结果与 items 一一对应。
type Refiner interface {
	Refine(ctx context.Context, items []Input) ([]string, error)
	Kind() Kind
}

// DefaultModelPaths 未配置 refiner_model_path 时按 refiner_name 查找的默认模型。
var DefaultModelPaths = map[string]string{
	"recomp_abstractive_nq":       "fangyuan/nq_abstractive_compressor",
	"recomp:abstractive_tqa":      "fangyuan/tqa_abstractive_compressor",
	"recomp:abstractive_hotpotqa": "fangyuan/hotpotqa_abstractive",
}

// DefaultModelPath 按名称精确查找默认模型。
func DefaultModelPath(name string) (string, bool) {
	p, ok := DefaultModelPaths[name]
	return p, ok
}

// splitSentences 按句末标点与换行切分，去掉空句。
func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	runes := []rune(text)
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			out = append(out, s)
		}
		b.Reset()
	}
	for i, r := range runes {
		if r == '\n' {
			flush()
			continue
		}
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '。' || r == '！' || r == '？' {
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				flush()
			}
		}
	}
	flush()
	return out
}

// documentSentences 展开全部文档的句子，保持原始顺序。
func documentSentences(docs []string) []string {
	var out []string
	for _, d := range docs {
		out = append(out, splitSentences(d)...)
	}
	return out
}
