package tokenizer

import (
	"hash/fnv"
	"strings"
	"unicode"
)

// WordTokenizer 按词切分的离线分词器，不需要下载编码数据.
// 词统一小写，ID 为词的 FNV-32 哈希.
type WordTokenizer struct{}

// NewWordTokenizer 创建 WordTokenizer.
func NewWordTokenizer() *WordTokenizer {
	return &WordTokenizer{}
}

// Words 返回小写后的词序列，标点被丢弃.
func (w *WordTokenizer) Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func (w *WordTokenizer) CountTokens(text string) (int, error) {
	return len(w.Words(text)), nil
}

func (w *WordTokenizer) Encode(text string) ([]int, error) {
	words := w.Words(text)
	ids := make([]int, len(words))
	for i, word := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		ids[i] = int(h.Sum32())
	}
	return ids, nil
}

func (w *WordTokenizer) Name() string {
	return "word"
}
