// Package tokenizer provides token counting and encoding for context refiners.
package tokenizer

import "strings"

// Tokenizer 是统一的分词接口.
type Tokenizer interface {
	// CountTokens 返回给定文本的 token 数.
	CountTokens(text string) (int, error)

	// Encode 将文本转换为 token ID 列表. 相同片段必须得到相同 ID.
	Encode(text string) ([]int, error)

	// Name 返回分词器的名称.
	Name() string
}

// New 按名称创建分词器. "word" 或空串返回 WordTokenizer，其余按 tiktoken 模型名处理.
func New(name string) (Tokenizer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "word":
		return NewWordTokenizer(), nil
	default:
		return NewTiktokenTokenizer(name)
	}
}
