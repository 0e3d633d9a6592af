// MockEmbedder 的嵌入模型测试模拟实现。
//
// 向量为小写词的哈希词袋，词面重叠越多余弦相似度越高。
package mocks

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/BaSui01/ragkit/embedding"
	"github.com/BaSui01/ragkit/internal/tokenizer"
)

// DefaultDimension MockEmbedder 默认向量维度
const DefaultDimension = 256

// MockEmbedder 是 embedding.Embedder 的模拟实现
type MockEmbedder struct {
	mu sync.Mutex

	dim   int
	err   error
	words *tokenizer.WordTokenizer

	// 调用记录
	calls [][]string
}

var _ embedding.Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder 创建新的 MockEmbedder
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{dim: DefaultDimension, words: tokenizer.NewWordTokenizer()}
}

// WithDimension 设置向量维度
func (m *MockEmbedder) WithDimension(dim int) *MockEmbedder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dim = dim
	return m
}

// WithError 设置返回错误
func (m *MockEmbedder) WithError(err error) *MockEmbedder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Embed 实现 embedding.Embedder
func (m *MockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]string(nil), texts...))
	err, dim := m.err, m.dim
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, dim)
		for _, w := range m.words.Words(text) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(w))
			vec[h.Sum32()%uint32(dim)]++
		}
		out[i] = vec
	}
	return out, nil
}

// CallCount 返回 Embed 调用次数
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// EmbeddedTexts 返回所有调用中嵌入的文本总数
func (m *MockEmbedder) EmbeddedTexts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += len(c)
	}
	return n
}
