// MockFetcher 的模型元数据测试模拟实现。
package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/ragkit/hub"
)

// MockFetcher 是 hub.Fetcher 的模拟实现
type MockFetcher struct {
	mu sync.Mutex

	types       map[string]string
	defaultType string
	err         error

	// 调用记录
	calls []string
}

var _ hub.Fetcher = (*MockFetcher)(nil)

// NewMockFetcher 创建新的 MockFetcher，未配置的路径返回空 model_type
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{types: make(map[string]string)}
}

// WithModelType 设置 path 对应的 model_type
func (m *MockFetcher) WithModelType(path, modelType string) *MockFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[path] = modelType
	return m
}

// WithDefaultType 设置未配置路径的 model_type
func (m *MockFetcher) WithDefaultType(modelType string) *MockFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultType = modelType
	return m
}

// WithError 设置返回错误
func (m *MockFetcher) WithError(err error) *MockFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// FetchModelConfig 实现 hub.Fetcher
func (m *MockFetcher) FetchModelConfig(_ context.Context, path string) (*hub.ModelConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, path)
	if m.err != nil {
		return nil, m.err
	}
	mt, ok := m.types[path]
	if !ok {
		mt = m.defaultType
	}
	return &hub.ModelConfig{ModelType: mt, Raw: map[string]any{"model_type": mt}}, nil
}

// Calls 返回按顺序请求过的路径
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount 返回调用次数
func (m *MockFetcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
