package retriever

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BaSui01/ragkit/types"
)

// Kind 检索器变体。
type Kind string

const (
	// KindBM25 稀疏词法检索
	KindBM25 Kind = "bm25"
	// KindDense 稠密向量检索
	KindDense Kind = "dense"
)

// Retriever 为查询返回最相关的文档，结果按分数降序。
type Retriever interface {
	Search(ctx context.Context, query string) ([]Document, error)
	BatchSearch(ctx context.Context, queries []string) ([][]Document, error)
	Kind() Kind
}

// Document 语料中的一条文档。
type Document struct {
	ID       string  `json:"id"`
	Title    string  `json:"title,omitempty"`
	Contents string  `json:"contents"`
	Score    float64 `json:"score,omitempty"`
}

// Config 检索器公共配置。
type Config struct {
	// CorpusPath JSONL 语料路径
	CorpusPath string
	// TopK 每个查询返回的文档数，默认 5
	TopK int
}

func (c Config) topK() int {
	if c.TopK <= 0 {
		return 5
	}
	return c.TopK
}

// corpusLine 兼容 contents 与 title/text 两种语料格式。
type corpusLine struct {
	ID       any    `json:"id"`
	Contents string `json:"contents"`
	Title    string `json:"title"`
	Text     string `json:"text"`
}

// LoadCorpus 逐行读取 JSONL 语料。
// contents 的第一行视为标题；缺少 contents 时由 title 与 text 拼接。
func LoadCorpus(ctx context.Context, path string) ([]Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, types.NewError(types.ErrCorpusLoad, "corpus path is empty").WithComponent("retriever")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, corpusError(path, err)
	}
	defer f.Close()

	var docs []Document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var cl corpusLine
		if err := json.Unmarshal([]byte(line), &cl); err != nil {
			return nil, corpusError(path, fmt.Errorf("line %d: %w", lineNum, err))
		}
		docs = append(docs, cl.toDocument(len(docs)))
	}
	if err := scanner.Err(); err != nil {
		return nil, corpusError(path, err)
	}
	return docs, nil
}

func (cl corpusLine) toDocument(index int) Document {
	doc := Document{ID: idString(cl.ID, index)}
	if cl.Contents != "" {
		doc.Contents = cl.Contents
		doc.Title, _, _ = strings.Cut(cl.Contents, "\n")
		return doc
	}
	doc.Title = cl.Title
	if cl.Title != "" {
		doc.Contents = cl.Title + "\n" + cl.Text
	} else {
		doc.Contents = cl.Text
	}
	return doc
}

func idString(v any, index int) string {
	switch id := v.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	return strconv.Itoa(index)
}

func corpusError(path string, cause error) error {
	return types.Errorf(types.ErrCorpusLoad, "load corpus %s", path).
		WithCause(cause).
		WithComponent("retriever")
}

// batchBySearch 逐个查询调用 search。
func batchBySearch(ctx context.Context, queries []string, search func(context.Context, string) ([]Document, error)) ([][]Document, error) {
	out := make([][]Document, len(queries))
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docs, err := search(ctx, q)
		if err != nil {
			return nil, err
		}
		out[i] = docs
	}
	return out, nil
}
