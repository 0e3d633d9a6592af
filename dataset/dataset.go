package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/ragkit/types"
)

// Split 数据集划分名称。
type Split string

const (
	SplitTrain Split = "train"
	SplitDev   Split = "dev"
	SplitTest  Split = "test"
)

// AllSplits 按固定顺序列出全部划分。
var AllSplits = []Split{SplitTrain, SplitDev, SplitTest}

// IsValid 判断是否为已知划分。
func (s Split) IsValid() bool {
	switch s {
	case SplitTrain, SplitDev, SplitTest:
		return true
	}
	return false
}

// Splits 保存三个划分的数据集，nil 表示未加载。
type Splits map[Split]*Dataset

// NewSplits 返回包含全部划分键、值均为 nil 的 Splits。
func NewSplits() Splits {
	s := make(Splits, len(AllSplits))
	for _, sp := range AllSplits {
		s[sp] = nil
	}
	return s
}

// Loaded 返回已加载的划分，顺序与 AllSplits 一致。
func (s Splits) Loaded() []Split {
	var out []Split
	for _, sp := range AllSplits {
		if s[sp] != nil {
			out = append(out, sp)
		}
	}
	return out
}

// Item 数据集中的一条样本。
type Item struct {
	ID            string         `json:"id"`
	Question      string         `json:"question"`
	GoldenAnswers []string       `json:"golden_answers"`
	Choices       []string       `json:"choices,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	// Output 保存流水线各阶段写入的中间结果
	Output map[string]any `json:"output,omitempty"`
}

// Dataset 从 JSONL 文件加载的样本集合。
type Dataset struct {
	Path  string
	Items []Item
}

type options struct {
	sampleNum    int
	hasSampleNum bool
	randomSample bool
	seed         uint64
	logger       *zap.Logger
}

// Option 配置 New。
type Option func(*options)

// WithSampleNum 限制样本数量，n <= 0 等同于不限制。
func WithSampleNum(n int) Option {
	return func(o *options) {
		o.sampleNum = n
		o.hasSampleNum = n > 0
	}
}

// WithRandomSample 启用随机采样（仅在设置了 WithSampleNum 时生效）。
func WithRandomSample(random bool) Option {
	return func(o *options) { o.randomSample = random }
}

// WithSeed 设置随机采样种子。
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = uint64(seed) }
}

// WithLogger 设置记录采样结果的 logger。
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New 从 path 指向的 JSONL 文件加载数据集。
func New(ctx context.Context, path string, opts ...Option) (*Dataset, error) {
	o := options{seed: 2024}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	items, err := readItems(ctx, path)
	if err != nil {
		return nil, err
	}

	if o.hasSampleNum && o.sampleNum < len(items) {
		if o.randomSample {
			r := rand.New(rand.NewPCG(o.seed, o.seed))
			r.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
		}
		o.logger.Debug("dataset sampled",
			zap.String("path", path),
			zap.Int("total", len(items)),
			zap.Int("kept", o.sampleNum),
			zap.Bool("random", o.randomSample))
		items = items[:o.sampleNum]
	}

	return &Dataset{Path: path, Items: items}, nil
}

func readItems(ctx context.Context, path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loadError(path, err)
	}
	defer f.Close()

	var items []Item
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var item Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return nil, loadError(path, fmt.Errorf("line %d: %w", lineNum, err))
		}
		if item.ID == "" {
			item.ID = strconv.Itoa(len(items))
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, loadError(path, err)
	}
	return items, nil
}

// Len 返回样本数量。
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Items)
}

// Questions 返回全部问题。
func (d *Dataset) Questions() []string {
	out := make([]string, len(d.Items))
	for i, it := range d.Items {
		out[i] = it.Question
	}
	return out
}

// GoldenAnswers 返回全部标准答案。
func (d *Dataset) GoldenAnswers() [][]string {
	out := make([][]string, len(d.Items))
	for i, it := range d.Items {
		out[i] = it.GoldenAnswers
	}
	return out
}

// Batches 将样本按 size 切分，最后一批可能不足 size。
func (d *Dataset) Batches(size int) [][]Item {
	if size <= 0 {
		size = len(d.Items)
	}
	var out [][]Item
	for start := 0; start < len(d.Items); start += size {
		end := min(start+size, len(d.Items))
		out = append(out, d.Items[start:end])
	}
	return out
}

// Save 以 JSONL 格式写出数据集。
func (d *Dataset) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, it := range d.Items {
		if err := enc.Encode(it); err != nil {
			_ = f.Close()
			return fmt.Errorf("save dataset: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("save dataset: %w", err)
	}
	return f.Close()
}

func loadError(path string, cause error) error {
	return types.Errorf(types.ErrDatasetLoad, "load dataset %s", path).
		WithCause(cause).
		WithComponent("dataset")
}
