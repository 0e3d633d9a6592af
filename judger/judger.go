package judger

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/ragkit/embedding"
	"github.com/BaSui01/ragkit/types"
)

// Kind 判别器变体。
type Kind string

// KindSKR Self-Knowledge guided Retrieval 判别器
const KindSKR Kind = "skr"

// Judger 判断每个问题是否需要检索，结果与 questions 一一对应。
type Judger interface {
	Judge(ctx context.Context, questions []string) ([]bool, error)
	Kind() Kind
}

// 训练数据中的判定标签
const (
	JudgementIRBetter = "ir_better"
	JudgementIRWorse  = "ir_worse"
)

// SKRConfig SKR 判别器配置。
type SKRConfig struct {
	// TrainingDataPath 训练数据 JSONL，每行包含 question 与 judgement
	TrainingDataPath string
	// TopK 近邻数量，默认 5
	TopK int
	// ModelPath 嵌入模型
	ModelPath string
}

type trainingExample struct {
	Question  string `json:"question"`
	Judgement string `json:"judgement"`
}

// SKRJudger 以训练问题的 k 近邻投票决定是否检索，平票时检索。
type SKRJudger struct {
	cfg      SKRConfig
	embedder embedding.Embedder
	examples []trainingExample
	vectors  [][]float32
	logger   *zap.Logger
}

var _ Judger = (*SKRJudger)(nil)

// NewSKRJudger 读取并嵌入训练数据。
func NewSKRJudger(ctx context.Context, cfg SKRConfig, embedder embedding.Embedder, logger *zap.Logger) (*SKRJudger, error) {
	if embedder == nil {
		return nil, types.NewError(types.ErrInvalidRequest, "skr judger requires an embedder").WithComponent("judger")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}

	examples, err := loadTrainingData(cfg.TrainingDataPath)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(examples))
	for i, ex := range examples {
		texts[i] = ex.Question
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed skr training data: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, types.Errorf(types.ErrUpstreamError, "embedder returned %d vectors for %d questions", len(vectors), len(texts)).
			WithComponent("judger")
	}

	j := &SKRJudger{
		cfg:      cfg,
		embedder: embedder,
		examples: examples,
		vectors:  vectors,
		logger:   logger.With(zap.String("component", "judger"), zap.String("kind", string(KindSKR))),
	}
	j.logger.Info("skr training data loaded", zap.Int("examples", len(examples)), zap.Int("topk", cfg.TopK))
	return j, nil
}

func (j *SKRJudger) Kind() Kind { return KindSKR }

// Judge 返回每个问题是否需要检索。
func (j *SKRJudger) Judge(ctx context.Context, questions []string) ([]bool, error) {
	if len(questions) == 0 {
		return []bool{}, nil
	}
	qvecs, err := j.embedder.Embed(ctx, questions)
	if err != nil {
		return nil, err
	}
	if len(qvecs) != len(questions) {
		return nil, types.Errorf(types.ErrUpstreamError, "embedder returned %d vectors for %d questions", len(qvecs), len(questions)).
			WithComponent("judger")
	}

	out := make([]bool, len(questions))
	scores := make([]float64, len(j.vectors))
	for qi, qv := range qvecs {
		for i, v := range j.vectors {
			scores[i] = embedding.Cosine(qv, v)
		}
		better, worse := 0, 0
		for _, s := range embedding.TopK(scores, j.cfg.TopK) {
			if j.examples[s.Index].Judgement == JudgementIRBetter {
				better++
			} else {
				worse++
			}
		}
		out[qi] = better >= worse
	}
	return out, nil
}

func loadTrainingData(path string) ([]trainingExample, error) {
	if strings.TrimSpace(path) == "" {
		return nil, types.NewError(types.ErrDatasetLoad, "skr training_data_path is empty").WithComponent("judger")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, trainingError(path, err)
	}
	defer f.Close()

	var examples []trainingExample
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ex trainingExample
		if err := json.Unmarshal([]byte(line), &ex); err != nil {
			return nil, trainingError(path, fmt.Errorf("line %d: %w", lineNum, err))
		}
		if ex.Judgement != JudgementIRBetter && ex.Judgement != JudgementIRWorse {
			return nil, trainingError(path, fmt.Errorf("line %d: unknown judgement %q", lineNum, ex.Judgement))
		}
		examples = append(examples, ex)
	}
	if err := scanner.Err(); err != nil {
		return nil, trainingError(path, err)
	}
	if len(examples) == 0 {
		return nil, trainingError(path, fmt.Errorf("no training examples"))
	}
	return examples, nil
}

func trainingError(path string, cause error) error {
	return types.Errorf(types.ErrDatasetLoad, "load skr training data %s", path).
		WithCause(cause).
		WithComponent("judger")
}
