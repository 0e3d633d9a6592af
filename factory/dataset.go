package factory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/BaSui01/ragkit/config"
	"github.com/BaSui01/ragkit/dataset"
)

// LoadDatasets 为 split 中列出的每个已知划分加载 <dataset_path>/<split>.jsonl。
// 文件不存在时记录警告并保留 nil；未知划分名直接忽略。
// test 与 dev 按 test_sample_num / random_sample 采样，train 不采样。
func LoadDatasets(ctx context.Context, p config.Params, opts ...Option) (dataset.Splits, error) {
	o := buildOptions(opts)

	root, err := p.String(config.KeyDatasetPath)
	if err != nil {
		return nil, err
	}
	requested, err := p.Strings(config.KeySplit)
	if err != nil {
		return nil, err
	}

	splits := dataset.NewSplits()
	for _, name := range requested {
		split := dataset.Split(name)
		if !split.IsValid() {
			continue
		}

		path := filepath.Join(root, name+".jsonl")
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				o.logger.Warn(name+" file not exists", zap.String("path", path))
				o.metrics.RecordSplit(name, false, 0)
				continue
			}
			return nil, fmt.Errorf("stat %s split: %w", name, err)
		}

		var dsOpts []dataset.Option
		if split == dataset.SplitTest || split == dataset.SplitDev {
			dsOpts, err = samplingOptions(p)
			if err != nil {
				return nil, err
			}
		}

		ds, err := dataset.New(ctx, path, append(dsOpts, dataset.WithLogger(o.logger))...)
		if err != nil {
			return nil, err
		}
		splits[split] = ds
		o.metrics.RecordSplit(name, true, ds.Len())
		o.logger.Info("dataset split loaded",
			zap.String("split", name),
			zap.String("path", path),
			zap.Int("items", ds.Len()))
	}
	return splits, nil
}

func samplingOptions(p config.Params) ([]dataset.Option, error) {
	sampleNum, hasSampleNum, err := p.OptionalInt(config.KeyTestSampleNum)
	if err != nil {
		return nil, err
	}
	random, err := p.Bool(config.KeyRandomSample)
	if err != nil {
		return nil, err
	}
	seed, err := p.IntOr(config.KeySeed, 2024)
	if err != nil {
		return nil, err
	}

	opts := []dataset.Option{dataset.WithRandomSample(random), dataset.WithSeed(int64(seed))}
	if hasSampleNum {
		opts = append(opts, dataset.WithSampleNum(sampleNum))
	}
	return opts, nil
}
