package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/ragkit/dataset"
	"github.com/BaSui01/ragkit/factory"
)

// factoryOptions 将运行环境转换为工厂选项
func (e *runtimeEnv) factoryOptions() []factory.Option {
	opts := []factory.Option{
		factory.WithLogger(e.logger),
		factory.WithHubConfig(e.cfg.Hub),
	}
	if e.metrics != nil {
		opts = append(opts, factory.WithMetrics(e.metrics))
	}
	if e.cache != nil {
		opts = append(opts, factory.WithCache(e.cache))
	}
	return opts
}

// =============================================================================
// 🔍 check 命令
// =============================================================================

func runCheck(args []string, out io.Writer) error {
	env, err := setup("check", args)
	if err != nil {
		return err
	}
	defer env.close()

	env.logger.Debug("rag params", zap.Any("params", env.cfg.RAG.Describe()))

	sel := factory.SelectAll(context.Background(), env.cfg.RAG, env.factoryOptions()...)
	writeSelection(out, sel)

	if len(sel.Errors) > 0 {
		return fmt.Errorf("%d component(s) could not be selected", len(sel.Errors))
	}
	return env.checkCache(out)
}

// checkCache 报告 Redis 缓存状态；未启用时不输出
func (e *runtimeEnv) checkCache(out io.Writer) error {
	if !e.cfg.Redis.Enabled {
		return nil
	}
	if e.cache == nil {
		fmt.Fprintf(out, "redis: disabled (unreachable at %s)\n", e.cfg.Redis.Addr)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.cache.Ping(ctx); err != nil {
		fmt.Fprintf(out, "redis: error %v\n", err)
		return fmt.Errorf("redis health check: %w", err)
	}
	fmt.Fprintf(out, "redis: ok %s\n", e.cfg.Redis.Addr)
	return nil
}

func writeSelection(out io.Writer, sel factory.Selection) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPONENT\tVARIANT\tDETAIL")

	row := func(component, variant, detail string) {
		if variant == "" && sel.Errors[component] == nil {
			return
		}
		if err := sel.Errors[component]; err != nil {
			fmt.Fprintf(tw, "%s\t-\t%v\n", component, err)
			return
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", component, variant, detail)
	}

	row("generator", sel.Generator, "")
	row("retriever", sel.Retriever, "")
	row("judger", sel.Judger, "")
	if sel.Refiner != nil {
		row("refiner", string(sel.Refiner.Kind),
			fmt.Sprintf("model_path=%s model_type=%s", sel.Refiner.ModelPath, sel.Refiner.ModelType))
	} else {
		row("refiner", "", "")
	}
	_ = tw.Flush()
}

// =============================================================================
// 📚 datasets 命令
// =============================================================================

func runDatasets(args []string, out io.Writer) error {
	env, err := setup("datasets", args)
	if err != nil {
		return err
	}
	defer env.close()

	splits, err := factory.LoadDatasets(context.Background(), env.cfg.RAG, env.factoryOptions()...)
	if err != nil {
		return err
	}
	writeSplits(out, splits)
	return nil
}

func writeSplits(out io.Writer, splits dataset.Splits) {
	names := make([]string, 0, len(splits))
	for s := range splits {
		names = append(names, string(s))
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SPLIT\tITEMS\tPATH")
	for _, name := range names {
		ds := splits[dataset.Split(name)]
		if ds == nil {
			fmt.Fprintf(tw, "%s\t-\t(not loaded)\n", name)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", name, ds.Len(), ds.Path)
	}
	_ = tw.Flush()
}
