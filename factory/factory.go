package factory

import (
	"context"

	"github.com/BaSui01/ragkit/config"
	"github.com/BaSui01/ragkit/types"
)

// Selection 汇总全部选择器的结果，供 CLI 检查配置。
type Selection struct {
	Generator string
	Retriever string
	Judger    string
	Refiner   *RefinerSelection
	// Errors 按组件记录选择失败，未配置的组件不出现
	Errors map[string]error
}

// SelectAll 依次运行各选择器。每个选择器相互独立，某个失败不影响其他；
// 对应名称键未配置的组件被跳过。
func SelectAll(ctx context.Context, p config.Params, opts ...Option) Selection {
	sel := Selection{Errors: make(map[string]error)}

	if p.Has(config.KeyGeneratorModel) {
		kind, err := SelectGenerator(p)
		record(&sel, "generator", err)
		sel.Generator = string(kind)
	}
	if p.Has(config.KeyRetrievalMethod) {
		kind, err := SelectRetriever(p)
		record(&sel, "retriever", err)
		sel.Retriever = string(kind)
	}
	if p.Has(config.KeyJudgerName) {
		kind, err := SelectJudger(p)
		record(&sel, "judger", err)
		sel.Judger = string(kind)
	}
	if p.Has(config.KeyRefinerName) {
		rs, err := SelectRefinerDetails(ctx, p, opts...)
		record(&sel, "refiner", err)
		if err == nil {
			sel.Refiner = &rs
		}
	}
	return sel
}

func record(sel *Selection, component string, err error) {
	if err != nil {
		sel.Errors[component] = err
	}
}

func errorCode(err error) string {
	if code := types.GetErrorCode(err); code != "" {
		return string(code)
	}
	return "UNKNOWN"
}
