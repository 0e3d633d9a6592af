// Copyright 2025-2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
Package factory 根据键值配置（config.Params）选择并创建 RAG 组件。

每类组件提供两层入口：

  - SelectXxx：只做变体选择，返回组件种类，便于校验配置
  - NewXxx：选择后按配置构建具体实现

# 选择规则

  - 生成器：generator_model 含 "t5" 或 "bart"（区分大小写）为编码器-解码器；
    否则 use_vllm 为真时为 vLLM，其余为因果语言模型
  - 检索器：retrieval_method 严格等于 "bm25" 时为 BM25，其余为稠密检索
  - 判别器：judger_name 不区分大小写含 "skr" 时为 SKR
  - 精炼器：先解析模型路径并读取 model_type，再按名称匹配
    recomp / lingua / selective-context

数据集加载见 LoadDatasets：逐个检查请求的 split，文件缺失只记录警告。

协作者（日志、指标、Redis 缓存、模型元数据来源、嵌入模型）通过 Option 注入。
*/
package factory
