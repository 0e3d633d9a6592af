// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 ragkit 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 config、factory、
generator、retriever、judger、refiner 等模块提供统一的错误契约。

# 核心类型

  - Error / ErrorCode — 结构化错误体系，含 Retryable、Component 标记

# 主要能力

  - 错误工具链：AsError / IsErrorCode / GetErrorCode / IsRetryable
  - 常用错误构造：NewUnsupportedConfigError（选择器无对应实现时返回）
*/
package types
