// Copyright 2025-2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
Package hub 解析模型路径对应的模型配置（config.json），供组件工厂在选择
refiner 变体前读取 model_type。

# 解析顺序

  - 本地目录（含 config.json）或 config.json 文件
  - Redis 缓存（WithCache 启用时）
  - Hugging Face 兼容端点：{endpoint}/{repo}/resolve/{revision}/config.json

同一路径的并发请求合并为一次远端调用；远端请求受 RateLimitRPS 限速。
失败统一返回 MODEL_METADATA 错误，429 与 5xx 标记为可重试。
*/
package hub
