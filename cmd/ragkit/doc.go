// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 ragkit 命令行程序入口。

# 概述

cmd/ragkit 读取 YAML 配置（rag 段落为组件选择参数），初始化结构化日志（zap）、
OpenTelemetry、可选的 Redis 缓存与 Prometheus 指标，然后运行组件工厂。

# 子命令

  - check     — 运行全部组件选择器，打印各组件选中的变体与失败原因
  - datasets  — 加载配置的数据集 split，打印条目数与文件路径
  - version   — 显示构建注入的版本信息
*/
package main
