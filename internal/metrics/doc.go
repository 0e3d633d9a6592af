// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的组件工厂指标采集。

# 核心类型

  - Collector：指标收集器，注册到调用方提供的 prometheus.Registerer，
    nil Collector 可安全调用所有 Record 方法。

# 主要能力

  - 组件选择：按 component/variant 计数，失败按 component/code 计数。
  - 数据集切分：loaded/missing 计数与最近一次加载的条目数。
  - 模型元数据：按 local/remote/cache 来源统计获取耗时。
  - 缓存：hit/miss/error 计数，按缓存名称分组。
*/
package metrics
