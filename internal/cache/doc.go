// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 cache 提供基于 Redis 的缓存管理能力，供模型元数据与检索结果缓存使用。

# 核心类型

  - Manager：缓存管理器，持有 Redis 客户端，提供 Get/Set/Delete/Ping
    以及 GetJSON/SetJSON 便捷序列化方法，所有键自动带上 KeyPrefix。
  - Config：缓存配置，包含地址、密码、键前缀、默认 TTL 与连接池参数。

# 错误语义

  - ErrCacheMiss：键不存在或已过期，调用方据此回源。
  - ErrClosed：管理器已关闭。
*/
package cache
