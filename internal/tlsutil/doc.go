// Package tlsutil 提供组件客户端共用的 TLS 配置：
// generator 的 TGI / vLLM 客户端、embedding 客户端与 hub 元数据客户端默认都经由这里创建。
package tlsutil
