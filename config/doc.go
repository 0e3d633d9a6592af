// Package config 提供 ragkit 的配置管理功能。
//
// 包含 YAML 文件与环境变量的分层加载、默认值，
// 以及组件选择器读取的 Params 键值配置及其类型化访问器。
package config
