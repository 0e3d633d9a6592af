/*
Package retriever 提供 BM25 与稠密向量两种检索器，以及基于 Redis 的检索结果缓存。

语料为 JSONL，每行包含 id 与 contents（首行为标题），也兼容 title/text 字段。
BM25Retriever 在构造时建立词频与 IDF 统计；DenseRetriever 在首次检索时
并发嵌入全部文档，之后按余弦相似度排序。CachedRetriever 按
use/save 两个开关分别控制缓存读取与写回。
*/
package retriever
