/*
Package refiner 压缩检索得到的上下文。

# 变体

  - AbstractiveRecompRefiner：RECOMP 生成式摘要，调用 T5 编码器-解码器生成器
  - ExtractiveRefiner：RECOMP 抽取式，保留与问题嵌入最相似的 TopK 句
  - LLMLinguaRefiner：按问题词重叠度保留句子，直到 Rate * 总 token 数
  - SelectiveContextRefiner：删除平均自信息最低的句子，直到删除 ReduceRatio 比例的 token

DefaultModelPaths 给出未配置模型路径时的默认 RECOMP 模型。
*/
package refiner
