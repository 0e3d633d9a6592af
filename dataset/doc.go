/*
Package dataset 加载 JSONL 格式的问答数据集。

每行一个样本，字段为 id、question、golden_answers、choices、metadata、output。
New 支持按数量截断与按种子随机采样；Splits 以 train/dev/test 为键保存各划分。
*/
package dataset
