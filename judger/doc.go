// Package judger 判断问题是否需要检索。
//
// SKRJudger 嵌入带有 ir_better / ir_worse 标签的训练问题，
// 对新问题取余弦相似度最高的 k 个训练样本投票，ir_better 票数不少于 ir_worse 时返回 true。
package judger
