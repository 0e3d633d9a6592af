// =============================================================================
// 📦 测试数据工厂 - 数据集、语料与判别器训练数据
// =============================================================================
package fixtures

// QuestionRow 数据集 JSONL 行
type QuestionRow struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	GoldenAnswers []string `json:"golden_answers"`
}

// CorpusRow 语料 JSONL 行
type CorpusRow struct {
	ID       string `json:"id"`
	Contents string `json:"contents"`
}

// JudgementRow SKR 训练数据 JSONL 行
type JudgementRow struct {
	Question  string `json:"question"`
	Judgement string `json:"judgement"`
}

// Questions 返回 n 条样例问题
func Questions(n int) []QuestionRow {
	base := []QuestionRow{
		{ID: "q0", Question: "who wrote the novel moby dick", GoldenAnswers: []string{"Herman Melville"}},
		{ID: "q1", Question: "what is the capital city of france", GoldenAnswers: []string{"Paris"}},
		{ID: "q2", Question: "when did the apollo 11 mission land on the moon", GoldenAnswers: []string{"1969"}},
		{ID: "q3", Question: "which planet is known as the red planet", GoldenAnswers: []string{"Mars"}},
		{ID: "q4", Question: "who painted the mona lisa", GoldenAnswers: []string{"Leonardo da Vinci"}},
	}
	out := make([]QuestionRow, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, base[i%len(base)])
		out[i].ID = base[i%len(base)].ID + suffix(i/len(base))
	}
	return out
}

func suffix(round int) string {
	if round == 0 {
		return ""
	}
	return "-" + string(rune('a'+round-1))
}

// Corpus 返回样例语料，第一行为标题
func Corpus() []CorpusRow {
	return []CorpusRow{
		{ID: "d0", Contents: "Moby-Dick\nMoby-Dick is an 1851 novel by American writer Herman Melville about the whale."},
		{ID: "d1", Contents: "Paris\nParis is the capital and most populous city of France."},
		{ID: "d2", Contents: "Apollo 11\nApollo 11 was the spaceflight that first landed humans on the Moon in 1969."},
		{ID: "d3", Contents: "Mars\nMars is the fourth planet from the Sun, often called the Red Planet."},
		{ID: "d4", Contents: "Mona Lisa\nThe Mona Lisa is a portrait painting by Italian artist Leonardo da Vinci."},
		{ID: "d5", Contents: "Whale\nWhales are a widely distributed group of fully aquatic marine mammals."},
	}
}

// Judgements 返回 SKR 训练样例：常识问题无需检索，事实细节需要检索
func Judgements() []JudgementRow {
	return []JudgementRow{
		{Question: "what colour is the sky on a clear day", Judgement: "ir_worse"},
		{Question: "how many legs does a dog have", Judgement: "ir_worse"},
		{Question: "what colour is grass", Judgement: "ir_worse"},
		{Question: "who won the 1998 world cup final match", Judgement: "ir_better"},
		{Question: "who won the 2010 world cup final match", Judgement: "ir_better"},
		{Question: "which team won the world cup final in 2014", Judgement: "ir_better"},
	}
}
