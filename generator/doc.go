/*
Package generator 提供三种文本生成器：

  - CausalLMGenerator：调用 text-generation-inference 的 /generate 端点
  - EncoderDecoderGenerator：同一端点，输入按词截断，适用于 T5 / BART
  - VLLMGenerator：通过 go-openai 调用 vLLM 的 /v1/completions

所有生成器实现 Generator 接口，返回结果与输入 prompts 顺序一致。
*/
package generator
