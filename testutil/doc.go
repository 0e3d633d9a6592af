// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 ragkit 测试的共享工具和辅助函数。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 文件夹具: WriteJSONL / WriteFile，配合 t.TempDir() 构造数据集、语料与模型目录
  - 异步断言: AssertEventuallyTrue

# 子包

  - testutil/mocks: MockEmbedder（词袋哈希向量，可注入错误）与
    MockFetcher（按路径返回 model_type，记录调用）
  - testutil/fixtures: 样例问题、语料与 SKR 训练数据

# 使用示例

	ctx := testutil.TestContext(t)
	fetcher := mocks.NewMockFetcher().WithModelType("fangyuan/nq_abstractive_compressor", "t5")
	kind, err := factory.SelectRefiner(ctx, params, fetcher)
*/
package testutil
