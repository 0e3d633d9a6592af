package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/ragkit/config"
	"github.com/BaSui01/ragkit/testutil"
	"github.com/BaSui01/ragkit/testutil/fixtures"
)

func writeConfig(t *testing.T, rag string) string {
	t.Helper()
	body := "log:\n  level: error\n  format: json\n  output_paths: [stderr]\nrag:\n" + rag
	return testutil.WriteFile(t, t.TempDir(), "config.yaml", body)
}

func TestRunCheck(t *testing.T) {
	modelDir := t.TempDir()
	testutil.WriteFile(t, modelDir, "config.json", `{"model_type":"t5"}`)

	path := writeConfig(t, fmt.Sprintf(`  generator_model: google/flan-t5-base
  retrieval_method: bm25
  judger_name: SKR
  refiner_name: recomp
  refiner_model_path: %s
`, modelDir))

	var out bytes.Buffer
	require.NoError(t, runCheck([]string{"--config", path}, &out))

	text := out.String()
	assert.Contains(t, text, "COMPONENT")
	assert.Contains(t, text, "encoder_decoder")
	assert.Contains(t, text, "bm25")
	assert.Contains(t, text, "skr")
	assert.Contains(t, text, "abstractive_recomp")
	assert.Contains(t, text, "model_type=t5")
}

func TestRunCheck_ReportsFailures(t *testing.T) {
	path := writeConfig(t, "  retrieval_method: e5\n  judger_name: nope\n")

	var out bytes.Buffer
	err := runCheck([]string{"--config", path}, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "dense")
	assert.Contains(t, out.String(), "UNSUPPORTED_CONFIG")
	assert.NotContains(t, out.String(), "generator")
}

func TestRunDatasets(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteJSONL(t, dir, "test.jsonl", fixtures.Questions(4))

	path := writeConfig(t, fmt.Sprintf("  dataset_path: %s\n  split: [dev, test]\n  test_sample_num: 2\n", dir))

	var out bytes.Buffer
	require.NoError(t, runDatasets([]string{"--config", path}, &out))

	text := out.String()
	assert.Contains(t, text, filepath.Join(dir, "test.jsonl"))
	assert.Regexp(t, `test\s+2\s+`, text)
	assert.Regexp(t, `dev\s+-\s+\(not loaded\)`, text)
	assert.Regexp(t, `train\s+-\s+\(not loaded\)`, text)
}

func writeRedisConfig(t *testing.T, addr string) string {
	t.Helper()
	body := "log:\n  level: error\n  format: json\n  output_paths: [stderr]\n" +
		"redis:\n  enabled: true\n  addr: " + addr + "\n" +
		"rag:\n  retrieval_method: bm25\n"
	return testutil.WriteFile(t, t.TempDir(), "config.yaml", body)
}

func TestRunCheck_RedisHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	path := writeRedisConfig(t, mr.Addr())

	var out bytes.Buffer
	require.NoError(t, runCheck([]string{"--config", path}, &out))
	assert.Contains(t, out.String(), "bm25")
	assert.Contains(t, out.String(), "redis: ok "+mr.Addr())
}

func TestRunCheck_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	path := writeRedisConfig(t, addr)

	var out bytes.Buffer
	require.NoError(t, runCheck([]string{"--config", path}, &out))
	assert.Contains(t, out.String(), "redis: disabled (unreachable at "+addr+")")
}

func TestCheckCache_PingFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	path := writeRedisConfig(t, mr.Addr())
	env, err := setup("check", []string{"--config", path})
	require.NoError(t, err)
	require.NotNil(t, env.cache)
	defer env.close()

	mr.SetError("LOADING")
	var out bytes.Buffer
	require.Error(t, env.checkCache(&out))
	assert.Contains(t, out.String(), "redis: error")
}

func TestRunCheck_BadFlag(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, runCheck([]string{"--nope"}, &out))
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		cfg  config.LogConfig
		want zapcore.Level
	}{
		{config.LogConfig{Level: "debug", Format: "console", OutputPaths: []string{"stderr"}}, zapcore.DebugLevel},
		{config.LogConfig{Level: "warn", Format: "json"}, zapcore.WarnLevel},
		{config.LogConfig{Level: "bogus", Format: "json"}, zapcore.InfoLevel},
	}
	for _, tt := range tests {
		logger := initLogger(tt.cfg)
		require.NotNil(t, logger)
		assert.True(t, logger.Core().Enabled(tt.want))
		assert.False(t, logger.Core().Enabled(tt.want-1))
	}
}

func TestPrintVersionAndUsage(t *testing.T) {
	var out bytes.Buffer
	printVersion(&out)
	assert.Contains(t, out.String(), "ragkit "+Version)

	out.Reset()
	printUsage(&out)
	assert.Contains(t, out.String(), "datasets")
}
