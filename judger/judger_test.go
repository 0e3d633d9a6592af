package judger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/ragkit/testutil"
	"github.com/BaSui01/ragkit/testutil/fixtures"
	"github.com/BaSui01/ragkit/testutil/mocks"
	"github.com/BaSui01/ragkit/types"
)

func TestSKRJudger(t *testing.T) {
	ctx := testutil.TestContext(t)
	path := testutil.WriteJSONL(t, t.TempDir(), "skr_train.jsonl", fixtures.Judgements())
	emb := mocks.NewMockEmbedder()

	j, err := NewSKRJudger(ctx, SKRConfig{TrainingDataPath: path, TopK: 3}, emb, nil)
	require.NoError(t, err)
	assert.Equal(t, KindSKR, j.Kind())
	assert.Equal(t, 1, emb.CallCount())

	got, err := j.Judge(ctx, []string{
		"who won the 2022 world cup final match",
		"what colour is the sky",
	})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, got)
}

func TestSKRJudger_TieMeansRetrieve(t *testing.T) {
	ctx := testutil.TestContext(t)
	path := testutil.WriteJSONL(t, t.TempDir(), "skr_train.jsonl", []fixtures.JudgementRow{
		{Question: "alpha", Judgement: JudgementIRWorse},
		{Question: "beta", Judgement: JudgementIRBetter},
	})

	j, err := NewSKRJudger(ctx, SKRConfig{TrainingDataPath: path, TopK: 2}, mocks.NewMockEmbedder(), nil)
	require.NoError(t, err)

	got, err := j.Judge(ctx, []string{"gamma"})
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, got)

	got, err = j.Judge(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewSKRJudger_Errors(t *testing.T) {
	ctx := testutil.TestContext(t)
	dir := t.TempDir()

	_, err := NewSKRJudger(ctx, SKRConfig{TrainingDataPath: "x"}, nil, nil)
	assert.True(t, types.IsErrorCode(err, types.ErrInvalidRequest))

	_, err = NewSKRJudger(ctx, SKRConfig{}, mocks.NewMockEmbedder(), nil)
	assert.True(t, types.IsErrorCode(err, types.ErrDatasetLoad))

	bad := testutil.WriteFile(t, dir, "bad.jsonl", `{"question":"q","judgement":"maybe"}`+"\n")
	_, err = NewSKRJudger(ctx, SKRConfig{TrainingDataPath: bad}, mocks.NewMockEmbedder(), nil)
	assert.True(t, types.IsErrorCode(err, types.ErrDatasetLoad))
	assert.Contains(t, err.Error(), "maybe")

	empty := testutil.WriteFile(t, dir, "empty.jsonl", "\n")
	_, err = NewSKRJudger(ctx, SKRConfig{TrainingDataPath: empty}, mocks.NewMockEmbedder(), nil)
	assert.True(t, types.IsErrorCode(err, types.ErrDatasetLoad))

	boom := errors.New("boom")
	good := testutil.WriteJSONL(t, dir, "good.jsonl", fixtures.Judgements())
	_, err = NewSKRJudger(ctx, SKRConfig{TrainingDataPath: good}, mocks.NewMockEmbedder().WithError(boom), nil)
	assert.ErrorIs(t, err, boom)
}
